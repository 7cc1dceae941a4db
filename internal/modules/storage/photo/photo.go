// Package photo stores normalized insight photos in S3-compatible object storage.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	appcfg "github.com/stylescanner/server/internal/config"
)

// Store persists an image and returns a public URL for it.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type S3Store struct {
	client       *s3.Client
	bucket       string
	prefix       string
	endpoint     string
	region       string
	customDomain string
	pathStyle    bool
}

func NewS3Store(opts appcfg.S3Options) (*S3Store, error) {
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint != "" {
		if parsed, err := url.Parse(endpoint); err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("invalid s3 endpoint: %s", endpoint)
		}
	}

	// Custom endpoints (MinIO, R2) generally need path-style addressing.
	pathStyle := opts.PathStyleAccess || endpoint != ""

	s3Opts := s3.Options{
		Region:                     opts.Region,
		Credentials:                aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
		UsePathStyle:               pathStyle,
		RetryMaxAttempts:           1,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3Store{
		client:       s3.New(s3Opts),
		bucket:       opts.Bucket,
		prefix:       opts.Prefix,
		endpoint:     endpoint,
		region:       opts.Region,
		customDomain: opts.CustomDomain,
		pathStyle:    pathStyle,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	objectKey := s.objectKey(key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", objectKey, err)
	}
	return s.publicURL(objectKey), nil
}

func (s *S3Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

func (s *S3Store) publicURL(objectKey string) string {
	escaped := escapeKey(objectKey)
	if s.customDomain != "" {
		base := s.customDomain
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			base = "https://" + base
		}
		return base + "/" + escaped
	}
	if s.endpoint != "" {
		if s.pathStyle {
			return s.endpoint + "/" + s.bucket + "/" + escaped
		}
		parsed, _ := url.Parse(s.endpoint)
		return parsed.Scheme + "://" + s.bucket + "." + parsed.Host + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// InsightKey names the object for a user's insight photo.
func InsightKey(userID, format string, now time.Time) string {
	ext := "jpg"
	if format == "png" {
		ext = "png"
	}
	return fmt.Sprintf("insights/%s/%s/%s.%s", userID, now.UTC().Format("2006/01"), uuid.NewString(), ext)
}
