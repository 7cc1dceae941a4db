// Package imagenorm bounds uploaded photos to a pixel budget before they are
// sent to vision models.
package imagenorm

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixels is the largest width*height passed through untouched.
const MaxPixels = 512 * 512

// MaxDecodePixels bounds the images NormalizeBytes will decode at all.
// Headers are checked first, so a small file declaring huge dimensions is
// rejected without allocating its bitmap.
const MaxDecodePixels = 50_000_000

const jpegQuality = 90

var (
	ErrEmptyImage   = errors.New("image data is empty")
	ErrInvalidImage = errors.New("unsupported or corrupt image")
)

// Result describes a normalized image.
type Result struct {
	Data     []byte
	Format   string // jpeg | png
	Width    int
	Height   int
	Resized  bool
	MIMEType string
}

// Normalize takes a base64 payload (optionally a data: URL) and returns a
// base64 payload within MaxPixels. Input already within the budget is
// returned unchanged.
func Normalize(b64 string) (string, error) {
	raw, _, err := DecodeBase64(b64)
	if err != nil {
		return "", err
	}
	res, err := NormalizeBytes(raw)
	if err != nil {
		return "", err
	}
	if !res.Resized {
		return b64, nil
	}
	return base64.StdEncoding.EncodeToString(res.Data), nil
}

// DecodeBase64 strips an optional data URL prefix and decodes the payload.
// The declared MIME type is returned when the prefix carried one.
func DecodeBase64(s string) ([]byte, string, error) {
	payload := strings.TrimSpace(s)
	mime := ""
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("%w: malformed data url", ErrInvalidImage)
		}
		header := payload[len("data:"):comma]
		mime, _, _ = strings.Cut(header, ";")
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, "", ErrEmptyImage
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some clients strip padding
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, "", fmt.Errorf("decode base64 image: %w", err)
		}
	}
	if len(raw) == 0 {
		return nil, "", ErrEmptyImage
	}
	return raw, mime, nil
}

// NormalizeBytes downsamples data when it exceeds MaxPixels.
func NormalizeBytes(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmptyImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Result{}, fmt.Errorf("%w: empty dimensions", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		return Result{}, fmt.Errorf("%w: %dx%d exceeds decode limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	if cfg.Width*cfg.Height <= MaxPixels {
		return Result{
			Data:     data,
			Format:   format,
			Width:    cfg.Width,
			Height:   cfg.Height,
			MIMEType: mimeFor(format),
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	w, h := FitInside(cfg.Width, cfg.Height, MaxPixels)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	outFormat := "jpeg"
	if format == "png" {
		outFormat = "png"
		if err := png.Encode(&buf, dst); err != nil {
			return Result{}, fmt.Errorf("encode png: %w", err)
		}
	} else {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return Result{}, fmt.Errorf("encode jpeg: %w", err)
		}
	}

	out := buf.Bytes()
	if format == "jpeg" {
		out = spliceJPEGMetadata(out, jpegMetadataSegments(data))
	}

	return Result{
		Data:     out,
		Format:   outFormat,
		Width:    w,
		Height:   h,
		Resized:  true,
		MIMEType: mimeFor(outFormat),
	}, nil
}

// FitInside scales w x h down, preserving aspect ratio, so the area is at most
// maxPixels. It never enlarges.
func FitInside(w, h, maxPixels int) (int, int) {
	if w <= 0 || h <= 0 || w*h <= maxPixels {
		return w, h
	}
	scale := math.Sqrt(float64(maxPixels) / float64(w*h))
	nw := int(math.Floor(float64(w)*scale + 1e-9))
	nh := int(math.Floor(float64(h)*scale + 1e-9))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	for nw*nh > maxPixels {
		if nw >= nh {
			nw--
		} else {
			nh--
		}
	}
	return nw, nh
}

func mimeFor(format string) string {
	switch format {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
