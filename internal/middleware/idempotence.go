package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/pkg/response"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 60 * time.Second
	idempotencePrefix = "stylescanner:idempotence:"

	idempotencePending = "0"
	idempotenceDone    = "1"
)

// IdempotenceStore keeps request markers. *redis.Client from pkg/redis satisfies it;
// Get reports a missing key as "".
type IdempotenceStore interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Idempotence rejects a repeated identical generation request while the first
// is still running or within idempotenceTTL of its success. Failed requests
// release the key so the user can retry. Store errors let the request through;
// a nil store disables the check.
func Idempotence(store IdempotenceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		storeKey := idempotencePrefix + key
		ctx := c.Request.Context()

		claimed, err := store.SetNX(ctx, storeKey, idempotencePending, idempotenceTTL)
		if err != nil {
			c.Next()
			return
		}
		if !claimed {
			msg := "The same request can only be sent once within 60 seconds"
			if val, _ := store.Get(ctx, storeKey); val == idempotencePending {
				msg = "The same request is already being processed"
			}
			response.Conflict(c, msg)
			return
		}

		c.Next()

		// the client may be gone; the bookkeeping must still land
		bg := Detached(c)
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = store.Set(bg, storeKey, idempotenceDone, idempotenceTTL)
		} else {
			_ = store.Del(bg, storeKey)
		}
	}
}

// resolveIdempotenceKey returns the idempotence key for the current request.
func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	token := NormalizeToken(c.GetHeader("Authorization"))
	if len(body) == 0 && token == "" {
		return "", nil
	}

	h := sha256.New()
	for _, part := range []string{c.Request.Method, c.Request.URL.Path, token, c.ClientIP()} {
		h.Write([]byte(part))
		h.Write([]byte{'|'})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
