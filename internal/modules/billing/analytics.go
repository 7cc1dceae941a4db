package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultCollectURL = "https://www.google-analytics.com/mp/collect"

// Analytics posts purchase events to the GA4 measurement protocol.
type Analytics struct {
	endpoint      string
	measurementID string
	apiSecret     string
	client        *http.Client
	logger        *zap.Logger
}

// NewAnalytics returns nil when either credential is missing; a nil *Analytics drops events.
func NewAnalytics(measurementID, apiSecret string, client *http.Client, logger *zap.Logger) *Analytics {
	if measurementID == "" || apiSecret == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analytics{
		endpoint:      defaultCollectURL,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		client:        client,
		logger:        logger,
	}
}

// WithEndpoint overrides the collect URL.
func (a *Analytics) WithEndpoint(endpoint string) *Analytics {
	if a != nil && endpoint != "" {
		a.endpoint = endpoint
	}
	return a
}

type collectEvent struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

type collectBody struct {
	ClientID string         `json:"client_id"`
	UserID   string         `json:"user_id"`
	Events   []collectEvent `json:"events"`
}

// Purchase sends the event in the background. done, when non-nil, runs after delivery.
func (a *Analytics) Purchase(ctx context.Context, userID, status, subscriptionID string, done func(error)) {
	if a == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		err := a.send(ctx, collectBody{
			ClientID: userID,
			UserID:   userID,
			Events: []collectEvent{{
				Name:   "purchase",
				Params: map[string]string{"subscriptionStatus": status, "subscriptionId": subscriptionID},
			}},
		})
		if err != nil {
			a.logger.Warn("analytics purchase event failed", zap.String("user_id", userID), zap.Error(err))
		}
		if done != nil {
			done(err)
		}
	}()
}

func (a *Analytics) send(ctx context.Context, body collectBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("measurement_id", a.measurementID)
	q.Set("api_secret", a.apiSecret)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("collect returned %s", resp.Status)
	}
	return nil
}
