package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
)

const unsplashPickWindow = 10

// Unsplash searches the Unsplash photo API.
type Unsplash struct {
	endpoint  string
	accessKey string
	client    *http.Client
	pick      func(n int) int
}

func NewUnsplash(endpoint, accessKey string, client *http.Client) *Unsplash {
	return &Unsplash{
		endpoint:  strings.TrimRight(endpoint, "/"),
		accessKey: accessKey,
		client:    client,
		pick:      rand.IntN,
	}
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Small   string `json:"small"`
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

func (u *Unsplash) Search(ctx context.Context, query string) (string, error) {
	if u == nil || u.accessKey == "" {
		return "", errNotConfigured
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpoint+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unsplash: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unsplash: decode: %w", err)
	}

	candidates := make([]string, 0, unsplashPickWindow)
	for _, r := range out.Results {
		if len(candidates) == unsplashPickWindow {
			break
		}
		link := r.URLs.Small
		if link == "" {
			link = r.URLs.Regular
		}
		if link != "" {
			candidates = append(candidates, link)
		}
	}
	if len(candidates) == 0 {
		return "", errNoResults
	}
	return candidates[u.pick(len(candidates))], nil
}
