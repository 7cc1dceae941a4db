package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider opens a fresh chat session per request with Google Search grounding.
type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*GeminiProvider, error) {
	cfg := &genai.ClientConfig{
		APIKey:     strings.TrimSpace(apiKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (string, error) {
	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
		Tools:       []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}

	chat, err := p.client.Chats.Create(ctx, req.Model.String(), config, nil)
	if err != nil {
		return "", err
	}

	parts := []genai.Part{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		parts = append(parts, genai.Part{InlineData: &genai.Blob{MIMEType: req.ImageMIME, Data: req.Image}})
	}
	resp, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", err
	}
	return extractGeminiText(resp), nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			result.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(result.String())
}
