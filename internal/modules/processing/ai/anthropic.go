package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
)

const anthropicMaxOutputTokens = 4096

// AnthropicProvider sends text prompts through the jetify language model
// and image prompts through the messages API, which accepts base64 blocks.
type AnthropicProvider struct {
	client anthropicclient.Client
}

func NewAnthropicProvider(apiKey, baseURL string, timeout time.Duration) *AnthropicProvider {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(apiKey)),
		anthropicoption.WithMaxRetries(0),
		anthropicoption.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &AnthropicProvider{client: anthropicclient.NewClient(opts...)}
}

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Image) > 0 {
		return p.generateWithImage(ctx, req)
	}

	model := jetanthropic.NewLanguageModel(req.Model.String(), jetanthropic.WithClient(p.client))
	resp, err := jetai.GenerateText(
		ctx,
		[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(req.Prompt)}},
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(anthropicMaxOutputTokens),
		jetai.WithTemperature(req.Temperature),
	)
	if err != nil {
		return "", err
	}
	return extractJetText(resp)
}

func (p *AnthropicProvider) generateWithImage(ctx context.Context, req Request) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropicclient.MessageNewParams{
		Model:       anthropicclient.Model(req.Model),
		MaxTokens:   anthropicMaxOutputTokens,
		Temperature: anthropicclient.Float(req.Temperature),
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(
				anthropicclient.NewImageBlockBase64(req.ImageMIME, base64.StdEncoding.EncodeToString(req.Image)),
				anthropicclient.NewTextBlock(req.Prompt),
			),
		},
	})
	if err != nil {
		return "", err
	}
	var full strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	return full.String(), nil
}

func extractJetText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from AI")
	}
	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	return full.String(), nil
}
