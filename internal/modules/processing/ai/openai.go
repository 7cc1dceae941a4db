package ai

import (
	"context"
	"encoding/base64"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// OpenAIProvider calls the chat completions API.
type OpenAIProvider struct {
	client openaiclient.Client
}

func NewOpenAIProvider(apiKey, baseURL string, timeout time.Duration) *OpenAIProvider {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(apiKey)),
		openaioption.WithMaxRetries(0),
		openaioption.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if normalized := normalizeOpenAIBaseURL(baseURL); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	return &OpenAIProvider{client: openaiclient.NewClient(opts...)}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	var message openaiclient.ChatCompletionMessageParamUnion
	if len(req.Image) > 0 {
		dataURL := "data:" + req.ImageMIME + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
		message = openaiclient.UserMessage([]openaiclient.ChatCompletionContentPartUnionParam{
			openaiclient.TextContentPart(req.Prompt),
			openaiclient.ImageContentPart(openaiclient.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		})
	} else {
		message = openaiclient.UserMessage(req.Prompt)
	}

	completion, err := p.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model:       openaiclient.ChatModel(req.Model),
		Messages:    []openaiclient.ChatCompletionMessageParamUnion{message},
		Temperature: openaiclient.Float(req.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/") + "/"
}
