package assets

import (
	"context"
	"strings"

	"github.com/stylescanner/server/internal/modules/processing/ai"
	"github.com/stylescanner/server/internal/modules/processing/prompt"
)

// DispatcherTranslator translates queries with a single model call.
type DispatcherTranslator struct {
	Dispatcher *ai.Dispatcher
	Model      ai.Model
}

func (t DispatcherTranslator) Translate(ctx context.Context, text string) (string, error) {
	out, err := t.Dispatcher.GenerateText(ctx, t.Model, prompt.Translate(text))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(ai.ExtractPayload(out))
	out = strings.TrimPrefix(out, "[")
	out = strings.TrimSuffix(out, "]")
	return strings.TrimSpace(out), nil
}
