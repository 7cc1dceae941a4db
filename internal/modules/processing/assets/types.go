package assets

import (
	"context"
	"errors"
	"strings"
)

// Source selects the image search backend for placeholders.
type Source string

const (
	SourceUnsplash Source = "unsplash"
	SourceGoogle   Source = "google"
)

// ParseSource defaults to unsplash for anything unrecognised.
func ParseSource(raw string) Source {
	if Source(strings.ToLower(strings.TrimSpace(raw))) == SourceGoogle {
		return SourceGoogle
	}
	return SourceUnsplash
}

// Searcher finds one image URL for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Translator renders a query in English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

var (
	errNoResults     = errors.New("no image results")
	errNotConfigured = errors.New("image search not configured")
)

const maxQueryRunes = 50
