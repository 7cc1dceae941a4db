package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTemperature applies when a request leaves the temperature unset.
const DefaultTemperature = 0.7

// Request is one prompt for one model, optionally with an inline image.
type Request struct {
	Model       Model
	Prompt      string
	Image       []byte
	ImageMIME   string
	Temperature float64
}

// Provider produces raw model text for a request.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Dispatcher routes requests to the provider serving the requested model.
type Dispatcher struct {
	providers map[Vendor]Provider
	logger    *zap.Logger
}

func NewDispatcher(logger *zap.Logger, providers map[Vendor]Provider) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	registered := make(map[Vendor]Provider, len(providers))
	for vendor, p := range providers {
		if p != nil {
			registered[vendor] = p
		}
	}
	return &Dispatcher{providers: registered, logger: logger}
}

// Configured reports whether a provider for m has been registered.
func (d *Dispatcher) Configured(m Model) bool {
	_, ok := d.providers[m.Vendor()]
	return ok
}

// Generate sends req to its provider and returns the non-empty model text.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (string, error) {
	vendor := req.Model.Vendor()
	if vendor == "" {
		return "", ErrUnsupportedModel
	}
	provider, ok := d.providers[vendor]
	if !ok {
		return "", fmt.Errorf("%s: %w", vendor, ErrProviderNotConfigured)
	}
	if req.Temperature <= 0 || req.Temperature > 1 {
		req.Temperature = DefaultTemperature
	}
	if len(req.Image) > 0 && req.ImageMIME == "" {
		req.ImageMIME = "image/jpeg"
	}

	start := time.Now()
	text, err := provider.Generate(ctx, req)
	d.logger.Debug("model call finished",
		zap.String("model", req.Model.String()),
		zap.Bool("image", len(req.Image) > 0),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateText is Generate for a text-only prompt at the default temperature.
func (d *Dispatcher) GenerateText(ctx context.Context, model Model, prompt string) (string, error) {
	return d.Generate(ctx, Request{Model: model, Prompt: prompt})
}
