// Package aitest provides a scripted provider for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/stylescanner/server/internal/modules/processing/ai"
)

// Fake answers every request with Reply, or with Err when set.
// Respond, when non-nil, takes precedence over both.
type Fake struct {
	Reply   string
	Err     error
	Respond func(req ai.Request) (string, error)

	mu    sync.Mutex
	calls []ai.Request
}

func (f *Fake) Generate(_ context.Context, req ai.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.Respond != nil {
		return f.Respond(req)
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Reply, nil
}

// Calls returns a copy of the requests seen so far.
func (f *Fake) Calls() []ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.Request(nil), f.calls...)
}

// Dispatcher routes every vendor to f.
func Dispatcher(f *Fake) *ai.Dispatcher {
	return ai.NewDispatcher(nil, map[ai.Vendor]ai.Provider{
		ai.VendorOpenAI:    f,
		ai.VendorGemini:    f,
		ai.VendorAnthropic: f,
	})
}
