package llm

import (
	"context"
	"sync"
)

// serialProvider wraps a Provider with a mutex so that only one
// completion runs at a time. The underlying generative model is a
// single shared resource that is not safely re-entrant; classifier,
// extraction and synthesis calls all funnel through this wrapper while
// vector searches fan out in parallel around it.
type serialProvider struct {
	mu    sync.Mutex
	inner Provider
}

// Serialize returns a Provider that executes completions one at a
// time. Wrapping an already-serialized provider returns it unchanged.
func Serialize(p Provider) Provider {
	if _, ok := p.(*serialProvider); ok {
		return p
	}
	return &serialProvider{inner: p}
}

func (s *serialProvider) Name() string {
	return s.inner.Name()
}

func (s *serialProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Complete(ctx, req)
}
