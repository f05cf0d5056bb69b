package ai

import (
	"context"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// LazyEmbedder defers provider construction to the first Embed call and
// performs it at most once per process. A failed initialization is
// logged once and every later call returns ErrUnavailable, so the
// embedding signal degrades to zero for the rest of the run instead of
// killing the batch.
type LazyEmbedder struct {
	provider string
	model    string
	args     interface{}

	once sync.Once
	next IEmbedder
	err  error
}

func NewLazyEmbedder(provider, model string, args interface{}) *LazyEmbedder {
	return &LazyEmbedder{provider: provider, model: model, args: args}
}

func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(func() {
		if l.provider == "" {
			l.err = ErrUnavailable
			return
		}
		p, err := NewProvider(l.provider, l.args)
		if err != nil {
			logutil.GetLogger(ctx).Warn("embedding provider unavailable, embedding signal disabled",
				zap.String("provider", l.provider), zap.Error(err))
			l.err = ErrUnavailable
			return
		}
		l.next = NewEmbedder(p, l.model)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.next.Embed(ctx, text)
}

func (l *LazyEmbedder) ModelName() string {
	return l.model
}
