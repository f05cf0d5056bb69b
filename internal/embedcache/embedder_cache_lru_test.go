package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	out   []float32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.out, nil
}

func (c *countingEmbedder) ModelName() string { return "fake-embed-001" }

func TestLruEmbedderMemoizes(t *testing.T) {
	inner := &countingEmbedder{out: []float32{0.1, 0.2}}
	e := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	ctx := context.Background()
	first, err := e.Embed(ctx, "rera certificate")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "rera certificate")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = e.Embed(ctx, "gst certificate")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestLruEmbedderReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{out: []float32{1, 2, 3}}
	e := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	ctx := context.Background()
	_, err := e.Embed(ctx, "text")
	require.NoError(t, err)
	got, err := e.Embed(ctx, "text")
	require.NoError(t, err)

	// Mutating a returned slice must not poison the cached value.
	got[0] = 99
	again, err := e.Embed(ctx, "text")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, again)
}

func TestWrapDisabled(t *testing.T) {
	inner := &countingEmbedder{}
	require.Nil(t, WrapLruCacheToEmbedder(nil, 16, time.Minute))
	require.Same(t, inner, WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Same(t, inner, WrapLruCacheToEmbedder(inner, 16, 0))
}
