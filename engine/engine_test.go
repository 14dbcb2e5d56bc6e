package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/krisalay/file-cache-server/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderFunc func(ctx context.Context, key string) ([]byte, error)

func (f loaderFunc) Load(ctx context.Context, key string) ([]byte, error) { return f(ctx, key) }

func TestLoadBuildsEntry(t *testing.T) {
	e := NewCacheEngine(loaderFunc(func(_ context.Context, key string) ([]byte, error) {
		return []byte("body of " + key), nil
	}), nil)

	ent, err := e.Load(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", ent.Key)
	assert.Equal(t, "body of a.txt", string(ent.Payload))
	assert.Equal(t, int64(len("body of a.txt")), ent.Size)
	assert.True(t, ent.LastAccessedAt.IsZero())
	assert.NoError(t, ent.Validate())
}

func TestLoadWrapsLoaderError(t *testing.T) {
	e := NewCacheEngine(loaderFunc(func(context.Context, string) ([]byte, error) {
		return nil, types.ErrNotFound
	}), nil)

	_, err := e.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, types.ErrNotFound))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestNilLoaderAndMetrics(t *testing.T) {
	e := NewCacheEngine(nil, nil)
	assert.IsType(t, types.NoopMetrics{}, e.Metrics)

	_, err := e.Load(context.Background(), "x")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
