package registry

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxsearch/internal/resources"
	"github.com/fyrsmithlabs/ctxsearch/internal/retrieval"
)

type fakeComponent struct{ reply string }

func (f *fakeComponent) Run(ctx context.Context, params map[string]string) (string, error) {
	return f.reply, nil
}

func TestGetConstructsOnceAndCaches(t *testing.T) {
	var builds int32
	Register("test_once_component", func(res *resources.Registry, engine *retrieval.Engine) (Component, error) {
		atomic.AddInt32(&builds, 1)
		return &fakeComponent{reply: "built"}, nil
	})

	reg := New(nil, nil)

	c1, err := reg.Get("test_once_component")
	require.NoError(t, err)
	c2, err := reg.Get("test_once_component")
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))

	out, err := c1.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "built", out)
}

func TestGetUnknownName(t *testing.T) {
	reg := New(nil, nil)
	_, err := reg.Get("no_such_component")
	assert.Error(t, err)
}

func TestRegisterPanicsOnDuplicateName(t *testing.T) {
	Register("test_duplicate_component", func(res *resources.Registry, engine *retrieval.Engine) (Component, error) {
		return &fakeComponent{}, nil
	})

	assert.Panics(t, func() {
		Register("test_duplicate_component", func(res *resources.Registry, engine *retrieval.Engine) (Component, error) {
			return &fakeComponent{}, nil
		})
	})
}
