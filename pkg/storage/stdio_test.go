package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := NewStdioEngineWith(strings.NewReader("input"), &stdout, &stderr)
	ctx := context.Background()

	b, err := Get(ctx, e, MustParseURI("-"), 0)
	require.NoError(t, err)
	assert.Equal(t, "input", string(b))
	// The stream stays usable after a reader is closed.
	b, err = Get(ctx, e, MustParseURI("stdio:stdin"), 0)
	require.NoError(t, err)
	assert.Empty(t, b)

	require.NoError(t, Put(ctx, e, MustParseURI("stdio:stdout"), []byte("out")))
	require.NoError(t, Put(ctx, e, MustParseURI("stdio:stderr"), []byte("err")))
	assert.Equal(t, "out", stdout.String())
	assert.Equal(t, "err", stderr.String())

	_, err = e.Get(ctx, MustParseURI("stdio:stdout"))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = e.Put(ctx, MustParseURI("stdio:stdin"))
	assert.ErrorIs(t, err, ErrNotSupported)

	ok, err := e.Exists(ctx, MustParseURI("stdio:stderr"))
	require.NoError(t, err)
	assert.True(t, ok)
}
