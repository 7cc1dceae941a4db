package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsInert(t *testing.T) {
	var c *Client
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)

	ok, err := c.SetNX(ctx, "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, c.Del(ctx, "k"))
	assert.Nil(t, c.Raw())
	assert.NoError(t, c.Close())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect("not a url")
	assert.Error(t, err)
}
