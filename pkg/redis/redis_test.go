package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/sipit-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(&config.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(client) })

	assert.NoError(t, Ping(context.Background(), client))
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	client, err := New(&config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
