package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Score float64 `json:"score"`
}

func TestCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := New(client, "match", "match:", time.Minute)
	ctx := context.Background()

	var got payload
	assert.False(t, c.Get(ctx, "k", &got))

	require.NoError(t, c.Set(ctx, "k", payload{Score: 0.7}))
	assert.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 0.7, got.Score)
	assert.Equal(t, time.Minute, mr.TTL("match:k"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, c.Get(ctx, "k", &got))
}

func TestCache_RedisDownIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := New(client, "search", "s:", time.Minute)
	mr.Close()

	var got payload
	assert.False(t, c.Get(context.Background(), "k", &got))
	assert.Error(t, c.Set(context.Background(), "k", payload{}))
}

func TestCache_Disabled(t *testing.T) {
	var c *Cache
	var got payload
	assert.False(t, c.Get(context.Background(), "k", &got))
	assert.NoError(t, c.Set(context.Background(), "k", got))

	c = New(nil, "x", "x:", 0)
	assert.NoError(t, c.Set(context.Background(), "k", got))
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("a", "b"), Key("ab"))
	assert.Len(t, Key("x"), 32)
}
