package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client), mr
}

func TestSetGetJSON(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	type lot struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	c.SetJSON(ctx, ParkingLotsKey, []lot{{ID: 1, Name: "Central"}}, time.Minute)

	var got []lot
	found := c.GetJSON(ctx, ParkingLotsKey, &got)
	require.True(t, found)
	assert.Equal(t, "Central", got[0].Name)
}

func TestGetJSONMiss(t *testing.T) {
	c, _ := setupTestCache(t)

	var dest map[string]any
	assert.False(t, c.GetJSON(context.Background(), "nope", &dest))
}

func TestInvalidatePattern(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, "parking-lots", 1, time.Minute)
	c.SetJSON(ctx, "parking-lots:detail:3", 2, time.Minute)
	c.SetJSON(ctx, "user-spending:7", 3, time.Minute)

	c.InvalidatePattern(ctx, "parking-lots*")

	var dest int
	assert.False(t, c.GetJSON(ctx, "parking-lots", &dest))
	assert.False(t, c.GetJSON(ctx, "parking-lots:detail:3", &dest))
	assert.True(t, c.GetJSON(ctx, "user-spending:7", &dest))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.SetJSON(ctx, "k", 1, time.Minute)
	c.InvalidatePattern(ctx, "k*")

	var dest int
	assert.False(t, c.GetJSON(ctx, "k", &dest))
}
