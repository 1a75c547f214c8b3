package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(5*time.Minute, 10*time.Minute)

	key := CacheKeyLikeCount(42)
	c.Set(key, int64(7))

	value, found := c.Get(key)
	assert.True(t, found)
	assert.Equal(t, int64(7), value)
}

func TestCacheExpiration(t *testing.T) {
	c := NewCache(5*time.Minute, 10*time.Minute)

	c.Set(CacheKeyLikeCount(1), int64(3), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get(CacheKeyLikeCount(1))
	assert.False(t, found)
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(5*time.Minute, 10*time.Minute)

	c.Set(CacheKeyCities(), []string{"Yangon"})
	c.Flush()

	_, found := c.Get(CacheKeyCities())
	assert.False(t, found)
}
