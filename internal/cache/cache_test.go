package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTL_SetGet(t *testing.T) {
	c := NewTTL()
	c.Set("k", 42, time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestTTL_MissingKey(t *testing.T) {
	c := NewTTL()
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL()
	c.Set("k", "v", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on access")
}

func TestTTL_ZeroTTLNeverExpires(t *testing.T) {
	c := NewTTL()
	c.Set("k", "v", 0)
	time.Sleep(2 * time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestTTL_Invalidate(t *testing.T) {
	c := NewTTL()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Invalidate("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok, "invalidation must not touch other keys")
}
