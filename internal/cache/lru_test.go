package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[int](2, WithEvictHook(func(ns, key string, _ int) {
		evicted = append(evicted, ns+":"+key)
	}))

	c.Set("s", "a", 1)
	c.Set("s", "b", 2)
	_, _ = c.Get("s", "a")
	c.Set("s", "c", 3)

	_, ok := c.Get("s", "b")
	assert.False(t, ok)
	v, ok := c.Get("s", "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"s:b"}, evicted)
	assert.Equal(t, 2, c.Size())
}

func TestLRUNamespacesAreIndependent(t *testing.T) {
	c := New[string](10)
	c.Set("session", "x", "controller")
	c.Set("download", "x", "artifact")

	v, _ := c.Get("session", "x")
	assert.Equal(t, "controller", v)

	c.InvalidateNamespace("download")
	_, ok := c.Get("download", "x")
	assert.False(t, ok)
	_, ok = c.Get("session", "x")
	assert.True(t, ok)
}

func TestLRUTakeIsOneShot(t *testing.T) {
	c := New[int](4)
	c.Set("d", "id", 7)

	v, ok := c.Take("d", "id")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = c.Take("d", "id")
	assert.False(t, ok)
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](4, WithTTL[int](time.Minute), WithClock[int](func() time.Time { return now }))

	c.Set("d", "id", 1)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("d", "id")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok = c.Get("d", "id")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestLRUReplaceKeepsSize(t *testing.T) {
	c := New[int](1)
	c.Set("s", "a", 1)
	c.Set("s", "a", 2)

	v, ok := c.Get("s", "a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	c.Invalidate("s", "a")
	assert.Equal(t, 0, c.Size())
}
