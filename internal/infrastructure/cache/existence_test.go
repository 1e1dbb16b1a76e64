package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLExistenceCache(t *testing.T) {
	c := NewTTLExistenceCache(50 * time.Millisecond)

	assert.False(t, c.Known("user-1"))

	c.Remember("user-1")
	assert.True(t, c.Known("user-1"))

	c.Forget("user-1")
	assert.False(t, c.Known("user-1"))
}

func TestTTLExistenceCache_Expires(t *testing.T) {
	c := NewTTLExistenceCache(20 * time.Millisecond)
	c.Remember("user-1")

	assert.Eventually(t, func() bool {
		return !c.Known("user-1")
	}, time.Second, 10*time.Millisecond)
}

func TestNoopExistenceCache(t *testing.T) {
	var c ExistenceCache = NoopExistenceCache{}
	c.Remember("user-1")
	assert.False(t, c.Known("user-1"))
}
