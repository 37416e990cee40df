package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurstThenDeny(t *testing.T) {
	rl := newRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow(), "burst token %d", i)
	}
	assert.False(t, rl.allow(), "bucket should be empty")
}

func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(2, 40*time.Millisecond)

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.allow(), "tokens should refill over time")
}

func TestRateLimiterDefensiveDefaults(t *testing.T) {
	rl := newRateLimiter(0, 0)
	assert.True(t, rl.allow())
}
