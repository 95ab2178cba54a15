package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	fake := NewFakeClock(start)

	assert.Equal(t, time.UTC, fake.Now().Location())
	assert.True(t, fake.Now().Equal(start))

	fake.Advance(48 * time.Hour)
	assert.True(t, fake.Now().Equal(start.Add(48*time.Hour)))
}

func TestSystemClockReturnsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewSystemClock().Now().Location())
}
