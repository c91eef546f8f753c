package clock

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clk := NewMockClock(start)

	assert.Equal(t, start, clk.Now())

	clk.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), clk.Now())

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	clk.Set(later)
	assert.Equal(t, later, clk.Now())
}

func TestToday(t *testing.T) {
	// 23:30 UTC on March 10th is already March 11th in Tokyo.
	instant := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	clk := NewMockClock(instant)

	t.Run("nil location uses UTC", func(t *testing.T) {
		assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 10}, Today(clk, nil))
	})

	t.Run("business timezone shifts the date", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 11}, Today(clk, tokyo))
	})
}

func TestRealClock_ReturnsUTC(t *testing.T) {
	now := NewRealClock().Now()
	assert.Equal(t, time.UTC, now.Location())
}
