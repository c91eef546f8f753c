package testutil

import (
	"time"

	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
)

// ReferenceTime is the fixed "now" used across unit tests.
var ReferenceTime = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

// NewFixedClock creates a mock clock fixed at ReferenceTime.
func NewFixedClock() *clock.MockClock {
	return clock.NewMockClock(ReferenceTime)
}
