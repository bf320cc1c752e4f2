package gateway

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// Custom epoch keeps the millisecond timestamp at 11 digits (safe until
// ~2029), leaving room for the 4-digit random suffix.
var uniqueNumberEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// UniqueNumberGenerator produces 15-digit time-based transaction numbers.
// Uniqueness is probabilistic: two calls within the same millisecond
// collide with probability 1/9000, which is accepted at the request rates
// a single merchant terminal sees.
type UniqueNumberGenerator struct {
	clock Clock
}

func NewUniqueNumberGenerator(clock Clock) *UniqueNumberGenerator {
	if clock == nil {
		clock = SystemClock()
	}
	return &UniqueNumberGenerator{clock: clock}
}

func (g *UniqueNumberGenerator) Generate() string {
	millis := g.clock.Now().UnixMilli() - uniqueNumberEpoch.UnixMilli()
	suffix := rand.IntN(9000) + 1000

	return strconv.FormatInt(millis, 10) + strconv.Itoa(suffix)
}
