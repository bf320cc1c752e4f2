package gateway

import "time"

// Clock supplies the current time. Passing it explicitly keeps record
// timestamps and generated transaction numbers deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
