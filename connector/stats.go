package connector

import "fmt"

// ConnectionStats is a snapshot of a connection's pool. File based
// drivers report a single connection that is always in use.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	// MaxOpen is the pool limit, zero when the driver has none.
	MaxOpen int
}

func (s ConnectionStats) String() string {
	if s.MaxOpen > 0 {
		return fmt.Sprintf("open=%d/%d in_use=%d idle=%d", s.OpenConnections, s.MaxOpen, s.InUse, s.Idle)
	}
	return fmt.Sprintf("open=%d in_use=%d idle=%d", s.OpenConnections, s.InUse, s.Idle)
}
