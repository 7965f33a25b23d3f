package trainer

import "time"

// SetClock replaces the orchestrator's clock for testing.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
}
