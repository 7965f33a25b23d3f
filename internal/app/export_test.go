package app

import "time"

// SetClock replaces the app's time source.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}
