package store

import "time"

// versionLayout names install version directories. Fixed width, millisecond
// precision, and lexically sortable, so a plain directory listing yields
// versions in creation order.
const versionLayout = "2006-01-02-15:04.05.000"

// Clock supplies the store's notion of current time. Install version names
// and modification timestamps come from here; tests substitute a manual
// clock to get deterministic directory names.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, backed by the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
