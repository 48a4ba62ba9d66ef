package inventory

import "time"

// Window: interval sewa [start, end). Invariant: start < end.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Valid() bool { return w.Start.Before(w.End) }

// Overlaps: existing.start <= requested.end AND existing.end >= requested.start.
func (w Window) Overlaps(o Window) bool {
	return !w.Start.After(o.End) && !w.End.Before(o.Start)
}

// Days: durasi dalam hari, dibulatkan ke atas (minimal 0; caller yang validasi window).
func (w Window) Days() int64 {
	d := w.End.Sub(w.Start)
	day := 24 * time.Hour
	n := int64(d / day)
	if d%day != 0 {
		n++
	}
	return n
}
