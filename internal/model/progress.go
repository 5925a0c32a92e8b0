package model

import (
	"fmt"
	"time"
)

// Scan records an accepted code
type Scan struct {
	Level     int
	ScannedAt time.Time
}

// Progress is a player's position in the hunt and its timing
type Progress struct {
	CurrentLevel   int
	Completed      bool
	StartedAt      *time.Time
	EndedAt        *time.Time
	ElapsedSeconds *int64
	Scans          []Scan
}

// NewProgress returns the state every account starts from (and returns to on reset)
func NewProgress() Progress {
	return Progress{
		CurrentLevel: 1,
		Scans:        []Scan{},
	}
}

// Clone returns a deep copy of the progress
func (p Progress) Clone() Progress {
	c := p
	if p.StartedAt != nil {
		t := *p.StartedAt
		c.StartedAt = &t
	}
	if p.EndedAt != nil {
		t := *p.EndedAt
		c.EndedAt = &t
	}
	if p.ElapsedSeconds != nil {
		e := *p.ElapsedSeconds
		c.ElapsedSeconds = &e
	}
	c.Scans = make([]Scan, len(p.Scans))
	copy(c.Scans, p.Scans)
	return c
}

// Advance returns the progress after the code for target has been accepted.
// When final is set the hunt is completed and the timer stopped.
func (p Progress) Advance(target int, now time.Time, final bool) Progress {
	next := p.Clone()
	next.CurrentLevel = target
	next.Scans = append(next.Scans, Scan{Level: target, ScannedAt: now})

	if final {
		end := now
		elapsed := ElapsedSeconds(p.StartedAt, end)
		next.Completed = true
		next.EndedAt = &end
		next.ElapsedSeconds = &elapsed
	}
	return next
}

// ElapsedSeconds returns whole seconds between start and end, truncated.
// A nil start yields 0.
func ElapsedSeconds(start *time.Time, end time.Time) int64 {
	if start == nil {
		return 0
	}
	d := end.Sub(*start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// SameInstant reports whether two optional timestamps are both unset or
// both set to the same instant
func SameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// FormatElapsed renders seconds as "1h 2m 3s"
func FormatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
