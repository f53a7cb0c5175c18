// Package tz normalizes instants into the single reference timezone used
// for all schedule comparisons.
package tz

import "time"

// DefaultZone is the campus civil timezone.
const DefaultZone = "Europe/Berlin"

// Normalizer converts instants into one fixed reference zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer resolves the given IANA zone name. An empty or unknown
// name falls back to DefaultZone.
func NewNormalizer(zone string) (Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Normalizer{}, err
	}
	return Normalizer{loc: loc}, nil
}

// MustNormalizer is NewNormalizer for static zone names.
func MustNormalizer(zone string) Normalizer {
	n, err := NewNormalizer(zone)
	if err != nil {
		panic(err)
	}
	return n
}

// Location returns the reference zone.
func (n Normalizer) Location() *time.Location {
	return n.loc
}

// In converts a zoned instant into the reference zone. Idempotent: an
// already-normalized instant passes through unchanged.
func (n Normalizer) In(t time.Time) time.Time {
	return t.In(n.loc)
}

// FromWall reinterprets t's wall-clock fields in the reference zone.
// Upstream feeds emit floating (zone-less) local times; those are campus
// civil time, never UTC, so the clock reading is kept and only the zone
// is attached.
func (n Normalizer) FromWall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), n.loc)
}

// DayWindow returns the half-open window [local midnight, next local
// midnight) containing t, in the reference zone.
func (n Normalizer) DayWindow(t time.Time) (start, end time.Time) {
	local := t.In(n.loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.loc)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// DateKey formats t's calendar date in the reference zone as YYYY-MM-DD.
// Used to key daily snapshots.
func (n Normalizer) DateKey(t time.Time) string {
	return t.In(n.loc).Format("2006-01-02")
}
