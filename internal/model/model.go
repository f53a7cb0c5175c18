package model

import "time"

// Occurrence is one concrete timed instance of a lecture or other booking,
// after recurrence expansion and timezone normalization.
type Occurrence struct {
	CourseID string // feed the occurrence came from (e.g. "FN-TIT24")
	Room     string // canonical room code (e.g. "N301")

	Summary string

	// Start / End are in the configured reference timezone. Start < End.
	Start time.Time
	End   time.Time
}

// RoomSchedule maps a room code to that room's occurrences for one day.
// Lists are deduplicated by (start, end) but not sorted; sorting happens
// once at evaluation time.
type RoomSchedule map[string][]Occurrence

// AvailabilityStatus tags a room as currently booked or not.
type AvailabilityStatus string

const (
	StatusBusy AvailabilityStatus = "BUSY"
	StatusFree AvailabilityStatus = "FREE"
)

// RoomAvailability is the per-room answer to "is it free, and until when?".
type RoomAvailability struct {
	Room   string             `json:"room"`
	Status AvailabilityStatus `json:"status"`

	// FreeUntil is the start of the next booking. Nil when the room is
	// busy or free for the remainder of the day.
	FreeUntil *time.Time `json:"free_until,omitempty"`

	// FreeAllDay is true when the room is free with no later booking.
	FreeAllDay bool `json:"free_all_day,omitempty"`
}

// ScheduleEntry is one row of a room's day plan.
type ScheduleEntry struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Summary string    `json:"summary"`

	// Active is true when the queried instant falls inside [Start, End).
	Active bool `json:"active"`
}
