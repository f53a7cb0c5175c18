package schedule

import (
	"sort"
	"strings"
	"time"

	"raumcheck/internal/model"
)

// Evaluate computes, for every room in the schedule, whether it is booked
// at the given instant and — if free — when its next booking begins.
// buildingPrefix, when non-empty, restricts the result to room codes
// starting with it.
//
// Per room the occurrence list is stable-sorted by start (entries with
// equal starts keep insertion order; the feeds carry no secondary key)
// and scanned once: the first interval containing the instant makes the
// room BUSY, otherwise the first later start becomes "free until", and
// with no later start the room is free for the rest of the day.
//
// Known bound: a booking that began before local midnight is absent from
// the day window, so such a room reads FREE right after midnight.
//
// Results are ordered by room code.
func Evaluate(sched model.RoomSchedule, at time.Time, buildingPrefix string) []model.RoomAvailability {
	rooms := make([]string, 0, len(sched))
	for code := range sched {
		if buildingPrefix != "" && !strings.HasPrefix(code, buildingPrefix) {
			continue
		}
		rooms = append(rooms, code)
	}
	sort.Strings(rooms)

	out := make([]model.RoomAvailability, 0, len(rooms))
	for _, code := range rooms {
		out = append(out, evaluateRoom(code, sched[code], at))
	}
	return out
}

func evaluateRoom(code string, occs []model.Occurrence, at time.Time) model.RoomAvailability {
	sorted := sortedByStart(occs)

	for _, occ := range sorted {
		// Half-open membership: start <= at < end.
		if !occ.Start.After(at) && at.Before(occ.End) {
			return model.RoomAvailability{Room: code, Status: model.StatusBusy}
		}
		if occ.Start.After(at) {
			next := occ.Start
			return model.RoomAvailability{
				Room:      code,
				Status:    model.StatusFree,
				FreeUntil: &next,
			}
		}
	}

	return model.RoomAvailability{
		Room:       code,
		Status:     model.StatusFree,
		FreeAllDay: true,
	}
}

// DayPlan returns one room's occurrences for the day, sorted by start,
// with Active set for the entry containing at. Unknown rooms yield an
// empty plan.
func DayPlan(sched model.RoomSchedule, code string, at time.Time) []model.ScheduleEntry {
	sorted := sortedByStart(sched[code])

	entries := make([]model.ScheduleEntry, 0, len(sorted))
	for _, occ := range sorted {
		entries = append(entries, model.ScheduleEntry{
			Start:   occ.Start,
			End:     occ.End,
			Summary: occ.Summary,
			Active:  !occ.Start.After(at) && at.Before(occ.End),
		})
	}
	return entries
}

func sortedByStart(occs []model.Occurrence) []model.Occurrence {
	sorted := make([]model.Occurrence, len(occs))
	copy(sorted, occs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}
