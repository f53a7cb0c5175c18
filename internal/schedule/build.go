// Package schedule builds per-room day schedules from aggregated feeds
// and evaluates free/busy at a target instant.
package schedule

import (
	"time"

	"go.uber.org/zap"

	"raumcheck/internal/ics"
	"raumcheck/internal/model"
	"raumcheck/internal/room"
	"raumcheck/internal/tz"
)

// Build turns the aggregated feed bodies into a RoomSchedule for the day
// containing targetDate.
//
// Per document: expand into the day window, extract a room code per
// instance (instances without one are dropped), normalize endpoints, and
// append to the room's list unless an occurrence with the same
// (start, end) already exists there — the same lecture often appears in
// several course feeds sharing a room. A document that fails to parse
// contributes nothing; availability degrades silently rather than
// failing the query.
//
// Lists are left unsorted; Evaluate and DayPlan sort on demand.
func Build(docs map[string][]byte, targetDate time.Time, norm tz.Normalizer, log *zap.SugaredLogger) model.RoomSchedule {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	windowStart, windowEnd := norm.DayWindow(targetDate)
	sched := make(model.RoomSchedule)

	for courseID, body := range docs {
		events, err := ics.Parse(courseID, body, norm)
		if err != nil {
			log.Debugw("skipping unparseable feed", "course", courseID, "err", err)
			continue
		}

		for _, in := range ics.Expand(events, windowStart, windowEnd, log) {
			code, ok := room.Extract(in.Event.Location)
			if !ok {
				continue
			}

			occ := model.Occurrence{
				CourseID: courseID,
				Room:     code,
				Summary:  in.Event.Summary,
				Start:    norm.In(in.Start),
				End:      norm.In(in.End),
			}

			if containsInterval(sched[code], occ.Start, occ.End) {
				continue
			}
			sched[code] = append(sched[code], occ)
		}
	}

	return sched
}

func containsInterval(occs []model.Occurrence, start, end time.Time) bool {
	for _, o := range occs {
		if o.Start.Equal(start) && o.End.Equal(end) {
			return true
		}
	}
	return false
}
