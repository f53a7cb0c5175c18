package ics

import (
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Each feed covers one course's lectures for a few semesters; a day window
// can never legitimately contain more instances than this.
const maxInstancesPerEvent = 1000

// Instance is one concrete expansion of an event inside a day window,
// before room extraction.
type Instance struct {
	Event ParsedEvent
	Start time.Time
	End   time.Time
}

// Expand produces every concrete instance — singular or recurring — whose
// start falls inside the half-open window [windowStart, windowEnd).
//
// RRULE evaluation is delegated to rrule-go; EXDATEs remove instances and
// RECURRENCE-ID overrides replace the matching instance exactly once. An
// instance that started before windowStart is not represented, so a room
// mid-event at local midnight reads free; callers rely on that window
// bound and it must not change without revisiting the evaluator.
//
// Events with an unparseable RRULE expand to nothing; the rest of the
// document is unaffected.
func Expand(events []ParsedEvent, windowStart, windowEnd time.Time, log *zap.SugaredLogger) []Instance {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.RecurrenceID != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	out := make([]Instance, 0)
	for uid, baseEvents := range baseByUID {
		for _, ev := range baseEvents {
			if ev.RawRRule == "" {
				out = appendInWindow(out, expandSingle(ev, overridesByUID[uid]), windowStart, windowEnd)
				continue
			}
			out = appendInWindow(out, expandRecurring(ev, overridesByUID[uid], windowStart, windowEnd, log), windowStart, windowEnd)
		}
	}

	return out
}

// appendInWindow keeps only instances satisfying start < end and
// windowStart <= start < windowEnd. The check runs after override
// application so a moved instance cannot leak out of the window.
func appendInWindow(dst, src []Instance, windowStart, windowEnd time.Time) []Instance {
	for _, in := range src {
		if !in.Start.Before(in.End) {
			continue
		}
		if in.Start.Before(windowStart) || !in.Start.Before(windowEnd) {
			continue
		}
		dst = append(dst, in)
	}
	return dst
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent) []Instance {
	start, end, src := ev.Start, ev.End, ev
	if o, ok := overrideForStart(overrides, ev.Start); ok {
		start, end, src = o.Start, o.End, o
	}
	return []Instance{{Event: src, Start: start, End: end}}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, windowStart, windowEnd time.Time, log *zap.SugaredLogger) []Instance {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		log.Errorw("skipping event with malformed RRULE",
			"course", ev.CourseID, "uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(windowStart.In(ev.Start.Location()), windowEnd.In(ev.Start.Location()), true)
	if len(starts) > maxInstancesPerEvent {
		log.Errorw("instance cap hit during expansion",
			"course", ev.CourseID, "uid", ev.UID, "cap", maxInstancesPerEvent)
		starts = starts[:maxInstancesPerEvent]
	}

	duration := ev.End.Sub(ev.Start)

	out := make([]Instance, 0, len(starts))
	for _, occStart := range starts {
		start := occStart
		end := occStart.Add(duration)
		src := ev

		if ev.AllDay {
			start = time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			end = start.AddDate(0, 0, 1)
		}

		// An override replaces the instance whose original start matches
		// the RECURRENCE-ID exactly; the base instance is then dropped so
		// it is never counted twice.
		if o, ok := overrideForStart(overrides, start); ok {
			start, end, src = o.Start, o.End, o
		}

		out = append(out, Instance{Event: src, Start: start, End: end})
	}

	return out
}

func overrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID != nil && ov.RecurrenceID.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}
