// Package ics fetches per-course calendar feeds and turns them into
// concrete occurrences for a bounded day window.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"raumcheck/internal/tz"
)

// ParsedEvent is the normalized representation of a VEVENT. Recurrence
// expansion operates on this type; it records RRULE/EXDATE/RECURRENCE-ID
// verbatim and leaves expansion to expand.go.
type ParsedEvent struct {
	CourseID string

	UID string

	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule     string
	ExDates      []time.Time
	RecurrenceID *time.Time // set when this VEVENT overrides one recurring instance
	IsOverride   bool
}

// Parse parses one course's ICS payload into a list of ParsedEvent.
//
// Timestamps are resolved against the reference zone: a TZID or UTC
// marker is honored, while floating values are taken as reference-zone
// wall-clock time. Individual malformed VEVENTs are skipped; a document
// that does not parse at all is an error the caller treats as "zero
// occurrences for this course".
func Parse(courseID string, body []byte, norm tz.Normalizer) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar for %s: %w", courseID, err)
	}

	events := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(courseID, ve, norm)
		if perr != nil {
			// Skip this event, keep the rest of the document.
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func parseVEvent(courseID string, ve *ical.VEvent, norm tz.Normalizer) (ParsedEvent, error) {
	out := ParsedEvent{CourseID: courseID}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return out, errors.New("missing DTSTART")
	}

	start, allDay, err := parsePropTime(dtStart, norm)
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = start
	out.AllDay = allDay

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
		end, _, eerr := parsePropTime(dtEnd, norm)
		if eerr != nil {
			return out, fmt.Errorf("DTEND: %w", eerr)
		}
		out.End = end
	} else if allDay {
		out.End = start.AddDate(0, 0, 1)
	} else {
		// No DTEND and not all-day: zero-length event, dropped later by
		// the start < end invariant.
		out.End = start
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE may appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, terr := parseRawTime(part, propTZID(p), norm); terr == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil && p.Value != "" {
		if t, terr := parseRawTime(p.Value, propTZID(p), norm); terr == nil {
			out.RecurrenceID = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

func propTZID(p *ical.IANAProperty) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if vs, ok := p.ICalParameters["TZID"]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func propIsDate(p *ical.IANAProperty) bool {
	if p == nil {
		return false
	}
	if p.ICalParameters != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// parsePropTime resolves a DTSTART/DTEND property into an instant plus an
// all-day marker.
func parsePropTime(p *ical.IANAProperty, norm tz.Normalizer) (time.Time, bool, error) {
	allDay := propIsDate(p)
	t, err := parseRawTime(p.Value, propTZID(p), norm)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, allDay, nil
}

// parseRawTime parses an ICS DATE / DATE-TIME value.
//
//   - "...Z" suffix: UTC, converted into the reference zone.
//   - TZID parameter: parsed in that zone, converted into the reference zone.
//   - floating: taken as reference-zone wall-clock time (feeds emit naive
//     local times, never UTC).
//   - date-only: reference-zone midnight of that date.
func parseRawTime(v, tzid string, norm tz.Normalizer) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		if err != nil {
			return time.Time{}, err
		}
		return norm.In(t), nil
	}

	if strings.Contains(v, "T") {
		if tzid != "" {
			loc, err := time.LoadLocation(tzid)
			if err != nil {
				return time.Time{}, fmt.Errorf("unknown TZID %q: %w", tzid, err)
			}
			t, perr := time.ParseInLocation("20060102T150405", v, loc)
			if perr != nil {
				return time.Time{}, perr
			}
			return norm.In(t), nil
		}
		return time.ParseInLocation("20060102T150405", v, norm.Location())
	}

	return time.ParseInLocation("20060102", v, norm.Location())
}
