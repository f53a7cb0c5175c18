package schedule

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raumcheck/internal/model"
	"raumcheck/internal/tz"
)

var norm = tz.MustNormalizer("Europe/Berlin")

// feed builds a minimal ICS document from (summary, location, start, end)
// tuples, all on 2024-03-11 as floating local times.
func feed(events ...[4]string) []byte {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//test//EN\r\n")
	for i, ev := range events {
		fmt.Fprintf(&b, "BEGIN:VEVENT\r\nUID:ev-%d\r\nSUMMARY:%s\r\nLOCATION:%s\r\n", i, ev[0], ev[1])
		fmt.Fprintf(&b, "DTSTART:20240311T%s00\r\nDTEND:20240311T%s00\r\nEND:VEVENT\r\n", ev[2], ev[3])
	}
	b.WriteString("END:VCALENDAR\r\n")
	return []byte(b.String())
}

func targetDay() time.Time {
	return time.Date(2024, 3, 11, 12, 0, 0, 0, norm.Location())
}

func TestBuildGroupsByRoom(t *testing.T) {
	docs := map[string][]byte{
		"FN-TIT24": feed(
			[4]string{"Mathe", "Raum N301", "0900", "1030"},
			[4]string{"Physik", "H205", "1000", "1100"},
		),
	}

	sched := Build(docs, targetDay(), norm, nil)

	require.Len(t, sched, 2)
	require.Len(t, sched["N301"], 1)
	require.Len(t, sched["H205"], 1)

	occ := sched["N301"][0]
	assert.Equal(t, "FN-TIT24", occ.CourseID)
	assert.Equal(t, "Mathe", occ.Summary)
	assert.Equal(t, 9, occ.Start.Hour())
	assert.Equal(t, "Europe/Berlin", occ.Start.Location().String())
}

func TestBuildDeduplicatesSharedLectures(t *testing.T) {
	// Two course feeds list the same lecture in the same room; one entry
	// must survive.
	docs := map[string][]byte{
		"FN-TIT24": feed([4]string{"Mathe", "N301", "0900", "1030"}),
		"FN-TIS24": feed([4]string{"Mathe", "N301", "0900", "1030"}),
	}

	sched := Build(docs, targetDay(), norm, nil)
	assert.Len(t, sched["N301"], 1)
}

func TestBuildKeepsDoubleBookings(t *testing.T) {
	// Same room, overlapping but not identical intervals: both stay.
	docs := map[string][]byte{
		"FN-TIT24": feed(
			[4]string{"Mathe", "N301", "0900", "1030"},
			[4]string{"Projekt", "N301", "1000", "1200"},
		),
	}

	sched := Build(docs, targetDay(), norm, nil)
	assert.Len(t, sched["N301"], 2)
}

func TestBuildDropsOccurrencesWithoutRoomCode(t *testing.T) {
	docs := map[string][]byte{
		"FN-TIT24": feed(
			[4]string{"Online-Vorlesung", "Zoom", "0900", "1030"},
			[4]string{"Mathe", "N301", "1100", "1230"},
		),
	}

	sched := Build(docs, targetDay(), norm, nil)
	require.Len(t, sched, 1)
	assert.Contains(t, sched, "N301")
}

func TestBuildSkipsUnparseableFeedOnly(t *testing.T) {
	docs := map[string][]byte{
		"FN-BROKEN": []byte("this is not a calendar"),
		"FN-TIT24":  feed([4]string{"Mathe", "N301", "0900", "1030"}),
	}

	sched := Build(docs, targetDay(), norm, nil)
	require.Len(t, sched, 1)
	assert.Len(t, sched["N301"], 1)
}

func TestBuildEmptyAggregation(t *testing.T) {
	sched := Build(map[string][]byte{}, targetDay(), norm, nil)
	assert.Empty(t, sched)
}

func TestBuildIsIdempotent(t *testing.T) {
	docs := map[string][]byte{
		"FN-TIT24": feed(
			[4]string{"Mathe", "N301", "0900", "1030"},
			[4]string{"Physik", "H205", "1000", "1100"},
			[4]string{"Projekt", "N301", "1300", "1430"},
		),
		"FN-TIS24": feed([4]string{"Mathe", "N301", "0900", "1030"}),
	}

	a := Build(docs, targetDay(), norm, nil)
	b := Build(docs, targetDay(), norm, nil)

	require.Equal(t, roomKeys(a), roomKeys(b))
	for code := range a {
		assert.ElementsMatch(t, a[code], b[code], "room %s", code)
	}
}

func roomKeys(s model.RoomSchedule) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
