package finder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raumcheck/internal/model"
	"raumcheck/internal/tz"
)

var norm = tz.MustNormalizer("Europe/Berlin")

type fakeFetcher struct {
	docs  map[string][]byte
	calls int
}

func (f *fakeFetcher) FetchAll(_ context.Context, ids []string) map[string][]byte {
	f.calls++
	out := make(map[string][]byte)
	for _, id := range ids {
		if body, ok := f.docs[id]; ok {
			out[id] = body
		}
	}
	return out
}

type memStore struct {
	date string
	docs map[string][]byte
}

func (s *memStore) Load(date string) (map[string][]byte, bool) {
	if s.date != date || s.docs == nil {
		return nil, false
	}
	return s.docs, true
}

func (s *memStore) Save(date string, docs map[string][]byte) error {
	s.date = date
	s.docs = docs
	return nil
}

func lectureFeed(summary, location, start, end string) []byte {
	return []byte(fmt.Sprintf(
		"BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//test//EN\r\n"+
			"BEGIN:VEVENT\r\nUID:%s\r\nSUMMARY:%s\r\nLOCATION:%s\r\n"+
			"DTSTART:20240311T%s00\r\nDTEND:20240311T%s00\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n",
		summary, summary, location, start, end))
}

func queryTime(hh, mm int) time.Time {
	return time.Date(2024, 3, 11, hh, mm, 0, 0, norm.Location())
}

func TestFindAvailabilityEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "Raum N301", "0900", "1030"),
		"FN-TIS24": lectureFeed("Mathe", "Raum N301", "0900", "1030"),
		"FN-TWI24": lectureFeed("BWL", "H205", "1000", "1100"),
	}}
	f := New([]string{"FN-TIT24", "FN-TIS24", "FN-TWI24"}, fetcher, nil, norm, nil)

	got := f.FindAvailability(context.Background(), queryTime(9, 30), "")
	require.Len(t, got, 2)

	byRoom := map[string]model.RoomAvailability{}
	for _, r := range got {
		byRoom[r.Room] = r
	}
	assert.Equal(t, model.StatusBusy, byRoom["N301"].Status)
	assert.Equal(t, model.StatusFree, byRoom["H205"].Status)
	require.NotNil(t, byRoom["H205"].FreeUntil)
	assert.Equal(t, queryTime(10, 0), *byRoom["H205"].FreeUntil)

	got = f.FindAvailability(context.Background(), queryTime(11, 30), "")
	for _, r := range got {
		assert.Equal(t, model.StatusFree, r.Status)
		assert.True(t, r.FreeAllDay)
	}
}

func TestFindAvailabilityFetchIsolation(t *testing.T) {
	// One failing feed only removes its own occurrences.
	all := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "N301", "0900", "1030"),
		"FN-TWI24": lectureFeed("BWL", "H205", "1000", "1100"),
	}}
	partial := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "N301", "0900", "1030"),
	}}
	ids := []string{"FN-TIT24", "FN-TWI24"}

	full := New(ids, all, nil, norm, nil).FindAvailability(context.Background(), queryTime(9, 30), "")
	degraded := New(ids, partial, nil, norm, nil).FindAvailability(context.Background(), queryTime(9, 30), "")

	require.Len(t, full, 2)
	require.Len(t, degraded, 1)
	assert.Equal(t, full[len(full)-1], degraded[0]) // N301 sorts last of the two
}

func TestFindAvailabilityUsesFreshSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "N301", "0900", "1030"),
	}}
	store := &memStore{}
	f := New([]string{"FN-TIT24"}, fetcher, store, norm, nil)

	f.FindAvailability(context.Background(), queryTime(9, 30), "")
	f.FindAvailability(context.Background(), queryTime(10, 0), "")

	assert.Equal(t, 1, fetcher.calls, "second same-day query must come from the snapshot")
	assert.Equal(t, "2024-03-11", store.date)
}

func TestFindAvailabilityStaleSnapshotTriggersRefetch(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "N301", "0900", "1030"),
	}}
	store := &memStore{date: "2024-03-10", docs: map[string][]byte{}}
	f := New([]string{"FN-TIT24"}, fetcher, store, norm, nil)

	got := f.FindAvailability(context.Background(), queryTime(9, 30), "")

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, "2024-03-11", store.date)
	require.Len(t, got, 1)
}

func TestFindAvailabilityAllFetchesFailed(t *testing.T) {
	f := New([]string{"FN-TIT24"}, &fakeFetcher{}, nil, norm, nil)

	got := f.FindAvailability(context.Background(), queryTime(9, 30), "")
	assert.Empty(t, got)
}

func TestRefreshKeepsSnapshotOnTotalFailure(t *testing.T) {
	store := &memStore{date: "2024-03-11", docs: map[string][]byte{"FN-TIT24": []byte("x")}}
	f := New([]string{"FN-TIT24"}, &fakeFetcher{}, store, norm, nil)

	f.Refresh(context.Background(), queryTime(5, 0))

	_, ok := store.Load("2024-03-11")
	assert.True(t, ok, "empty refresh must not clobber an existing snapshot")
}

func TestRoomScheduleFor(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string][]byte{
		"FN-TIT24": lectureFeed("Mathe", "N301", "0900", "1030"),
	}}
	f := New([]string{"FN-TIT24"}, fetcher, nil, norm, nil)

	plan := f.RoomScheduleFor(context.Background(), "N301", queryTime(9, 30))
	require.Len(t, plan, 1)
	assert.Equal(t, "Mathe", plan[0].Summary)
	assert.True(t, plan[0].Active)

	assert.Empty(t, f.RoomScheduleFor(context.Background(), "X999", queryTime(9, 30)))
}
