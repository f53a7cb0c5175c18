// Package finder answers availability queries by combining the feed
// aggregator, the daily snapshot store and the schedule engine.
package finder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"raumcheck/internal/model"
	"raumcheck/internal/schedule"
	"raumcheck/internal/snapshot"
	"raumcheck/internal/tz"
)

// Fetcher is the feed-aggregation capability. The returned map contains
// only course ids whose fetch succeeded.
type Fetcher interface {
	FetchAll(ctx context.Context, courseIDs []string) map[string][]byte
}

// Finder serves availability and day-plan queries. It holds no schedule
// state between calls; every query rebuilds from the current document
// set (snapshot or fresh fetch).
type Finder struct {
	courseIDs []string
	fetcher   Fetcher
	store     snapshot.Store
	norm      tz.Normalizer
	log       *zap.SugaredLogger
}

// New constructs a Finder. A nil store disables snapshotting.
func New(courseIDs []string, fetcher Fetcher, store snapshot.Store, norm tz.Normalizer, log *zap.SugaredLogger) *Finder {
	if store == nil {
		store = snapshot.Disabled{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Finder{
		courseIDs: courseIDs,
		fetcher:   fetcher,
		store:     store,
		norm:      norm,
		log:       log,
	}
}

// FindAvailability reports, for every room with a booking on at's date,
// whether it is busy at that instant and when the next booking starts.
// buildingPrefix optionally restricts results to one building letter.
// A fully failed aggregation yields an empty list, never an error.
func (f *Finder) FindAvailability(ctx context.Context, at time.Time, buildingPrefix string) []model.RoomAvailability {
	at = f.norm.In(at)
	sched := schedule.Build(f.documents(ctx, at), at, f.norm, f.log)
	return schedule.Evaluate(sched, at, buildingPrefix)
}

// RoomScheduleFor returns one room's day plan for at's date, with the
// entry containing at marked active.
func (f *Finder) RoomScheduleFor(ctx context.Context, roomCode string, at time.Time) []model.ScheduleEntry {
	at = f.norm.In(at)
	sched := schedule.Build(f.documents(ctx, at), at, f.norm, f.log)
	return schedule.DayPlan(sched, roomCode, at)
}

// Refresh forces a fresh aggregation for at's date and rewrites the
// snapshot. Used by the cron schedule and the refresh endpoint.
func (f *Finder) Refresh(ctx context.Context, at time.Time) {
	date := f.norm.DateKey(at)
	docs := f.fetcher.FetchAll(ctx, f.courseIDs)
	if len(docs) == 0 {
		// Keep whatever snapshot exists rather than overwrite it with
		// nothing; the next query will retry.
		f.log.Errorw("refresh produced no feeds; keeping previous snapshot", "date", date)
		return
	}
	if err := f.store.Save(date, docs); err != nil {
		f.log.Errorw("snapshot save failed", "date", date, "err", err)
	}
}

// documents returns the feed batch for at's date: today's snapshot when
// present, otherwise a fresh aggregation (persisted on success).
func (f *Finder) documents(ctx context.Context, at time.Time) map[string][]byte {
	date := f.norm.DateKey(at)

	if docs, ok := f.store.Load(date); ok {
		f.log.Debugw("using snapshot", "date", date, "feeds", len(docs))
		return docs
	}

	docs := f.fetcher.FetchAll(ctx, f.courseIDs)
	if len(docs) > 0 {
		if err := f.store.Save(date, docs); err != nil {
			f.log.Errorw("snapshot save failed", "date", date, "err", err)
		}
	}
	return docs
}
