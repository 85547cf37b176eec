package internal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

// DailySeriesDays is the length of the activity series shown per form.
const DailySeriesDays = 7

// AnalyticsTrackerOptions tunes an AnalyticsTracker. Zero values select the defaults.
type AnalyticsTrackerOptions struct {
	Window   time.Duration
	Location *time.Location
	Now      func() time.Time
}

// AnalyticsTracker implements formwave.AnalyticsTracker on top of an
// AnalyticsStore. Updates are read-modify-write under one mutex, so a tracker
// must be the only writer of its store.
type AnalyticsTracker struct {
	store  formwave.AnalyticsStore
	window time.Duration
	loc    *time.Location
	now    func() time.Time
	mu     sync.Mutex
}

var _ formwave.AnalyticsTracker = (*AnalyticsTracker)(nil)

func NewAnalyticsTracker(store formwave.AnalyticsStore, opts AnalyticsTrackerOptions) *AnalyticsTracker {
	if opts.Window <= 0 {
		opts.Window = formwave.DefaultHistoryWindow
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AnalyticsTracker{store: store, window: opts.Window, loc: opts.Location, now: opts.Now}
}

func (t *AnalyticsTracker) TrackView(ctx context.Context, formID string) error {
	return t.update(ctx, formID, func(rec *formwave.FormAnalytics, now time.Time) {
		rec.RecordView(now, t.window)
	})
}

func (t *AnalyticsTracker) TrackCompletion(ctx context.Context, formID string) error {
	return t.update(ctx, formID, func(rec *formwave.FormAnalytics, now time.Time) {
		rec.RecordCompletion(now, t.window)
	})
}

func (t *AnalyticsTracker) update(ctx context.Context, formID string, fn func(*formwave.FormAnalytics, time.Time)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rec, err := t.store.Load(ctx, formID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = formwave.NewFormAnalytics(formID, now)
	}
	fn(rec, now)
	if err := t.store.Save(ctx, rec); err != nil {
		zap.S().Warnw("save analytics failed", "formId", formID, "error", err)
		return err
	}
	return nil
}

// Get returns the record of formID, or an empty one when nothing was tracked.
func (t *AnalyticsTracker) Get(ctx context.Context, formID string) (*formwave.FormAnalytics, error) {
	rec, err := t.store.Load(ctx, formID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return formwave.NewFormAnalytics(formID, t.now()), nil
	}
	return rec, nil
}

func (t *AnalyticsTracker) CompletionRate(ctx context.Context, formID string) (float64, error) {
	rec, err := t.Get(ctx, formID)
	if err != nil {
		return 0, err
	}
	return rec.CompletionRate(), nil
}

func (t *AnalyticsTracker) MostActiveTime(ctx context.Context, formID string) (string, error) {
	rec, err := t.Get(ctx, formID)
	if err != nil {
		return "", err
	}
	return rec.MostActiveTime(t.loc), nil
}

func (t *AnalyticsTracker) DailySeries(ctx context.Context, formID string) ([]formwave.DailyActivity, error) {
	rec, err := t.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	return rec.DailySeries(DailySeriesDays), nil
}
