package formwave

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultHistoryWindow bounds the view and completion history kept per form.
const DefaultHistoryWindow = 30 * 24 * time.Hour

// NoActivity is reported by MostActiveTime when no view was recorded.
const NoActivity = "No data"

// FormAnalytics holds the view and completion counters of one form.
type FormAnalytics struct {
	FormID            string      `json:"formId"`
	Views             int         `json:"views"`
	Completions       int         `json:"completions"`
	LastViewed        time.Time   `json:"lastViewed"`
	ViewHistory       []time.Time `json:"viewHistory"`
	CompletionHistory []time.Time `json:"completionHistory"`
}

// DailyActivity is one point of the per-day activity series.
type DailyActivity struct {
	Date        string `json:"date"` // YYYY-MM-DD, UTC
	Views       int    `json:"views"`
	Completions int    `json:"completions"`
}

// NewFormAnalytics returns an empty record for formID.
func NewFormAnalytics(formID string, now time.Time) *FormAnalytics {
	return &FormAnalytics{
		FormID:            formID,
		LastViewed:        now,
		ViewHistory:       []time.Time{},
		CompletionHistory: []time.Time{},
	}
}

// RecordView counts a view at now and drops view history older than window.
func (a *FormAnalytics) RecordView(now time.Time, window time.Duration) {
	a.Views++
	a.LastViewed = now
	a.ViewHistory = pruneHistory(append(a.ViewHistory, now), now.Add(-window))
}

// RecordCompletion counts a submission at now and drops completion history
// older than window.
func (a *FormAnalytics) RecordCompletion(now time.Time, window time.Duration) {
	a.Completions++
	a.CompletionHistory = pruneHistory(append(a.CompletionHistory, now), now.Add(-window))
}

// CompletionRate is completions per view in percent, 0 without views.
func (a *FormAnalytics) CompletionRate() float64 {
	if a == nil || a.Views == 0 {
		return 0
	}
	return float64(a.Completions) / float64(a.Views) * 100
}

// MostActiveTime names the hour of day, in loc, with the most views, as
// "H:00 - H+1:00". Ties go to the later hour.
func (a *FormAnalytics) MostActiveTime(loc *time.Location) string {
	if a == nil || len(a.ViewHistory) == 0 {
		return NoActivity
	}
	if loc == nil {
		loc = time.Local
	}

	var counts [24]int
	for _, ts := range a.ViewHistory {
		counts[ts.In(loc).Hour()]++
	}
	best := -1
	for hour := range counts {
		if counts[hour] == 0 {
			continue
		}
		if best < 0 || counts[hour] >= counts[best] {
			best = hour
		}
	}
	return fmt.Sprintf("%d:00 - %d:00", best, best+1)
}

// DailySeries groups the history by UTC day and returns the last days
// entries with activity, oldest first.
func (a *FormAnalytics) DailySeries(days int) []DailyActivity {
	if a == nil {
		return []DailyActivity{}
	}
	byDay := make(map[string]*DailyActivity)
	bucket := func(ts time.Time) *DailyActivity {
		key := ts.UTC().Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			d = &DailyActivity{Date: key}
			byDay[key] = d
		}
		return d
	}
	for _, ts := range a.ViewHistory {
		bucket(ts).Views++
	}
	for _, ts := range a.CompletionHistory {
		bucket(ts).Completions++
	}

	series := make([]DailyActivity, 0, len(byDay))
	for _, d := range byDay {
		series = append(series, *d)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}
	return series
}

// Clone returns a deep copy of the record.
func (a *FormAnalytics) Clone() *FormAnalytics {
	if a == nil {
		return nil
	}
	out := *a
	out.ViewHistory = append([]time.Time{}, a.ViewHistory...)
	out.CompletionHistory = append([]time.Time{}, a.CompletionHistory...)
	return &out
}

func pruneHistory(history []time.Time, cutoff time.Time) []time.Time {
	kept := history[:0]
	for _, ts := range history {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

// AnalyticsStore persists one FormAnalytics record per form.
type AnalyticsStore interface {
	// Load returns nil without error when the form has no record yet.
	Load(ctx context.Context, formID string) (*FormAnalytics, error)
	Save(ctx context.Context, record *FormAnalytics) error
	Close() error
}

// AnalyticsTracker records form views and completions and derives the
// insight figures shown next to a form.
type AnalyticsTracker interface {
	TrackView(ctx context.Context, formID string) error
	TrackCompletion(ctx context.Context, formID string) error
	Get(ctx context.Context, formID string) (*FormAnalytics, error)
	CompletionRate(ctx context.Context, formID string) (float64, error)
	MostActiveTime(ctx context.Context, formID string) (string, error)
	DailySeries(ctx context.Context, formID string) ([]DailyActivity, error)
}
