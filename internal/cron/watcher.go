// Package cron runs the dashboard's background jobs.
package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"fraud-dashboard/internal/models"
)

// DefaultInterval is how often unresolved alerts are polled.
const DefaultInterval = time.Minute

// FeedSize is the number of unresolved alerts the watcher keeps.
const FeedSize = 100

// AlertSource lists risk alerts. Implemented by *riskapi.Client.
type AlertSource interface {
	ListAlerts(ctx context.Context, f models.AlertFilter) (*models.Page[models.RiskAlert], error)
}

// AlertWatcher polls the backend for unresolved alerts and keeps the latest
// snapshot in memory for the header badge and the alerts feed.
type AlertWatcher struct {
	src      AlertSource
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	alerts  []models.RiskAlert
	total   int
	seen    map[string]struct{}
	lastRun time.Time
	lastErr error
}

// WatcherOption configures an AlertWatcher.
type WatcherOption func(*AlertWatcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *AlertWatcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) WatcherOption {
	return func(w *AlertWatcher) { w.now = now }
}

// NewAlertWatcher creates a watcher. Call Start to begin polling.
func NewAlertWatcher(src AlertSource, opts ...WatcherOption) *AlertWatcher {
	w := &AlertWatcher{
		src:      src,
		interval: DefaultInterval,
		timeout:  30 * time.Second,
		now:      time.Now,
		seen:     map[string]struct{}{},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Start launches a goroutine that polls once immediately and then on every
// tick until ctx is cancelled.
func (w *AlertWatcher) Start(ctx context.Context) {
	go func() {
		w.runCycle(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runCycle(ctx)
			}
		}
	}()

	zap.L().Info("cron: alert watcher started", zap.Duration("interval", w.interval))
}

func (w *AlertWatcher) runCycle(ctx context.Context) {
	if err := w.Poll(ctx); err != nil && ctx.Err() == nil {
		zap.L().Warn("cron: polling alerts failed", zap.Error(err))
	}
}

// Poll fetches the current unresolved alerts and replaces the snapshot.
// Alerts not seen in an earlier poll are logged. On error the previous
// snapshot is kept.
func (w *AlertWatcher) Poll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	unresolved := false
	page, err := w.src.ListAlerts(ctx, models.AlertFilter{Resolved: &unresolved, Size: FeedSize})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRun = w.now()
	w.lastErr = err
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(page.Content))
	fresh := 0
	for _, a := range page.Content {
		seen[a.ID] = struct{}{}
		if _, ok := w.seen[a.ID]; ok {
			continue
		}
		fresh++
		zap.L().Info("cron: new risk alert",
			zap.String("id", a.ID),
			zap.String("company", a.CompanyName),
			zap.String("severity", a.Severity),
			zap.String("type", a.AlertType),
		)
	}

	w.alerts = page.Content
	w.total = page.TotalElements
	w.seen = seen

	zap.L().Debug("cron: alert poll complete",
		zap.Int("unresolved", w.total), zap.Int("new", fresh))
	return nil
}

// Feed returns the unresolved alerts allowed by p, newest snapshot first.
func (w *AlertWatcher) Feed(p models.NotificationPreferences) []models.RiskAlert {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]models.RiskAlert, 0, len(w.alerts))
	for _, a := range w.alerts {
		if p.Allows(a.Severity, a.AlertType) {
			out = append(out, a)
		}
	}
	return out
}

// Total is the backend's count of unresolved alerts at the last successful poll.
func (w *AlertWatcher) Total() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.total
}

// Status reports when the last poll ran and its error, if any.
func (w *AlertWatcher) Status() (time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastRun, w.lastErr
}

// Forget drops an alert from the snapshot, e.g. right after it was resolved,
// so the badge updates before the next poll.
func (w *AlertWatcher) Forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, a := range w.alerts {
		if a.ID == id {
			w.alerts = append(w.alerts[:i:i], w.alerts[i+1:]...)
			if w.total > 0 {
				w.total--
			}
			return
		}
	}
}
