package devicefs

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/events"
	"github.com/Kadajett/musicManager/internal/logger"
)

// Watcher publishes a fresh full device list whenever the set of mounted
// devices changes. Mount directories are watched with fsnotify where the
// platform exposes one; an interval rescan covers the rest. Consecutive
// identical snapshots are deduplicated.
type Watcher struct {
	store    *Store
	feed     *events.Feed[[]domain.Device]
	interval time.Duration
	log      logger.Logger

	last []domain.Device
}

// NewWatcher creates a device watcher publishing to feed
func NewWatcher(store *Store, feed *events.Feed[[]domain.Device], interval time.Duration) *Watcher {
	return &Watcher{
		store:    store,
		feed:     feed,
		interval: interval,
		log:      logger.With("component", "device-watcher"),
	}
}

// Run scans until the context is cancelled
// The initial scan always publishes so subscribers get a first snapshot
func (w *Watcher) Run(ctx context.Context) error {
	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn("fsnotify unavailable, falling back to polling", "error", err)
	} else {
		defer fw.Close()
		for _, p := range watchPaths() {
			if err := fw.Add(p); err != nil {
				w.log.Warn("failed to watch mount path", "path", p, "error", err)
			}
		}
		fsEvents = fw.Events
		fsErrors = fw.Errors
	}

	w.scan(ctx, true)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.scan(ctx, false)
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			w.log.Debug("mount table event", "event", ev.String())
			w.scan(ctx, false)
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			w.log.Warn("device watch error", "error", err)
		}
	}
}

// scan lists devices and publishes the snapshot if it changed
func (w *Watcher) scan(ctx context.Context, force bool) {
	devices, err := w.store.Devices(ctx)
	if err != nil {
		w.log.Warn("device scan failed", "error", err)
		return
	}

	if !force && equalDevices(w.last, devices) {
		return
	}

	w.last = devices
	w.log.Info("device list changed", "count", len(devices))
	w.feed.Publish(devices)
}

// equalDevices compares snapshots by identity-relevant fields
func equalDevices(a, b []domain.Device) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Path != b[i].Path || a[i].Name != b[i].Name || a[i].Removable != b[i].Removable {
			return false
		}
	}
	return true
}
