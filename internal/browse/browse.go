// Package browse implements the navigation controller: current path,
// history, loading and error state for one backing store.
// 兩個儲存區(本機與裝置)各自擁有獨立的控制器實例,互不共用狀態。
// The local and device stores each own an independent controller
// instance; they never share state.
package browse

import (
	"context"
	"sync"

	"github.com/Kadajett/musicManager/internal/backend"
	"github.com/Kadajett/musicManager/internal/core/listing"
	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/logger"
)

// State identifies where the controller is in a load cycle
type State int

const (
	// StateIdle means no navigation has happened yet
	StateIdle State = iota
	// StateLoading means a listing request is in flight
	StateLoading
	// StateReady means the listing matches the current path
	StateReady
	// StateFailed means the most recent load failed
	StateFailed
)

// Defaults is the persistence surface for location bookkeeping
type Defaults interface {
	// DefaultLocation returns the persisted default path, or
	// domain.ErrNotFound when none has been set
	DefaultLocation(ctx context.Context) (string, error)

	// SetDefaultLocation persists path as the default location
	SetDefaultLocation(ctx context.Context, path string) error

	// AddRecentLocation records path at the front of the recents list
	AddRecentLocation(ctx context.Context, path string) error
}

// Listener is notified with the new listing after every committed
// listing change, including resets and failures (empty listing)
type Listener func(l domain.Listing)

// Controller owns navigation state for one store. Safe for concurrent
// use; a listing response that no longer matches the most recent
// navigation request is discarded (last-request-wins).
type Controller struct {
	store    backend.Store
	meta     backend.MetadataSource
	defaults Defaults
	home     func() (string, error)
	log      logger.Logger

	mu          sync.Mutex
	seq         uint64
	state       State
	path        string
	history     []string
	listing     domain.Listing
	sort        domain.SortCriterion
	lastErr     error
	initialized bool
	listeners   []Listener
}

// New creates a controller over store. meta may be nil when the store
// has no tag source; defaults may be nil when location persistence is
// unavailable (recents and default location become no-ops). home
// resolves the fallback start directory for Initialize.
func New(name string, store backend.Store, meta backend.MetadataSource, defaults Defaults, home func() (string, error)) *Controller {
	return &Controller{
		store:    store,
		meta:     meta,
		defaults: defaults,
		home:     home,
		log:      logger.With("component", "browse", "store", name),
	}
}

// OnListingChange registers a listener for committed listing changes.
// Registration is not synchronized with in-flight loads; register
// before the first navigation.
func (c *Controller) OnListingChange(fn Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Path returns the most recently committed navigation target
func (c *Controller) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// State returns the controller state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listing returns the current listing
func (c *Controller) Listing() domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listing
}

// Lookup resolves a path against the current listing
func (c *Controller) Lookup(path string) (domain.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listing.Lookup(path)
}

// LastError returns the error from the most recent failed load, nil
// once a load succeeds
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sort returns the active sort criterion
func (c *Controller) Sort() domain.SortCriterion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// History returns a copy of the history stack, most recent last
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// Navigate moves to path: the previous path is pushed onto history and
// a fresh listing is loaded. Returns domain.ErrSuperseded if a newer
// navigation arrived while this one was loading.
func (c *Controller) Navigate(ctx context.Context, path string) error {
	gen := c.begin(path, true)
	return c.load(ctx, gen, path, true)
}

// Refresh reloads the current path without touching history
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	path := c.path
	c.mu.Unlock()
	if path == "" {
		return nil
	}

	gen := c.begin(path, false)
	return c.load(ctx, gen, path, false)
}

// SetSort switches the sort criterion and reloads the listing.
// The listing change clears any selection via the listeners.
func (c *Controller) SetSort(ctx context.Context, criterion domain.SortCriterion) error {
	c.mu.Lock()
	c.sort = criterion
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Back pops the most recent history entry. It does not navigate; call
// GoBack to pop and reload in one step. The second return is false when
// history is empty.
func (c *Controller) Back() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.popLocked()
}

// GoBack pops history and navigates to the popped path without pushing
// the current path. No-op when history is empty.
func (c *Controller) GoBack(ctx context.Context) error {
	c.mu.Lock()
	target, ok := c.popLocked()
	c.mu.Unlock()
	if !ok {
		return nil
	}

	gen := c.begin(target, false)
	return c.load(ctx, gen, target, false)
}

func (c *Controller) popLocked() (string, bool) {
	if len(c.history) == 0 {
		return "", false
	}
	target := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	return target, true
}

// Initialize performs the controller's first navigation: the persisted
// default location when one exists, the home directory otherwise.
// Runs at most once per controller lifetime.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	start, err := c.startPath(ctx)
	if err != nil {
		return err
	}
	return c.Navigate(ctx, start)
}

func (c *Controller) startPath(ctx context.Context) (string, error) {
	if c.defaults != nil {
		path, err := c.defaults.DefaultLocation(ctx)
		if err == nil && path != "" {
			return path, nil
		}
	}
	if c.home == nil {
		return "", domain.ErrNotFound
	}
	return c.home()
}

// MarkDefault persists path as the default location
func (c *Controller) MarkDefault(ctx context.Context, path string) error {
	if c.defaults == nil {
		return nil
	}
	return c.defaults.SetDefaultLocation(ctx, path)
}

// IsDefault reports whether the current path is the persisted default
func (c *Controller) IsDefault(ctx context.Context) bool {
	if c.defaults == nil {
		return false
	}
	def, err := c.defaults.DefaultLocation(ctx)
	if err != nil || def == "" {
		return false
	}
	return def == c.Path()
}

// Reset clears path, history, listing, and error state, and invalidates
// any in-flight load. Used when the owning session ends (device
// deselect).
func (c *Controller) Reset() {
	c.mu.Lock()
	c.seq++
	c.state = StateIdle
	c.path = ""
	c.history = nil
	c.listing = nil
	c.lastErr = nil
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

// begin commits the navigation intent synchronously: history push (when
// requested), the new current path, the loading state, and a fresh
// request generation that later identifies stale responses
func (c *Controller) begin(path string, push bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if push && c.path != "" {
		c.history = append(c.history, c.path)
	}
	c.path = path
	c.state = StateLoading
	c.seq++
	return c.seq
}

// load fetches and orders the listing for path, then commits it if the
// request generation still matches
func (c *Controller) load(ctx context.Context, gen uint64, path string, recordRecent bool) error {
	entries, err := c.store.List(ctx, path)
	var ordered domain.Listing
	if err == nil {
		c.mu.Lock()
		sort := c.sort
		c.mu.Unlock()
		ordered, err = listing.Order(ctx, entries, sort, path, c.meta)
	}

	c.mu.Lock()
	if gen != c.seq {
		c.mu.Unlock()
		c.log.Debug("discarding stale listing response", "path", path)
		return domain.ErrSuperseded
	}

	if err != nil {
		// Path and history survive a failure so the user can retry
		c.state = StateFailed
		c.lastErr = err
		c.listing = nil
	} else {
		c.state = StateReady
		c.lastErr = nil
		c.listing = ordered
	}
	listeners := c.listeners
	current := c.listing
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(current)
	}

	if err != nil {
		c.log.Warn("listing load failed", "path", path, "error", err)
		return err
	}

	if recordRecent && c.defaults != nil {
		if rerr := c.defaults.AddRecentLocation(ctx, path); rerr != nil {
			c.log.Warn("failed to record recent location", "path", path, "error", rerr)
		}
	}
	return nil
}
