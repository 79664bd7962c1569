// Package service wires the stores, controllers, selection managers,
// drag engines, device session, and transfer orchestrator into one
// facade consumed by the CLI.
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Kadajett/musicManager/internal/backend/devicefs"
	"github.com/Kadajett/musicManager/internal/backend/localfs"
	"github.com/Kadajett/musicManager/internal/browse"
	"github.com/Kadajett/musicManager/internal/config"
	"github.com/Kadajett/musicManager/internal/core/dragdrop"
	"github.com/Kadajett/musicManager/internal/core/selection"
	"github.com/Kadajett/musicManager/internal/devicesession"
	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/events"
	"github.com/Kadajett/musicManager/internal/logger"
	"github.com/Kadajett/musicManager/internal/state"
	"github.com/Kadajett/musicManager/internal/transfer"
)

// Manager owns every subsystem of the browser core. The local and
// device sides are fully independent: separate stores, controllers,
// selections, and drag engines; only the transfer path crosses them.
type Manager struct {
	cfg   *config.Config
	state *state.Manager
	log   logger.Logger

	local  *localfs.Store
	device *devicefs.Store

	localCtrl *browse.Controller
	session   *devicesession.Session

	localSel  *selection.Manager
	deviceSel *selection.Manager

	localDrag  *dragdrop.Engine
	deviceDrag *dragdrop.Engine
	crossDrag  *dragdrop.Engine

	deviceFeed   *events.Feed[[]domain.Device]
	progressFeed *events.Feed[domain.TransferJob]
	watcher      *devicefs.Watcher

	engine       *transfer.Engine
	orchestrator *transfer.Orchestrator
}

// NewManager builds the full subsystem graph from cfg
func NewManager(cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	stateMgr, err := state.NewManager(config.ExpandPath(cfg.DataDir), cfg.MaxRecentLocations)
	if err != nil {
		return nil, fmt.Errorf("failed to create state manager: %w", err)
	}

	m := &Manager{
		cfg:          cfg,
		state:        stateMgr,
		log:          logger.With("component", "service"),
		local:        localfs.New(cfg.AudioExtensions),
		device:       devicefs.New(cfg.AudioExtensions),
		localSel:     selection.NewManager(),
		deviceSel:    selection.NewManager(),
		deviceFeed:   events.NewFeed[[]domain.Device](),
		progressFeed: events.NewFeed[domain.TransferJob](),
	}

	m.localCtrl = browse.New("local", m.local, m.local, stateMgr, m.local.HomeDir)
	deviceCtrl := browse.New("device", m.device, nil, nil, nil)
	m.session = devicesession.New(deviceCtrl)

	// Selection follows its controller's listing; every listing change
	// clears the selection
	m.localCtrl.OnListingChange(m.localSel.SetListing)
	deviceCtrl.OnListingChange(m.deviceSel.SetListing)

	// In-store drags mutate the filesystem in place and refresh their
	// own listing on success
	m.localDrag = dragdrop.New(m.local, m.localCtrl.Lookup, m.localCtrl.Refresh)
	m.deviceDrag = dragdrop.New(m.device, deviceCtrl.Lookup, deviceCtrl.Refresh)

	// The transfer engine reports through the orchestrator so every
	// progress record lands on the feed last-write-wins
	m.engine = transfer.NewEngine(config.ExpandPath(cfg.TransferTempDir), func(job domain.TransferJob) {
		m.orchestrator.Report(job)
	})
	m.orchestrator = transfer.NewOrchestrator(m.engine, m.progressFeed, stateMgr, func(ctx context.Context) {
		// Destination state changes only after job completion
		if err := m.session.Refresh(ctx); err != nil {
			m.log.Warn("failed to refresh device listing after transfer", "error", err)
		}
	})

	// Cross-store drags dispatch transfers instead of in-place moves.
	// The orchestrator refreshes the destination itself, so the engine
	// gets no refresh hook.
	m.crossDrag = dragdrop.New(transferOps{m.orchestrator}, m.crossLookup, nil)

	m.watcher = devicefs.NewWatcher(m.device, m.deviceFeed, cfg.DevicePollInterval)

	return m, nil
}

// crossLookup resolves drag endpoints across both listings: sources
// come from the local side, targets from the device side
func (m *Manager) crossLookup(path string) (domain.Entry, bool) {
	if e, ok := m.localCtrl.Lookup(path); ok {
		return e, true
	}
	return m.session.Controller().Lookup(path)
}

// Local returns the local navigation controller
func (m *Manager) Local() *browse.Controller {
	return m.localCtrl
}

// Session returns the device session manager
func (m *Manager) Session() *devicesession.Session {
	return m.session
}

// LocalSelection returns the local selection manager
func (m *Manager) LocalSelection() *selection.Manager {
	return m.localSel
}

// DeviceSelection returns the device selection manager
func (m *Manager) DeviceSelection() *selection.Manager {
	return m.deviceSel
}

// LocalDrag returns the local in-store drag engine
func (m *Manager) LocalDrag() *dragdrop.Engine {
	return m.localDrag
}

// DeviceDrag returns the device in-store drag engine
func (m *Manager) DeviceDrag() *dragdrop.Engine {
	return m.deviceDrag
}

// CrossDrag returns the cross-store (local to device) drag engine
func (m *Manager) CrossDrag() *dragdrop.Engine {
	return m.crossDrag
}

// LocalStore returns the local filesystem store
func (m *Manager) LocalStore() *localfs.Store {
	return m.local
}

// Rename renames a local entry in place and refreshes the listing
// File extensions are preserved by the store
func (m *Manager) Rename(ctx context.Context, path, newName string) error {
	if err := m.local.Rename(ctx, path, newName); err != nil {
		return err
	}
	return m.localCtrl.Refresh(ctx)
}

// Combine moves the given local entries into a new folder under
// parentPath and refreshes the listing
func (m *Manager) Combine(ctx context.Context, paths []string, newFolderName, parentPath string) error {
	if err := m.local.CombineMany(ctx, paths, newFolderName, parentPath); err != nil {
		return err
	}
	return m.localCtrl.Refresh(ctx)
}

// State returns the persistence manager
func (m *Manager) State() *state.Manager {
	return m.state
}

// Devices lists the currently mounted devices
func (m *Manager) Devices(ctx context.Context) ([]domain.Device, error) {
	return m.device.Devices(ctx)
}

// ReadDeviceDir lists a directory under a device root
func (m *Manager) ReadDeviceDir(ctx context.Context, deviceRoot, relative string) ([]domain.Entry, error) {
	return m.device.ReadDeviceDir(ctx, deviceRoot, relative)
}

// DeviceFeed returns the device-list broadcast feed
func (m *Manager) DeviceFeed() *events.Feed[[]domain.Device] {
	return m.deviceFeed
}

// ProgressFeed returns the transfer-progress broadcast feed
func (m *Manager) ProgressFeed() *events.Feed[domain.TransferJob] {
	return m.progressFeed
}

// Transfer runs one archived, verified transfer into the device
func (m *Manager) Transfer(ctx context.Context, sourcePath, targetPath string) (domain.TransferResult, error) {
	return m.orchestrator.Transfer(ctx, sourcePath, targetPath)
}

// IsTransferring reports whether a transfer is in flight
func (m *Manager) IsTransferring() bool {
	return m.orchestrator.IsTransferring()
}

// TransferJob returns the latest transfer progress record
func (m *Manager) TransferJob() domain.TransferJob {
	return m.orchestrator.Job()
}

// WatchDevices runs the device watcher until ctx is cancelled,
// feeding every snapshot to the session for desync detection
func (m *Manager) WatchDevices(ctx context.Context) error {
	ch, cancel := m.deviceFeed.Subscribe()
	defer cancel()

	go func() {
		for devices := range ch {
			m.session.HandleDevices(ctx, devices)
		}
	}()

	return m.watcher.Run(ctx)
}

// Close releases all resources
func (m *Manager) Close() error {
	if m.state != nil {
		return m.state.Close()
	}
	return nil
}

// transferOps adapts the orchestrator to the drag engine's mutation
// surface: a cross-store "move" is an archived, verified transfer, and
// a cross-store "combine" transfers the source into the target's parent
type transferOps struct {
	orchestrator *transfer.Orchestrator
}

func (t transferOps) Move(ctx context.Context, sourcePath, targetDir string) error {
	_, err := t.orchestrator.Transfer(ctx, sourcePath, targetDir)
	return err
}

func (t transferOps) Combine(ctx context.Context, sourcePath, targetPath, newFolderName, parentPath string) error {
	if parentPath == "" {
		parentPath = filepath.Dir(targetPath)
	}
	_, err := t.orchestrator.Transfer(ctx, sourcePath, parentPath)
	return err
}
