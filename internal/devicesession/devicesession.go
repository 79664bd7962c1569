// Package devicesession wraps the device navigation controller with
// device selection and relative-path bookkeeping.
// 取消選取裝置會完整重設路徑、歷史與列表,而不是一次導覽。
// Deselecting a device hard-resets path, history, and listing; it is
// not a navigation.
package devicesession

import (
	"context"
	"strings"
	"sync"

	"github.com/Kadajett/musicManager/internal/browse"
	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/logger"
)

// Session binds a device identity to its navigation controller.
// The relative path is always the controller's current path with the
// device root prefix and any leading separator stripped; it is empty
// exactly at the device root.
type Session struct {
	ctrl *browse.Controller
	log  logger.Logger

	mu     sync.Mutex
	device *domain.Device
}

// New creates a session over the device store's controller
func New(ctrl *browse.Controller) *Session {
	return &Session{
		ctrl: ctrl,
		log:  logger.With("component", "device-session"),
	}
}

// Controller exposes the wrapped navigation controller
func (s *Session) Controller() *browse.Controller {
	return s.ctrl
}

// Device returns the selected device, nil when none
func (s *Session) Device() *domain.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// RelativePath returns the current path relative to the device root,
// empty at the root or when no device is selected
func (s *Session) RelativePath() string {
	s.mu.Lock()
	device := s.device
	s.mu.Unlock()
	if device == nil {
		return ""
	}
	return relativePath(device.Path, s.ctrl.Path())
}

// SelectDevice makes device the active device and navigates to its
// root. Passing nil deselects: device identity, path, relative path,
// history, and listing are all cleared without any navigation.
func (s *Session) SelectDevice(ctx context.Context, device *domain.Device) error {
	if device == nil {
		s.mu.Lock()
		s.device = nil
		s.mu.Unlock()
		s.ctrl.Reset()
		s.log.Info("device deselected")
		return nil
	}

	s.mu.Lock()
	s.device = device
	s.mu.Unlock()

	// A fresh session starts with no history from the previous device
	s.ctrl.Reset()
	s.log.Info("device selected", "name", device.Name, "path", device.Path)
	return s.ctrl.Navigate(ctx, device.Path)
}

// Navigate moves within the selected device; no-op when none is
// selected
func (s *Session) Navigate(ctx context.Context, path string) error {
	if s.Device() == nil {
		return nil
	}
	return s.ctrl.Navigate(ctx, path)
}

// GoBack pops device history; no-op when no device is selected
func (s *Session) GoBack(ctx context.Context) error {
	if s.Device() == nil {
		return nil
	}
	return s.ctrl.GoBack(ctx)
}

// Refresh reloads the current device directory
func (s *Session) Refresh(ctx context.Context) error {
	if s.Device() == nil {
		return nil
	}
	return s.ctrl.Refresh(ctx)
}

// HandleDevices consumes a device-list snapshot. If the selected
// device is no longer present it has been unplugged; the session
// deselects and hard-resets.
func (s *Session) HandleDevices(ctx context.Context, devices []domain.Device) {
	s.mu.Lock()
	device := s.device
	s.mu.Unlock()
	if device == nil {
		return
	}

	for _, d := range devices {
		if d.Path == device.Path {
			return
		}
	}

	s.log.Warn("selected device disappeared", "name", device.Name, "path", device.Path)
	s.SelectDevice(ctx, nil)
}

// relativePath strips the root prefix and any leading separators
func relativePath(root, path string) string {
	if path == "" || path == root {
		return ""
	}
	rel := strings.TrimPrefix(path, root)
	return strings.TrimLeft(rel, "/\\")
}
