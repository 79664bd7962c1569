package devicesession

import (
	"context"
	"sync"
	"testing"

	"github.com/Kadajett/musicManager/internal/browse"
	"github.com/Kadajett/musicManager/internal/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]domain.Entry
}

func (s *fakeStore) List(ctx context.Context, path string) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[path], nil
}

func newSession(paths ...string) *Session {
	store := &fakeStore{entries: make(map[string][]domain.Entry)}
	for _, p := range paths {
		store.entries[p] = nil
	}
	return New(browse.New("device", store, nil, nil, nil))
}

func player(path string) *domain.Device {
	return &domain.Device{Name: "PLAYER", Path: path, Type: domain.DeviceRemovable, Removable: true}
}

func TestSelectDevice_NavigatesToRoot(t *testing.T) {
	s := newSession("/vol1")

	if err := s.SelectDevice(context.Background(), player("/vol1")); err != nil {
		t.Fatalf("SelectDevice error = %v", err)
	}

	if s.Device() == nil || s.Device().Path != "/vol1" {
		t.Errorf("Device() = %+v, want /vol1", s.Device())
	}
	if s.Controller().Path() != "/vol1" {
		t.Errorf("controller path = %q, want /vol1", s.Controller().Path())
	}
	if s.RelativePath() != "" {
		t.Errorf("RelativePath() = %q, want empty at root", s.RelativePath())
	}
}

func TestRelativePath(t *testing.T) {
	s := newSession("/vol1", "/vol1/Music", "/vol1/Music/Rock")
	ctx := context.Background()
	s.SelectDevice(ctx, player("/vol1"))

	tests := []struct {
		path string
		want string
	}{
		{"/vol1/Music/Rock", "Music/Rock"},
		{"/vol1/Music", "Music"},
		{"/vol1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if err := s.Navigate(ctx, tt.path); err != nil {
				t.Fatalf("Navigate error = %v", err)
			}
			if got := s.RelativePath(); got != tt.want {
				t.Errorf("RelativePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectDevice_SwitchClearsPreviousHistory(t *testing.T) {
	s := newSession("/vol1", "/vol1/Music", "/vol2")
	ctx := context.Background()

	s.SelectDevice(ctx, player("/vol1"))
	s.Navigate(ctx, "/vol1/Music")
	s.SelectDevice(ctx, &domain.Device{Name: "OTHER", Path: "/vol2"})

	if len(s.Controller().History()) != 0 {
		t.Errorf("history = %v, want empty after device switch", s.Controller().History())
	}
	if s.Controller().Path() != "/vol2" {
		t.Errorf("path = %q, want /vol2", s.Controller().Path())
	}
}

func TestSelectDevice_NilIsHardReset(t *testing.T) {
	s := newSession("/vol1", "/vol1/Music")
	ctx := context.Background()

	s.SelectDevice(ctx, player("/vol1"))
	s.Navigate(ctx, "/vol1/Music")

	if err := s.SelectDevice(ctx, nil); err != nil {
		t.Fatalf("SelectDevice(nil) error = %v", err)
	}

	if s.Device() != nil {
		t.Error("device should be cleared")
	}
	if s.Controller().Path() != "" {
		t.Errorf("path = %q, want empty", s.Controller().Path())
	}
	if s.RelativePath() != "" {
		t.Errorf("RelativePath() = %q, want empty", s.RelativePath())
	}
	if len(s.Controller().History()) != 0 {
		t.Errorf("history = %v, want empty", s.Controller().History())
	}
}

func TestNavigate_NoDeviceIsNoop(t *testing.T) {
	s := newSession("/vol1")

	if err := s.Navigate(context.Background(), "/vol1"); err != nil {
		t.Fatalf("Navigate error = %v", err)
	}
	if s.Controller().Path() != "" {
		t.Errorf("path = %q, navigation without a device should not commit", s.Controller().Path())
	}
	if err := s.GoBack(context.Background()); err != nil {
		t.Fatalf("GoBack error = %v", err)
	}
}

func TestGoBack_RecomputesRelativePath(t *testing.T) {
	s := newSession("/vol1", "/vol1/Music", "/vol1/Music/Rock")
	ctx := context.Background()

	s.SelectDevice(ctx, player("/vol1"))
	s.Navigate(ctx, "/vol1/Music")
	s.Navigate(ctx, "/vol1/Music/Rock")

	if err := s.GoBack(ctx); err != nil {
		t.Fatalf("GoBack error = %v", err)
	}
	if got := s.RelativePath(); got != "Music" {
		t.Errorf("RelativePath() = %q, want Music", got)
	}
}

func TestHandleDevices_DeselectsOnDisappearance(t *testing.T) {
	s := newSession("/vol1", "/vol1/Music")
	ctx := context.Background()

	s.SelectDevice(ctx, player("/vol1"))
	s.Navigate(ctx, "/vol1/Music")

	// The device vanished from the next snapshot
	s.HandleDevices(ctx, []domain.Device{{Name: "OTHER", Path: "/vol2"}})

	if s.Device() != nil {
		t.Error("session should deselect a disappeared device")
	}
	if s.Controller().Path() != "" {
		t.Errorf("path = %q, want hard reset", s.Controller().Path())
	}
}

func TestHandleDevices_KeepsPresentDevice(t *testing.T) {
	s := newSession("/vol1")
	ctx := context.Background()

	s.SelectDevice(ctx, player("/vol1"))
	s.HandleDevices(ctx, []domain.Device{
		{Name: "PLAYER", Path: "/vol1"},
		{Name: "OTHER", Path: "/vol2"},
	})

	if s.Device() == nil {
		t.Error("device still present in the snapshot must stay selected")
	}
}

func TestHandleDevices_NoSelectionIsNoop(t *testing.T) {
	s := newSession("/vol1")
	s.HandleDevices(context.Background(), nil)
	if s.Device() != nil {
		t.Error("no selection expected")
	}
}

func TestRelativePathHelper(t *testing.T) {
	tests := []struct {
		root string
		path string
		want string
	}{
		{"/vol1", "/vol1/Music/Rock", "Music/Rock"},
		{"/vol1", "/vol1", ""},
		{"/vol1", "", ""},
		{"E:\\", "E:\\Music", "Music"},
	}

	for _, tt := range tests {
		if got := relativePath(tt.root, tt.path); got != tt.want {
			t.Errorf("relativePath(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
		}
	}
}
