//go:build darwin

package devicefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Kadajett/musicManager/internal/domain"
)

// listDevices enumerates mounted volumes under /Volumes
// The boot volume appears here as a symlink and is reported as fixed;
// everything else is treated as removable media
func listDevices(ctx context.Context) ([]domain.Device, error) {
	entries, err := os.ReadDir("/Volumes")
	if err != nil {
		return nil, fmt.Errorf("failed to read /Volumes: %w", err)
	}

	var devices []domain.Device
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mountPoint := filepath.Join("/Volumes", e.Name())

		// The boot volume is a symlink to /
		removable := true
		if target, err := filepath.EvalSymlinks(mountPoint); err == nil && target == "/" {
			removable = false
		}

		deviceType := domain.DeviceRemovable
		if !removable {
			deviceType = domain.DeviceFixed
		}

		devices = append(devices, domain.Device{
			Name:      e.Name(),
			Path:      mountPoint,
			Type:      deviceType,
			Removable: removable,
		})
	}

	return devices, nil
}

// watchPaths returns the volume directory; mounts and unmounts show up
// as directory events there
func watchPaths() []string {
	return []string{"/Volumes"}
}
