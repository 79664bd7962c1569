//go:build linux

package devicefs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/Kadajett/musicManager/internal/domain"
)

// listDevices reads the kernel mount table
func listDevices(ctx context.Context) ([]domain.Device, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, fmt.Errorf("failed to read mounts: %w", err)
	}
	defer f.Close()

	return parseMountTable(f, sysfsRemovable), nil
}

// parseMountTable converts /proc/mounts lines into devices
// System mounts under /dev, /sys, and /proc are filtered out; removable
// is resolved through the supplied probe so tests can stub sysfs
func parseMountTable(r io.Reader, removableProbe func(devicePath string) bool) []domain.Device {
	var devices []domain.Device

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}

		devicePath := parts[0]
		mountPoint := parts[1]

		if strings.HasPrefix(mountPoint, "/dev") ||
			strings.HasPrefix(mountPoint, "/sys") ||
			strings.HasPrefix(mountPoint, "/proc") {
			continue
		}

		removable := strings.Contains(devicePath, "usb")
		if !removable && removableProbe != nil {
			removable = removableProbe(devicePath)
		}

		name := path.Base(mountPoint)
		if name == "/" || name == "." {
			name = mountPoint
		}

		deviceType := domain.DeviceFixed
		if removable {
			deviceType = domain.DeviceRemovable
		}

		devices = append(devices, domain.Device{
			Name:      name,
			Path:      mountPoint,
			Type:      deviceType,
			Removable: removable,
		})
	}

	return devices
}

// sysfsRemovable checks the block device's removable flag in sysfs
func sysfsRemovable(devicePath string) bool {
	block := path.Base(devicePath)
	if block == "" || block == "/" {
		return false
	}

	data, err := os.ReadFile("/sys/block/" + block + "/removable")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// watchPaths returns mount directories worth watching with fsnotify
// The kernel mount table itself is not watchable, so the poller is the
// primary change source on linux
func watchPaths() []string {
	var paths []string
	for _, p := range []string{"/media", "/run/media", "/mnt"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			paths = append(paths, p)
		}
	}
	return paths
}
