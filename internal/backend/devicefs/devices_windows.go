//go:build windows

package devicefs

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/Kadajett/musicManager/internal/domain"
)

// listDevices walks the logical drive bitmask and classifies each drive
func listDevices(ctx context.Context) ([]domain.Device, error) {
	bitmask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}

	var devices []domain.Device
	for i := 0; i < 26; i++ {
		if bitmask&(1<<i) == 0 {
			continue
		}

		letter := rune('A' + i)
		root := fmt.Sprintf("%c:\\", letter)

		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}

		driveType := windows.GetDriveType(rootPtr)
		if driveType <= windows.DRIVE_NO_ROOT_DIR {
			continue
		}

		devices = append(devices, domain.Device{
			Name:      fmt.Sprintf("Drive (%c:)", letter),
			Path:      root,
			Type:      classifyDriveType(driveType),
			Removable: driveType == windows.DRIVE_REMOVABLE,
		})
	}

	return devices, nil
}

func classifyDriveType(driveType uint32) domain.DeviceType {
	switch driveType {
	case windows.DRIVE_REMOVABLE:
		return domain.DeviceRemovable
	case windows.DRIVE_FIXED:
		return domain.DeviceFixed
	case windows.DRIVE_REMOTE:
		return domain.DeviceNetwork
	case windows.DRIVE_CDROM:
		return domain.DeviceCDROM
	case windows.DRIVE_RAMDISK:
		return domain.DeviceRAMDisk
	default:
		return domain.DeviceUnknown
	}
}

// watchPaths returns nothing on windows; drive changes are picked up by
// the interval rescan
func watchPaths() []string {
	return nil
}
