package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kadajett/musicManager/internal/daemon"
	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/service"
)

// newDevicesCmd creates the devices command
func newDevicesCmd() *cobra.Command {
	var watch bool
	var deviceLs string

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List connected devices",
		Long: `List the mounted devices a transfer can target.
With --watch, keep running and print the device list every time it
changes until interrupted. With --ls, list a directory on a device
given as device-root[:relative-path].`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if deviceLs != "" {
				return runDeviceLs(cmd, mgr, deviceLs)
			}
			if watch {
				return runDeviceWatch(cmd, mgr)
			}

			devices, err := mgr.Devices(cmd.Context())
			if err != nil {
				return err
			}
			printDevices(devices)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch for device changes")
	cmd.Flags().StringVar(&deviceLs, "ls", "", "list a device directory: root[:relative]")
	return cmd
}

func printDevices(devices []domain.Device) {
	if len(devices) == 0 {
		fmt.Println("no devices connected")
		return
	}
	for _, d := range devices {
		marker := " "
		if d.Removable {
			marker = "*"
		}
		fmt.Printf("%s %-20s %-10s %s\n", marker, d.Name, d.Type, d.Path)
	}
}

// runDeviceWatch runs the watcher under a PID file until interrupted
func runDeviceWatch(cmd *cobra.Command, mgr *service.Manager) error {
	pidPath, err := daemon.DefaultPIDPath()
	if err != nil {
		return err
	}
	pidFile := daemon.NewPIDFile(pidPath)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer pidFile.Remove()

	ch, cancel := mgr.DeviceFeed().Subscribe()
	defer cancel()

	go func() {
		for devices := range ch {
			fmt.Println("---")
			printDevices(devices)
		}
	}()

	err = mgr.WatchDevices(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runDeviceLs lists one directory on a device
func runDeviceLs(cmd *cobra.Command, mgr *service.Manager, spec string) error {
	root, relative := splitDeviceSpec(spec)
	entries, err := mgr.ReadDeviceDir(cmd.Context(), root, relative)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir {
			fmt.Printf("%s/\n", e.Name)
		} else {
			fmt.Println(e.Name)
		}
	}
	return nil
}

// splitDeviceSpec splits "root:relative" into its parts; the relative
// part is optional. Windows drive roots like "E:\" keep their colon.
func splitDeviceSpec(spec string) (root, relative string) {
	idx := strings.LastIndex(spec, ":")
	// A colon at position 1 is a drive letter, not a separator
	if idx <= 1 {
		return spec, ""
	}
	return spec[:idx], spec[idx+1:]
}
