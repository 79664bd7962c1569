package domain

// DeviceType classifies a mounted storage device
type DeviceType string

const (
	DeviceRemovable DeviceType = "removable"
	DeviceFixed     DeviceType = "fixed"
	DeviceNetwork   DeviceType = "network"
	DeviceCDROM     DeviceType = "cdrom"
	DeviceRAMDisk   DeviceType = "ramdisk"
	DeviceUnknown   DeviceType = "unknown"
)

// Device represents one mounted storage device exposed to the browser
type Device struct {
	// Name is the display name of the device
	Name string

	// Path is the mount point; it is the root of the device store
	Path string

	// Type classifies the device
	Type DeviceType

	// Removable indicates removable media
	Removable bool
}
