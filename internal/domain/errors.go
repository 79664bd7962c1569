package domain

import "errors"

// Backend errors - 儲存後端層錯誤
var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.New("path not found")

	// ErrAlreadyExists indicates the target path already exists
	ErrAlreadyExists = errors.New("path already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")

	// ErrUnknownFormat indicates file content did not match any known
	// audio signature
	ErrUnknownFormat = errors.New("could not detect file type")
)

// Navigation and transfer errors - 導航與傳輸層錯誤
var (
	// ErrSuperseded indicates a listing response was discarded because a
	// newer navigation request was issued (last-request-wins)
	ErrSuperseded = errors.New("navigation superseded by newer request")

	// ErrNoDevice indicates a device operation was attempted with no
	// device selected
	ErrNoDevice = errors.New("no device selected")

	// ErrTransferInFlight indicates another transfer is already running
	ErrTransferInFlight = errors.New("transfer already in progress")

	// ErrVerifyFailed indicates post-transfer verification found
	// missing files or checksum mismatches
	ErrVerifyFailed = errors.New("transfer verification failed")
)

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)
