// Package lock guards a transfer destination with a file-based lock so
// two processes never write the same device directory concurrently.
// 鎖檔直接放在目的地目錄內,裝置拔除時鎖也隨之消失。
// The lock file lives inside the destination directory itself, so it
// disappears with the device when the media is removed.
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// LockFileName is the name of the lock file
	LockFileName = ".musicman.lock"
	// DefaultStaleTimeout is the default duration after which a lock is considered stale
	DefaultStaleTimeout = 30 * time.Minute
)

// LockInfo contains metadata about the lock holder
type LockInfo struct {
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname"`
	StartTime  time.Time `json:"start_time"`
	SourcePath string    `json:"source_path,omitempty"`
}

// TransferLock is a file-based lock preventing concurrent transfers
// into the same destination directory
type TransferLock struct {
	lockPath     string
	staleTimeout time.Duration
	info         *LockInfo
}

// NewTransferLock creates a lock for the given destination directory
func NewTransferLock(destDir string) (*TransferLock, error) {
	if destDir == "" {
		return nil, fmt.Errorf("destination directory cannot be empty")
	}

	// The destination must already exist; a missing directory here means
	// the device is gone and the transfer should fail before locking
	fi, err := os.Stat(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat destination: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("destination %s is not a directory", destDir)
	}

	return &TransferLock{
		lockPath:     filepath.Join(destDir, LockFileName),
		staleTimeout: DefaultStaleTimeout,
	}, nil
}

// SetStaleTimeout sets the duration after which a lock is considered stale
func (l *TransferLock) SetStaleTimeout(d time.Duration) {
	l.staleTimeout = d
}

// Acquire attempts to acquire the lock for a transfer from sourcePath
// Returns error if lock is already held by another process
func (l *TransferLock) Acquire(sourcePath string) error {
	// Check if this instance already holds the lock
	if l.info != nil {
		existingInfo, err := l.readLockInfo()
		if err == nil && l.isHeldByThisInstance(existingInfo) {
			existingInfo.SourcePath = sourcePath
			if err := l.writeLockInfo(existingInfo); err != nil {
				return err
			}
			// Keep l.info in step with the file so Release does not
			// mistake the rewrite for a stolen lock
			l.info.SourcePath = sourcePath
			return nil
		}
	}

	// Check for existing lock
	existingInfo, err := l.readLockInfo()
	if err == nil {
		// Lock file exists, check if it's stale
		if l.isStale(existingInfo) {
			// Remove stale lock
			if err := os.Remove(l.lockPath); err != nil {
				return fmt.Errorf("failed to remove stale lock: %w", err)
			}
		} else {
			// Lock is held by another process/instance
			return &LockError{
				Holder: existingInfo,
				Reason: "destination is locked by another transfer",
			}
		}
	}

	// Create lock info
	hostname, _ := os.Hostname()
	info := &LockInfo{
		PID:        os.Getpid(),
		Hostname:   hostname,
		StartTime:  time.Now(),
		SourcePath: sourcePath,
	}

	// Try to create lock file atomically using O_CREATE|O_EXCL
	file, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			// Another process acquired the lock between our check and create
			existingInfo, readErr := l.readLockInfo()
			if readErr != nil {
				return fmt.Errorf("lock acquisition race condition: %w", err)
			}
			return &LockError{
				Holder: existingInfo,
				Reason: "lock acquired by another process during acquisition",
			}
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer file.Close()

	// Write lock info
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(info); err != nil {
		os.Remove(l.lockPath)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	l.info = info
	return nil
}

// Release releases the lock
func (l *TransferLock) Release() error {
	if l.info == nil {
		return nil // Not holding lock
	}

	// Verify we still own the lock before removing
	existingInfo, err := l.readLockInfo()
	if err != nil {
		l.info = nil
		return nil // Lock file doesn't exist, consider it released
	}

	if !l.isHeldByThisInstance(existingInfo) {
		l.info = nil
		return fmt.Errorf("lock was stolen by another process")
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	l.info = nil
	return nil
}

// IsLocked checks if a lock is currently held
func (l *TransferLock) IsLocked() bool {
	info, err := l.readLockInfo()
	if err != nil {
		return false
	}
	return !l.isStale(info)
}

// GetHolder returns information about the current lock holder
func (l *TransferLock) GetHolder() (*LockInfo, error) {
	info, err := l.readLockInfo()
	if err != nil {
		return nil, err
	}
	if l.isStale(info) {
		return nil, fmt.Errorf("lock is stale")
	}
	return info, nil
}

// ForceRelease forcibly removes the lock file
// Use with caution - only when certain the lock holder has crashed
func (l *TransferLock) ForceRelease() error {
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to force remove lock: %w", err)
	}
	l.info = nil
	return nil
}

// readLockInfo reads the lock information from file
func (l *TransferLock) readLockInfo() (*LockInfo, error) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid lock file format: %w", err)
	}

	return &info, nil
}

// writeLockInfo writes lock information to file
func (l *TransferLock) writeLockInfo(info *LockInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.lockPath, data, 0644)
}

// isStale checks if a lock is stale (process dead)
// Note: We only consider a lock stale if the process is dead, not based on timeout alone.
// Timeout is only used as a fallback for cross-host scenarios where we can't check process.
func (l *TransferLock) isStale(info *LockInfo) bool {
	hostname, _ := os.Hostname()

	// Same host: check if process is still running
	if info.Hostname == hostname {
		if !processExists(info.PID) {
			return true
		}
		// Process is alive, lock is NOT stale regardless of timeout
		return false
	}

	// Different host (e.g. the device moved between machines): use
	// timeout as fallback since we can't check the process
	if time.Since(info.StartTime) > l.staleTimeout {
		return true
	}

	return false
}

// isHeldByCurrentProcess checks if the lock is held by the current process
func (l *TransferLock) isHeldByCurrentProcess(info *LockInfo) bool {
	hostname, _ := os.Hostname()
	return info.PID == os.Getpid() && info.Hostname == hostname
}

// isHeldByThisInstance checks if the lock is held by this specific TransferLock instance
func (l *TransferLock) isHeldByThisInstance(info *LockInfo) bool {
	if l.info == nil {
		return false
	}
	return l.isHeldByCurrentProcess(info) &&
		l.info.StartTime.Equal(info.StartTime) &&
		l.info.SourcePath == info.SourcePath
}

// LockError represents an error when lock cannot be acquired
type LockError struct {
	Holder *LockInfo
	Reason string
}

func (e *LockError) Error() string {
	if e.Holder != nil {
		return fmt.Sprintf("cannot acquire lock: %s (held by PID %d on %s since %s, transferring: %s)",
			e.Reason,
			e.Holder.PID,
			e.Holder.Hostname,
			e.Holder.StartTime.Format(time.RFC3339),
			e.Holder.SourcePath,
		)
	}
	return fmt.Sprintf("cannot acquire lock: %s", e.Reason)
}

// IsLockError checks if an error is a LockError
func IsLockError(err error) bool {
	_, ok := err.(*LockError)
	return ok
}
