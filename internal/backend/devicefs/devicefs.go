// Package devicefs implements the backend interfaces for mounted
// external storage devices: enumeration of connected devices, directory
// reads against a device root, and a watcher that publishes fresh device
// lists when the mount table changes.
package devicefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/logger"
)

// Store implements backend.Store for device filesystems
// Paths are absolute and live under a device mount point; the store
// itself is stateless, device selection is the session manager's job
type Store struct {
	audioExts map[string]bool
	log       logger.Logger
}

// New creates a device filesystem store
func New(exts []string) *Store {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[strings.ToLower(e)] = true
	}
	return &Store{
		audioExts: m,
		log:       logger.With("component", "devicefs"),
	}
}

func (s *Store) isAudio(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return s.audioExts[ext]
}

// List returns the entries directly under path on the device
// Directories first, then case-insensitive by name; entries whose
// metadata cannot be read are skipped
func (s *Store) List(ctx context.Context, path string) ([]domain.Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, mapError(err)
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, mapError(err)
	}

	entries := make([]domain.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		info, err := de.Info()
		if err != nil {
			s.log.Debug("skipping unreadable device entry", "name", de.Name(), "error", err)
			continue
		}

		name := de.Name()
		entries = append(entries, domain.Entry{
			Name:    name,
			Path:    filepath.Join(path, name),
			IsDir:   info.IsDir(),
			IsAudio: !info.IsDir() && s.isAudio(name),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	return entries, nil
}

// ReadDeviceDir lists the directory at relative under the device root
// An empty relative path lists the root itself
func (s *Store) ReadDeviceDir(ctx context.Context, deviceRoot, relative string) ([]domain.Entry, error) {
	full := deviceRoot
	if relative != "" {
		full = filepath.Join(deviceRoot, relative)
	}
	return s.List(ctx, full)
}

// Devices returns the currently connected devices for this platform
func (s *Store) Devices(ctx context.Context) ([]domain.Device, error) {
	return listDevices(ctx)
}

// Move relocates source into the target directory on the same device
// Renames never cross mount points; cross-store moves go through the
// transfer pipeline instead
func (s *Store) Move(ctx context.Context, sourcePath, targetDir string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return mapError(err)
	}

	info, err := os.Stat(targetDir)
	if err != nil {
		return mapError(err)
	}
	if !info.IsDir() {
		return domain.ErrNotDirectory
	}

	dest := filepath.Join(targetDir, filepath.Base(sourcePath))
	if err := os.Rename(sourcePath, dest); err != nil {
		return fmt.Errorf("failed to move %s: %w", filepath.Base(sourcePath), mapError(err))
	}

	s.log.Debug("moved device entry", "source", sourcePath, "target", targetDir)
	return nil
}

// Combine creates newFolderName under parentPath and moves both source
// and target into it
func (s *Store) Combine(ctx context.Context, sourcePath, targetPath, newFolderName, parentPath string) error {
	if newFolderName == "" {
		return fmt.Errorf("%w: folder name cannot be empty", domain.ErrConfigInvalid)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return mapError(err)
	}
	if _, err := os.Stat(targetPath); err != nil {
		return mapError(err)
	}

	folder := filepath.Join(parentPath, newFolderName)
	if err := os.Mkdir(folder, 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", mapError(err))
	}

	if err := os.Rename(sourcePath, filepath.Join(folder, filepath.Base(sourcePath))); err != nil {
		return fmt.Errorf("failed to move source file: %w", mapError(err))
	}
	if err := os.Rename(targetPath, filepath.Join(folder, filepath.Base(targetPath))); err != nil {
		return fmt.Errorf("failed to move target file: %w", mapError(err))
	}

	s.log.Debug("combined device entries", "folder", folder)
	return nil
}

// mapError converts OS errors to domain errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return domain.ErrNotFound
	}
	if os.IsPermission(err) {
		return domain.ErrPermissionDenied
	}
	return err
}
