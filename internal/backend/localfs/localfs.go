// Package localfs implements the backend interfaces against the local
// filesystem. Paths are absolute; the caller decides where browsing
// starts (home directory or a persisted default location).
package localfs

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

// Store implements backend.Store, backend.MetadataSource, and
// backend.Mutator for the local filesystem
type Store struct {
	audioExts map[string]bool
	log       logger.Logger
}

// New creates a local filesystem store
// exts lists the audio extensions to recognize, lower-case without dots
func New(exts []string) *Store {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[strings.ToLower(e)] = true
	}
	return &Store{
		audioExts: m,
		log:       logger.With("component", "localfs"),
	}
}

// isAudio reports whether name carries a recognized audio extension
func (s *Store) isAudio(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return s.audioExts[ext]
}

// List returns the entries directly under path
// Directories come first; each group is ordered case-insensitively by
// name. Unreadable entries are skipped.
func (s *Store) List(ctx context.Context, path string) ([]domain.Entry, error) {
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
			continue // Skip entries we can't read
		}

		name := de.Name()
		entries = append(entries, domain.Entry{
			Name:    name,
			Path:    filepath.Join(path, name),
			IsDir:   info.IsDir(),
			IsAudio: !info.IsDir() && s.isAudio(name),
		})
	}

	sortEntries(entries)
	return entries, nil
}

// sortEntries orders directories before files, then by lower-cased name
func sortEntries(entries []domain.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// Move relocates source into the target directory, keeping its name
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

	s.log.Debug("moved entry", "source", sourcePath, "target", targetDir)
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

	s.log.Debug("combined entries", "folder", folder)
	return nil
}

// CombineMany creates newFolderName under parentPath and moves every
// given path into it
func (s *Store) CombineMany(ctx context.Context, paths []string, newFolderName, parentPath string) error {
	if newFolderName == "" {
		return fmt.Errorf("%w: folder name cannot be empty", domain.ErrConfigInvalid)
	}

	folder := filepath.Join(parentPath, newFolderName)
	if err := os.Mkdir(folder, 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", mapError(err))
	}

	for _, p := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := os.Rename(p, filepath.Join(folder, filepath.Base(p))); err != nil {
			return fmt.Errorf("failed to move %s: %w", p, mapError(err))
		}
	}

	return nil
}

// Rename renames the entry at path to newName within the same parent
// For files, the original extension is preserved unless newName already
// ends with it
func (s *Store) Rename(ctx context.Context, path, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrConfigInvalid)
	}

	info, err := os.Stat(path)
	if err != nil {
		return mapError(err)
	}

	name := newName
	if !info.IsDir() {
		ext := filepath.Ext(path)
		if ext != "" && !strings.HasSuffix(newName, ext) {
			name = newName + ext
		}
	}

	dest := filepath.Join(filepath.Dir(path), name)
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to rename: %w", mapError(err))
	}

	return nil
}

// HomeDir returns the user's home directory
func (s *Store) HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return home, nil
}

// RecursiveAudioFiles walks path breadth-first and returns every audio
// file beneath it
func (s *Store) RecursiveAudioFiles(ctx context.Context, path string) ([]domain.Entry, error) {
	var audio []domain.Entry
	queue := []string{path}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		dir := queue[0]
		queue = queue[1:]

		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			continue // Unreadable subtrees are skipped
		}

		for _, de := range dirEntries {
			p := filepath.Join(dir, de.Name())
			if de.IsDir() {
				queue = append(queue, p)
				continue
			}
			if s.isAudio(de.Name()) {
				audio = append(audio, domain.Entry{
					Name:    de.Name(),
					Path:    p,
					IsDir:   false,
					IsAudio: true,
				})
			}
		}
	}

	return audio, nil
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
	if os.IsExist(err) {
		return domain.ErrAlreadyExists
	}

	return err
}
