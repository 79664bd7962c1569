// Package backend defines the capability interfaces the navigation,
// listing, and drag-and-drop layers consume. The local filesystem and
// device stores implement them independently; the two stores never
// share state.
package backend

import (
	"context"

	"github.com/Kadajett/musicManager/internal/domain"
)

// Store is the minimal capability a navigation controller needs
// Implementations must return domain-level errors for consistent
// handling at the controller boundary
type Store interface {
	// List returns the entries directly under path, directories first,
	// each group ordered case-insensitively by name
	// Returns domain.ErrNotFound if path doesn't exist
	// Returns domain.ErrNotDirectory if path is a file
	List(ctx context.Context, path string) ([]domain.Entry, error)
}

// MetadataSource provides the auxiliary per-directory tag lookup used by
// the title and track-number sort criteria
type MetadataSource interface {
	// ListMetadata reads the tags of every audio file directly under dir
	// Files whose tags cannot be read are skipped, not errors
	ListMetadata(ctx context.Context, dir string) ([]domain.AudioMetadata, error)
}

// Mutator performs the in-place filesystem mutations dispatched by the
// drag-and-drop engine
type Mutator interface {
	// Move relocates source into the target directory, keeping its name
	Move(ctx context.Context, sourcePath, targetDir string) error

	// Combine creates newFolderName under parentPath and moves both
	// source and target into it
	Combine(ctx context.Context, sourcePath, targetPath, newFolderName, parentPath string) error
}
