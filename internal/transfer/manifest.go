// Package transfer implements the device transfer pipeline: checksum
// manifest, tar.gz archiving, the phase-reporting engine, and the
// single-flight orchestrator.
package transfer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Kadajett/musicManager/internal/core/checksum"
	"github.com/Kadajett/musicManager/internal/domain"
)

// FileChecksum pairs a root-relative path with its content digest
type FileChecksum struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Manifest captures the pre-transfer state of a source tree
type Manifest struct {
	Checksums  []FileChecksum `json:"checksums"`
	TotalBytes int64          `json:"total_size"`
	FileCount  int            `json:"file_count"`
}

// BuildManifest walks root and records a SHA-256 checksum for every
// regular file. A root that is itself a file yields a one-entry
// manifest keyed by its base name.
func BuildManifest(ctx context.Context, root string) (*Manifest, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	manifest := &Manifest{}

	if !fi.IsDir() {
		sum, err := checksum.File(ctx, root)
		if err != nil {
			return nil, err
		}
		manifest.Checksums = append(manifest.Checksums, FileChecksum{
			Path:     filepath.Base(root),
			Checksum: sum,
		})
		manifest.TotalBytes = fi.Size()
		manifest.FileCount = 1
		return manifest, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		sum, err := checksum.File(ctx, path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		manifest.Checksums = append(manifest.Checksums, FileChecksum{
			Path:     rel,
			Checksum: sum,
		})
		manifest.TotalBytes += info.Size()
		manifest.FileCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source tree: %w", err)
	}

	return manifest, nil
}

// VerifyManifest re-checksums every manifest entry under root and
// reports mismatches and missing files. The result's Success field is
// true only when every file matches.
func VerifyManifest(ctx context.Context, root string, manifest *Manifest) (domain.TransferResult, error) {
	if _, err := os.Stat(root); err != nil {
		return domain.TransferResult{}, fmt.Errorf("failed to stat target: %w", err)
	}

	var mismatches []string
	var verifiedBytes int64
	var verifiedFiles int

	for _, entry := range manifest.Checksums {
		target := filepath.Join(root, entry.Path)

		fi, err := os.Stat(target)
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("missing file: %s", entry.Path))
			continue
		}

		sum, err := checksum.File(ctx, target)
		if err != nil {
			return domain.TransferResult{}, err
		}
		if sum != entry.Checksum {
			mismatches = append(mismatches, fmt.Sprintf("checksum mismatch for: %s", entry.Path))
			continue
		}

		verifiedBytes += fi.Size()
		verifiedFiles++
	}

	result := domain.TransferResult{
		Success:          len(mismatches) == 0,
		TransferredFiles: verifiedFiles,
		TotalBytes:       verifiedBytes,
	}
	if result.Success {
		result.Message = fmt.Sprintf("successfully verified %d files", verifiedFiles)
	} else {
		result.Message = fmt.Sprintf("verification failed: %d problems", len(mismatches))
		for _, m := range mismatches {
			result.Message += "\n" + m
		}
	}
	return result, nil
}
