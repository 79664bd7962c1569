package transfer

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// archiveName is the staging file name used for every transfer archive
const archiveName = "transfer.tar.gz"

// CreateArchive packs every regular file under sourcePath into a tar.gz
// at archivePath, with paths stored relative to the source root. A
// source that is itself a file is stored under its base name.
func CreateArchive(ctx context.Context, sourcePath, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	fi, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if !fi.IsDir() {
		if err := appendFile(ctx, tw, sourcePath, filepath.Base(sourcePath), fi); err != nil {
			return err
		}
	} else {
		err = filepath.WalkDir(sourcePath, func(path string, d fs.DirEntry, err error) error {
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
			rel, err := filepath.Rel(sourcePath, path)
			if err != nil {
				return err
			}
			return appendFile(ctx, tw, path, rel, info)
		})
		if err != nil {
			return fmt.Errorf("failed to archive source tree: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize compression: %w", err)
	}
	return out.Close()
}

func appendFile(ctx context.Context, tw *tar.Writer, path, name string, info fs.FileInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", name, err)
	}
	// Tar entries always use forward slashes
	header.Name = filepath.ToSlash(name)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return nil
}

// ExtractArchive unpacks the tar.gz at archivePath into targetPath.
// Entries that would escape the target directory are rejected.
func ExtractArchive(ctx context.Context, archivePath, targetPath string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to read compression header: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		dest, err := securePath(targetPath, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dest, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return fmt.Errorf("failed to create parent of %s: %w", dest, err)
			}
			if err := extractRegular(tr, dest, header.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Symlinks and special files never appear in our own
			// archives; skip anything unexpected
		}
	}
}

func extractRegular(tr *tar.Reader, dest string, mode fs.FileMode) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, tr); err != nil {
		return fmt.Errorf("failed to extract %s: %w", dest, err)
	}
	return out.Close()
}

// securePath resolves an archive entry name inside root, rejecting
// traversal outside it
func securePath(root, name string) (string, error) {
	dest := filepath.Join(root, filepath.FromSlash(name))
	if dest != root && !strings.HasPrefix(dest, root+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %s escapes target directory", name)
	}
	return dest, nil
}
