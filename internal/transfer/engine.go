package transfer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/lock"
	"github.com/Kadajett/musicManager/internal/logger"
	"github.com/Kadajett/musicManager/internal/progress"
)

// Reporter receives phase and progress updates while a transfer runs.
// Every report fully replaces the previous one.
type Reporter func(job domain.TransferJob)

// Engine executes one transfer end to end: manifest, archive or direct
// copy, extraction, and verification. The destination directory is
// locked for the duration so a second process cannot write into it.
type Engine struct {
	tempDir string
	report  Reporter
	log     logger.Logger
}

// NewEngine creates an engine staging archives under tempDir (the
// system temp directory when empty). report may be nil.
func NewEngine(tempDir string, report Reporter) *Engine {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if report == nil {
		report = func(domain.TransferJob) {}
	}
	return &Engine{
		tempDir: tempDir,
		report:  report,
		log:     logger.With("component", "transfer-engine"),
	}
}

// Run performs the transfer described by opts
// 傳輸期間目的地目錄會被鎖定,結束時一定解鎖。
// The destination stays locked until the transfer finishes.
func (e *Engine) Run(ctx context.Context, opts domain.TransferOptions) (domain.TransferResult, error) {
	e.log.Info("transfer starting",
		"source", opts.SourcePath,
		"target", opts.TargetPath,
		"archive", opts.CreateArchive,
		"verify", opts.VerifyTransfer)

	destLock, err := lock.NewTransferLock(opts.TargetPath)
	if err != nil {
		return domain.TransferResult{}, err
	}
	if err := destLock.Acquire(opts.SourcePath); err != nil {
		return domain.TransferResult{}, err
	}
	defer func() {
		if rerr := destLock.Release(); rerr != nil {
			e.log.Warn("failed to release destination lock", "error", rerr)
		}
	}()

	// Phase 1: manifest of the source, needed for verification and for
	// the progress totals
	var manifest *Manifest
	if opts.VerifyTransfer {
		e.report(domain.TransferJob{Status: domain.TransferChecksumming})
		manifest, err = BuildManifest(ctx, opts.SourcePath)
		if err != nil {
			return domain.TransferResult{}, err
		}
	}

	var totalFiles int
	var totalBytes int64
	if manifest != nil {
		totalFiles = manifest.FileCount
		totalBytes = manifest.TotalBytes
	}

	// Phase 2: move the bytes
	if opts.CreateArchive {
		if err := e.runArchived(ctx, opts, totalFiles, totalBytes); err != nil {
			return domain.TransferResult{}, err
		}
	} else {
		if err := e.runDirect(ctx, opts, totalFiles, totalBytes); err != nil {
			return domain.TransferResult{}, err
		}
	}

	e.report(domain.TransferJob{
		Status:         domain.TransferComplete,
		ProcessedFiles: totalFiles,
		TotalFiles:     totalFiles,
		ProcessedBytes: totalBytes,
		TotalBytes:     totalBytes,
	})

	// Phase 3: verify against the manifest
	if manifest != nil {
		result, err := VerifyManifest(ctx, opts.TargetPath, manifest)
		if err != nil {
			return domain.TransferResult{}, err
		}
		if !result.Success {
			e.log.Error("transfer verification failed", "detail", result.Message)
			return result, domain.ErrVerifyFailed
		}
		e.log.Info("transfer verified", "files", result.TransferredFiles, "bytes", result.TotalBytes)
		return result, nil
	}

	return domain.TransferResult{
		Success: true,
		Message: "transfer completed successfully",
	}, nil
}

// runArchived stages a tar.gz in the temp directory, copies it to the
// destination, and extracts it there
func (e *Engine) runArchived(ctx context.Context, opts domain.TransferOptions, totalFiles int, totalBytes int64) error {
	staging, err := os.MkdirTemp(e.tempDir, "musicman-transfer-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	archivePath := filepath.Join(staging, archiveName)

	e.report(domain.TransferJob{
		Status:     domain.TransferArchiving,
		TotalFiles: totalFiles,
		TotalBytes: totalBytes,
	})
	if err := CreateArchive(ctx, opts.SourcePath, archivePath); err != nil {
		return err
	}

	e.report(domain.TransferJob{
		Status:         domain.TransferCopying,
		ProcessedFiles: totalFiles / 2,
		TotalFiles:     totalFiles,
		ProcessedBytes: totalBytes / 2,
		TotalBytes:     totalBytes,
	})
	targetArchive := filepath.Join(opts.TargetPath, archiveName)
	if err := copyFile(ctx, archivePath, targetArchive, nil); err != nil {
		return fmt.Errorf("failed to copy archive to destination: %w", err)
	}
	defer os.Remove(targetArchive)

	e.report(domain.TransferJob{
		Status:         domain.TransferExtracting,
		ProcessedFiles: totalFiles * 3 / 4,
		TotalFiles:     totalFiles,
		ProcessedBytes: totalBytes * 3 / 4,
		TotalBytes:     totalBytes,
	})
	if err := ExtractArchive(ctx, targetArchive, opts.TargetPath); err != nil {
		return err
	}
	return nil
}

// runDirect copies the source tree file by file, reporting byte-level
// progress as each file streams across
func (e *Engine) runDirect(ctx context.Context, opts domain.TransferOptions, totalFiles int, totalBytes int64) error {
	fi, err := os.Stat(opts.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	var copiedFiles int
	var copiedBytes int64

	copyOne := func(path, rel string) error {
		dest := filepath.Join(opts.TargetPath, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create parent of %s: %w", dest, err)
		}

		base := copiedBytes
		err := copyFile(ctx, path, dest, func(n int64) {
			e.report(domain.TransferJob{
				Status:         domain.TransferCopying,
				CurrentFile:    rel,
				ProcessedFiles: copiedFiles,
				TotalFiles:     totalFiles,
				ProcessedBytes: base + n,
				TotalBytes:     totalBytes,
			})
		})
		if err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err == nil {
			copiedBytes += info.Size()
		}
		copiedFiles++
		return nil
	}

	if !fi.IsDir() {
		if err := copyOne(opts.SourcePath, filepath.Base(opts.SourcePath)); err != nil {
			return err
		}
	} else {
		err = filepath.WalkDir(opts.SourcePath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(opts.SourcePath, path)
			if err != nil {
				return err
			}
			return copyOne(path, rel)
		})
		if err != nil {
			return fmt.Errorf("failed to copy source tree: %w", err)
		}
	}

	if copiedFiles == 0 {
		return fmt.Errorf("no files were copied from %s", opts.SourcePath)
	}
	return nil
}

// copyFile streams src to dst; onProgress (may be nil) receives the
// cumulative byte count
func copyFile(ctx context.Context, src, dst string, onProgress progress.Func) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	var reader io.Reader = in
	if onProgress != nil {
		reader = progress.NewReader(in, onProgress)
	}

	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("failed to write %s: %w", dst, werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("failed to read %s: %w", src, rerr)
		}
	}
	return out.Close()
}
