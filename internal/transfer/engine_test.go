package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/lock"
	"github.com/Kadajett/musicManager/internal/testutil"
)

func assertFileContent(t *testing.T, path string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	if string(got) != string(want) {
		t.Errorf("content of %s = %q, want %q", path, got, want)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	src := buildSourceTree(t)
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	dest := testutil.CreateTestDir(t, work, "dest")

	ctx := context.Background()
	archivePath := filepath.Join(work, "out.tar.gz")
	if err := CreateArchive(ctx, src, archivePath); err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}
	if err := ExtractArchive(ctx, archivePath, dest); err != nil {
		t.Fatalf("ExtractArchive() error = %v", err)
	}

	assertFileContent(t, filepath.Join(dest, "01 - intro.mp3"), []byte("intro audio"))
	assertFileContent(t, filepath.Join(dest, "bonus", "hidden track.flac"), []byte("bonus"))
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	dest := testutil.CreateTestDir(t, work, "dest")

	if _, err := securePath(dest, "../escape.mp3"); err == nil {
		t.Error("expected traversal rejection")
	}
	if _, err := securePath(dest, "album/track.mp3"); err != nil {
		t.Errorf("nested entry rejected: %v", err)
	}
}

func TestEngineRun_ArchiveAndVerify(t *testing.T) {
	src := buildSourceTree(t)
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	dest := testutil.CreateTestDir(t, work, "device")
	temp := testutil.CreateTestDir(t, work, "staging")

	var statuses []domain.TransferStatus
	engine := NewEngine(temp, func(job domain.TransferJob) {
		statuses = append(statuses, job.Status)
	})

	result, err := engine.Run(context.Background(), domain.TransferOptions{
		SourcePath:     src,
		TargetPath:     dest,
		CreateArchive:  true,
		VerifyTransfer: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.TransferredFiles != 3 {
		t.Errorf("TransferredFiles = %d, want 3", result.TransferredFiles)
	}

	// The full tree arrives at the destination
	assertFileContent(t, filepath.Join(dest, "01 - intro.mp3"), []byte("intro audio"))
	assertFileContent(t, filepath.Join(dest, "02 - outro.mp3"), []byte("outro audio bytes"))
	assertFileContent(t, filepath.Join(dest, "bonus", "hidden track.flac"), []byte("bonus"))

	// Staging archive and destination copy are cleaned up
	if _, err := os.Stat(filepath.Join(dest, archiveName)); !os.IsNotExist(err) {
		t.Error("destination archive copy should be removed")
	}
	entries, _ := os.ReadDir(temp)
	if len(entries) != 0 {
		t.Errorf("staging directory not cleaned: %v", entries)
	}

	// Lock is released
	if _, err := os.Stat(filepath.Join(dest, lock.LockFileName)); !os.IsNotExist(err) {
		t.Error("destination lock should be released")
	}

	// Phases arrive in pipeline order
	want := []domain.TransferStatus{
		domain.TransferChecksumming,
		domain.TransferArchiving,
		domain.TransferCopying,
		domain.TransferExtracting,
		domain.TransferComplete,
	}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
}

func TestEngineRun_DirectCopy(t *testing.T) {
	src := buildSourceTree(t)
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	dest := testutil.CreateTestDir(t, work, "device")

	var sawBytes bool
	engine := NewEngine(work, func(job domain.TransferJob) {
		if job.Status == domain.TransferCopying && job.ProcessedBytes > 0 {
			sawBytes = true
		}
	})

	result, err := engine.Run(context.Background(), domain.TransferOptions{
		SourcePath:     src,
		TargetPath:     dest,
		CreateArchive:  false,
		VerifyTransfer: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}

	assertFileContent(t, filepath.Join(dest, "bonus", "hidden track.flac"), []byte("bonus"))
	if !sawBytes {
		t.Error("direct copy should report byte-level progress")
	}
}

func TestEngineRun_SingleFileSource(t *testing.T) {
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	file := testutil.CreateTestFile(t, work, "single.mp3", []byte("solo"))
	dest := testutil.CreateTestDir(t, work, "device")

	engine := NewEngine(work, nil)
	result, err := engine.Run(context.Background(), domain.TransferOptions{
		SourcePath:     file,
		TargetPath:     dest,
		CreateArchive:  true,
		VerifyTransfer: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Success || result.TransferredFiles != 1 {
		t.Fatalf("result = %+v, want one verified file", result)
	}
	assertFileContent(t, filepath.Join(dest, "single.mp3"), []byte("solo"))
}

func TestEngineRun_MissingDestination(t *testing.T) {
	src := buildSourceTree(t)

	engine := NewEngine("", nil)
	_, err := engine.Run(context.Background(), domain.TransferOptions{
		SourcePath:     src,
		TargetPath:     "/nonexistent-device",
		CreateArchive:  true,
		VerifyTransfer: true,
	})
	if err == nil {
		t.Error("expected error for missing destination")
	}
}

func TestEngineRun_LockedDestinationRejected(t *testing.T) {
	src := buildSourceTree(t)
	work, cleanup := testutil.TempDir(t)
	defer cleanup()
	dest := testutil.CreateTestDir(t, work, "device")

	// Another lock instance already holds the destination
	held, err := lock.NewTransferLock(dest)
	if err != nil {
		t.Fatalf("NewTransferLock() error = %v", err)
	}
	if err := held.Acquire("/elsewhere"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer held.Release()

	engine := NewEngine(work, nil)
	_, err = engine.Run(context.Background(), domain.TransferOptions{
		SourcePath:     src,
		TargetPath:     dest,
		CreateArchive:  true,
		VerifyTransfer: true,
	})
	if !lock.IsLockError(err) {
		t.Errorf("Run() error = %v, want lock error", err)
	}
}
