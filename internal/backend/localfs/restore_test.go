package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/testutil"
)

func TestRestoreExtension_MagicNumbers(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantExt string
	}{
		{"mp3 id3", append([]byte("ID3"), make([]byte, 16)...), "mp3"},
		{"mp3 frame sync", append([]byte("\xFF\xFB"), make([]byte, 16)...), "mp3"},
		{"flac", append([]byte("fLaC"), make([]byte, 16)...), "flac"},
		{"ogg", append([]byte("OggS"), make([]byte, 16)...), "ogg"},
		{"wav", append([]byte("RIFF"), make([]byte, 16)...), "wav"},
		{"mp4", append([]byte("\x00\x00\x00\x20\x66\x74\x79\x70"), make([]byte, 8)...), "mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, cleanup := testutil.TempDir(t)
			defer cleanup()

			path := testutil.CreateTestFile(t, dir, "mystery.bin", tt.content)

			if err := newTestStore().RestoreExtension(path); err != nil {
				t.Fatalf("RestoreExtension() error = %v", err)
			}

			want := filepath.Join(dir, "mystery."+tt.wantExt)
			if _, err := os.Stat(want); err != nil {
				t.Errorf("expected %s to exist: %v", want, err)
			}
		})
	}
}

func TestRestoreExtension_NoExtensionAdded(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.CreateTestFile(t, dir, "track", append([]byte("fLaC"), make([]byte, 8)...))

	if err := newTestStore().RestoreExtension(path); err != nil {
		t.Fatalf("RestoreExtension() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "track.flac")); err != nil {
		t.Errorf("extension not appended: %v", err)
	}
}

func TestRestoreExtension_UnknownFormat(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.CreateTestFile(t, dir, "garbage.bin", []byte("not an audio file"))

	err := newTestStore().RestoreExtension(path)
	if !errors.Is(err, domain.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRestoreExtension_DirectoryRejected(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	sub := testutil.CreateTestDir(t, dir, "folder")

	err := newTestStore().RestoreExtension(sub)
	if !errors.Is(err, domain.ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
}

func TestRestoreFolderExtensions_CollectsFailures(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	testutil.CreateTestFile(t, dir, "good", append([]byte("ID3"), make([]byte, 8)...))
	testutil.CreateTestFile(t, dir, "bad.bin", []byte("unknown content"))
	testutil.CreateTestDir(t, dir, "sub") // directories are skipped

	processed, err := newTestStore().RestoreFolderExtensions(dir)
	if err != nil {
		t.Fatalf("RestoreFolderExtensions() error = %v", err)
	}

	if len(processed) != 1 {
		t.Errorf("processed %d files, want 1", len(processed))
	}

	if _, err := os.Stat(filepath.Join(dir, "good.mp3")); err != nil {
		t.Errorf("good file not restored: %v", err)
	}
}

func TestRestoreFolderExtensions_NotDirectory(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := testutil.CreateTestFile(t, dir, "file.mp3", []byte("x"))

	_, err := newTestStore().RestoreFolderExtensions(path)
	if !errors.Is(err, domain.ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}
}
