package localfs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kadajett/musicManager/internal/domain"
)

// signature maps a leading byte pattern to the extension it implies
type signature struct {
	prefix []byte
	ext    string
}

// signatures are checked in order; first match wins
var signatures = []signature{
	{[]byte("\x00\x00\x00\x20\x66\x74\x79\x70"), "mp4"},
	{[]byte("\x00\x00\x00\x18\x66\x74\x79\x70"), "mp4"},
	{[]byte("ID3"), "mp3"},
	{[]byte("\xFF\xFB"), "mp3"},
	{[]byte("fLaC"), "flac"},
	{[]byte("OggS"), "ogg"},
	{[]byte("RIFF"), "wav"},
}

// detectExtension sniffs the leading bytes of a file and returns the
// extension its content implies
func detectExtension(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", mapError(err)
	}
	defer f.Close()

	buf := make([]byte, 16)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	for _, sig := range signatures {
		if bytes.HasPrefix(buf, sig.prefix) {
			return sig.ext, nil
		}
	}

	return "", domain.ErrUnknownFormat
}

// RestoreExtension renames a file so its extension matches its content,
// detected from the file's magic numbers
// Any existing extension is replaced; a missing extension is appended
func (s *Store) RestoreExtension(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return mapError(err)
	}
	if info.IsDir() {
		return domain.ErrNotFile
	}

	ext, err := detectExtension(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	base := name
	if i := strings.Index(name, "."); i >= 0 {
		base = name[:i]
	}

	newPath := filepath.Join(filepath.Dir(path), base+"."+ext)
	if newPath == path {
		return nil
	}

	if err := os.Rename(path, newPath); err != nil {
		return fmt.Errorf("failed to rename file: %w", mapError(err))
	}

	s.log.Info("restored file extension", "path", newPath, "ext", ext)
	return nil
}

// RestoreFolderExtensions restores the extension of every file directly
// under path, collecting per-file failures instead of stopping
// Returns the paths successfully processed
func (s *Store) RestoreFolderExtensions(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, mapError(err)
	}
	if !info.IsDir() {
		return nil, domain.ErrNotDirectory
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, mapError(err)
	}

	var processed []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		p := filepath.Join(path, de.Name())
		if err := s.RestoreExtension(p); err != nil {
			s.log.Warn("failed to restore extension", "path", p, "error", err)
			continue
		}
		processed = append(processed, p)
	}

	return processed, nil
}
