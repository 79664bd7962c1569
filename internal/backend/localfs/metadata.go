package localfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/Kadajett/musicManager/internal/domain"
)

// ListMetadata reads the tags of every audio file directly under dir
// Files whose tags cannot be read are skipped with a log line; a file
// with no tag still yields a record so callers can apply sort fallbacks
func (s *Store) ListMetadata(ctx context.Context, dir string) ([]domain.AudioMetadata, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, mapError(err)
	}

	var out []domain.AudioMetadata
	for _, de := range dirEntries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if de.IsDir() || !s.isAudio(de.Name()) {
			continue
		}

		path := filepath.Join(dir, de.Name())
		meta, err := s.readMetadata(path)
		if err != nil {
			s.log.Debug("failed to read tags", "path", path, "error", err)
			// Untagged files still participate in sorting via fallbacks
			out = append(out, domain.AudioMetadata{Path: path})
			continue
		}
		out = append(out, meta)
	}

	return out, nil
}

// readMetadata reads the tag of a single audio file
func (s *Store) readMetadata(path string) (domain.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.AudioMetadata{}, mapError(err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return domain.AudioMetadata{}, err
	}

	track, _ := m.Track()
	return domain.AudioMetadata{
		Path:        path,
		Title:       m.Title(),
		Artist:      m.Artist(),
		Album:       m.Album(),
		TrackNumber: track,
	}, nil
}
