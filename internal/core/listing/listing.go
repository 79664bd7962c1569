// Package listing orders directory entries for presentation.
// 目錄永遠排在檔案之前；檔案依使用中的排序準則排列。
// Directories always come first; files follow the active sort criterion.
package listing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Kadajett/musicManager/internal/backend"
	"github.com/Kadajett/musicManager/internal/domain"
)

// Order arranges entries into a Listing: directories first by
// locale-collated name, then files by the given criterion. Title and
// track-number criteria consult meta for the per-directory tag records;
// files without a usable tag fall back to name (title) or sort last
// (track number). Ties within files always break on name.
//
// A metadata read failure is returned as an error so the caller can
// surface it instead of silently presenting a misordered listing.
// When meta is nil, title falls back to name ordering and track number
// treats every file as untracked.
func Order(ctx context.Context, entries []domain.Entry, criterion domain.SortCriterion, dir string, meta backend.MetadataSource) (domain.Listing, error) {
	coll := collate.New(language.Und, collate.IgnoreCase)

	var dirs, files []domain.Entry
	for _, e := range entries {
		if e.IsDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		return coll.CompareString(dirs[i].Name, dirs[j].Name) < 0
	})

	switch criterion {
	case domain.SortByTitle:
		if err := sortByTitle(ctx, coll, files, dir, meta); err != nil {
			return nil, err
		}
	case domain.SortByTrackNumber:
		if err := sortByTrack(ctx, coll, files, dir, meta); err != nil {
			return nil, err
		}
	default:
		sort.SliceStable(files, func(i, j int) bool {
			return coll.CompareString(files[i].Name, files[j].Name) < 0
		})
	}

	out := make(domain.Listing, 0, len(dirs)+len(files))
	out = append(out, dirs...)
	out = append(out, files...)
	return out, nil
}

// sortByTitle orders files by tag title, falling back to the entry name
// for files without a title (or without a tag record at all)
func sortByTitle(ctx context.Context, coll *collate.Collator, files []domain.Entry, dir string, meta backend.MetadataSource) error {
	tags, err := fetchTags(ctx, dir, meta)
	if err != nil {
		return err
	}

	key := func(e domain.Entry) string {
		if m, ok := tags[e.Path]; ok && m.Title != "" {
			return m.Title
		}
		return e.Name
	}

	sort.SliceStable(files, func(i, j int) bool {
		ki, kj := key(files[i]), key(files[j])
		if c := coll.CompareString(ki, kj); c != 0 {
			return c < 0
		}
		return coll.CompareString(files[i].Name, files[j].Name) < 0
	})
	return nil
}

// sortByTrack orders files by track number; files without a track number
// (or without a tag) sort after every numbered file, then by name
func sortByTrack(ctx context.Context, coll *collate.Collator, files []domain.Entry, dir string, meta backend.MetadataSource) error {
	tags, err := fetchTags(ctx, dir, meta)
	if err != nil {
		return err
	}

	track := func(e domain.Entry) int {
		if m, ok := tags[e.Path]; ok && m.TrackNumber > 0 {
			return m.TrackNumber
		}
		return math.MaxInt
	}

	sort.SliceStable(files, func(i, j int) bool {
		ti, tj := track(files[i]), track(files[j])
		if ti != tj {
			return ti < tj
		}
		return coll.CompareString(files[i].Name, files[j].Name) < 0
	})
	return nil
}

// fetchTags reads the directory's tag records into a path-keyed map
func fetchTags(ctx context.Context, dir string, meta backend.MetadataSource) (map[string]domain.AudioMetadata, error) {
	if meta == nil {
		return nil, nil
	}

	records, err := meta.ListMetadata(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio metadata for %s: %w", dir, err)
	}

	tags := make(map[string]domain.AudioMetadata, len(records))
	for _, m := range records {
		tags[m.Path] = m
	}
	return tags, nil
}
