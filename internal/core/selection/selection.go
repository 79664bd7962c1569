// Package selection tracks the multi-select set for one listing.
// 選取集合只屬於當前的目錄列表；列表一旦變動選取立即清空。
// A selection belongs to exactly one listing; any listing change clears it.
package selection

import (
	"github.com/Kadajett/musicManager/internal/domain"
)

// Modifier describes how a select operation combines with the existing
// selection
type Modifier int

const (
	// ModNone clears the selection and selects only the target
	ModNone Modifier = iota
	// ModToggle flips membership of the target, preserving the rest
	ModToggle
	// ModRange adds every entry between the anchor and the target
	// (inclusive, either direction) to the existing selection
	ModRange
)

// noAnchor marks the absence of a recorded anchor index
const noAnchor = -1

// Manager owns the selection set for the listing it was last handed.
// It holds no copy of the listing beyond the slice reference, and it is
// not safe for concurrent use; the owning controller serializes access.
type Manager struct {
	listing  domain.Listing
	selected map[string]domain.Entry
	anchor   int
}

// NewManager creates an empty selection manager
func NewManager() *Manager {
	return &Manager{
		selected: make(map[string]domain.Entry),
		anchor:   noAnchor,
	}
}

// SetListing replaces the observed listing and clears the selection.
// Called on every navigation, refresh, and sort change.
func (m *Manager) SetListing(listing domain.Listing) {
	m.listing = listing
	m.Clear()
}

// Select applies one select operation against the current listing.
// Out-of-range indices are ignored. A range select without a recorded
// anchor degrades to a plain select.
func (m *Manager) Select(index int, mod Modifier) {
	if index < 0 || index >= len(m.listing) {
		return
	}

	entry := m.listing[index]

	switch mod {
	case ModRange:
		if m.anchor == noAnchor {
			m.selectOnly(entry)
			m.anchor = index
			return
		}
		lo, hi := m.anchor, index
		if lo > hi {
			lo, hi = hi, lo
		}
		// Additive: prior selection outside the range is preserved
		for i := lo; i <= hi; i++ {
			e := m.listing[i]
			m.selected[e.Path] = e
		}
		// Anchor stays on the last non-range selection point so a
		// follow-up shift-select measures from the same origin

	case ModToggle:
		if _, ok := m.selected[entry.Path]; ok {
			delete(m.selected, entry.Path)
		} else {
			m.selected[entry.Path] = entry
		}
		m.anchor = index

	default:
		m.selectOnly(entry)
		m.anchor = index
	}
}

func (m *Manager) selectOnly(entry domain.Entry) {
	m.selected = map[string]domain.Entry{entry.Path: entry}
}

// Clear empties the selection and forgets the anchor
func (m *Manager) Clear() {
	m.selected = make(map[string]domain.Entry)
	m.anchor = noAnchor
}

// IsSelected reports whether the entry at path is selected
func (m *Manager) IsSelected(path string) bool {
	_, ok := m.selected[path]
	return ok
}

// Count returns the number of selected entries
func (m *Manager) Count() int {
	return len(m.selected)
}

// Selected returns the selected entries in listing order
func (m *Manager) Selected() []domain.Entry {
	out := make([]domain.Entry, 0, len(m.selected))
	for _, e := range m.listing {
		if _, ok := m.selected[e.Path]; ok {
			out = append(out, e)
		}
	}
	return out
}

// SelectedPaths returns the selected paths in listing order
func (m *Manager) SelectedPaths() []string {
	entries := m.Selected()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
