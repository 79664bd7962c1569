package selection

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/Kadajett/musicManager/internal/domain"
)

func makeListing(names ...string) domain.Listing {
	l := make(domain.Listing, len(names))
	for i, n := range names {
		l[i] = domain.Entry{Name: n, Path: "/music/" + n, IsAudio: true}
	}
	return l
}

func selectedNames(m *Manager) []string {
	entries := m.Selected()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestSelect_Plain(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c"))

	m.Select(0, ModNone)
	m.Select(2, ModNone)

	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("selected = %v, want [c]", got)
	}
}

func TestSelect_Toggle(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c"))

	m.Select(0, ModToggle)
	m.Select(2, ModToggle)
	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("selected = %v, want [a c]", got)
	}

	// Toggling again deselects
	m.Select(0, ModToggle)
	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("selected = %v, want [c]", got)
	}
}

func TestSelect_RangeIsAdditive(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("A", "B", "C", "D", "E"))

	// Plain B, then range to D yields {B,C,D}
	m.Select(1, ModNone)
	m.Select(3, ModRange)
	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"B", "C", "D"}) {
		t.Fatalf("selected = %v, want [B C D]", got)
	}

	// Range extends to E from the same anchor, then toggle A
	m.Select(4, ModRange)
	m.Select(0, ModToggle)
	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("selected = %v, want [A B C D E]", got)
	}
}

func TestSelect_RangeBackwards(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c", "d"))

	m.Select(3, ModNone)
	m.Select(1, ModRange)

	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("selected = %v, want [b c d]", got)
	}
}

func TestSelect_RangeWithoutAnchorActsAsPlain(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c"))

	m.Select(2, ModRange)

	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("selected = %v, want [c]", got)
	}
}

func TestSelect_RangePreservesAnchor(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c", "d", "e"))

	// Anchor stays at b across range selects
	m.Select(1, ModNone)
	m.Select(4, ModRange)
	m.Select(2, ModRange)

	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"b", "c", "d", "e"}) {
		t.Errorf("selected = %v, want [b c d e]", got)
	}
}

func TestSelect_OutOfRangeIgnored(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a"))

	m.Select(-1, ModNone)
	m.Select(5, ModNone)

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestSetListing_ClearsSelection(t *testing.T) {
	tests := []struct {
		name    string
		listing domain.Listing
	}{
		{"new directory", makeListing("x", "y")},
		{"refreshed same directory", makeListing("a", "b", "c")},
		{"empty listing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			m.SetListing(makeListing("a", "b", "c"))
			m.Select(0, ModNone)
			m.Select(2, ModToggle)

			m.SetListing(tt.listing)

			if m.Count() != 0 {
				t.Errorf("Count() = %d after listing change, want 0", m.Count())
			}
		})
	}
}

func TestSetListing_ResetsAnchor(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c"))
	m.Select(2, ModNone)

	m.SetListing(makeListing("a", "b", "c"))

	// A range select after the reset has no anchor to measure from
	m.Select(0, ModRange)
	if got := selectedNames(m); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("selected = %v, want [a]", got)
	}
}

func TestClear(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b"))
	m.Select(0, ModNone)

	m.Clear()

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
	if m.IsSelected("/music/a") {
		t.Error("a should not remain selected after Clear")
	}
}

func TestSelectedPaths_ListingOrder(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b", "c"))

	// Select in reverse order; output follows listing order
	m.Select(2, ModToggle)
	m.Select(0, ModToggle)

	want := []string{"/music/a", "/music/c"}
	if got := m.SelectedPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("SelectedPaths() = %v, want %v", got, want)
	}
}

func TestIsSelected(t *testing.T) {
	m := NewManager()
	m.SetListing(makeListing("a", "b"))
	m.Select(1, ModNone)

	for i, tt := range []struct {
		path string
		want bool
	}{
		{"/music/b", true},
		{"/music/a", false},
		{"/music/missing", false},
	} {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			if got := m.IsSelected(tt.path); got != tt.want {
				t.Errorf("IsSelected(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
