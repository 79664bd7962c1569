package domain

// Entry represents one filesystem object within a directory listing
// Identity is the Path; entries are immutable once produced by a listing
type Entry struct {
	// Name is the base name of the entry
	Name string

	// Path is the absolute path, unique within its store
	Path string

	// IsDir indicates whether this entry is a directory
	IsDir bool

	// IsAudio indicates whether this entry is a recognized audio file
	IsAudio bool
}

// Listing is an ordered sequence of entries for one directory
// Directories always sort before files; within each group the order
// follows the active SortCriterion
type Listing []Entry

// Lookup returns the entry with the given path, if present
func (l Listing) Lookup(path string) (Entry, bool) {
	for _, e := range l {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}

// Paths returns the paths of all entries in listing order
func (l Listing) Paths() []string {
	paths := make([]string, len(l))
	for i, e := range l {
		paths[i] = e.Path
	}
	return paths
}

// SortCriterion selects the ordering of files within a listing
type SortCriterion int

const (
	// SortByName orders files by entry name (locale-aware)
	SortByName SortCriterion = iota
	// SortByTitle orders files by tag title, falling back to name
	SortByTitle
	// SortByTrackNumber orders files by track number; files without a
	// track number sort last
	SortByTrackNumber
)

// String returns the string representation of the criterion
func (s SortCriterion) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByTitle:
		return "title"
	case SortByTrackNumber:
		return "track"
	default:
		return "name"
	}
}

// ParseSortCriterion parses a string into a SortCriterion (case-insensitive
// on the canonical forms); unknown values default to SortByName
func ParseSortCriterion(s string) SortCriterion {
	switch s {
	case "title":
		return SortByTitle
	case "track", "tracknumber", "track_number":
		return SortByTrackNumber
	default:
		return SortByName
	}
}

// AudioMetadata holds the tag fields read from one audio file
// Zero values mean the field is absent from the tag
type AudioMetadata struct {
	// Path is the absolute path of the audio file the tag was read from
	Path string

	Title  string
	Artist string
	Album  string

	// TrackNumber is 0 when the tag carries no track number
	TrackNumber int
}
