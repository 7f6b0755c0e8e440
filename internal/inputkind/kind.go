package inputkind

import "fmt"

// Kind is the closed set of input shapes.
type Kind string

const (
	RawRom        Kind = "raw_rom"
	ArchiveSet    Kind = "archive_set"
	DiscImage     Kind = "disc_image"
	DiscTrackSet  Kind = "disc_track_set"
	GameFolderSet Kind = "game_folder_set"
)

// All lists every kind in declaration order.
func All() []Kind {
	return []Kind{RawRom, ArchiveSet, DiscImage, DiscTrackSet, GameFolderSet}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	switch k {
	case RawRom, ArchiveSet, DiscImage, DiscTrackSet, GameFolderSet:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

var spellings = map[string]Kind{
	"raw_rom":         RawRom,
	"archive_set":     ArchiveSet,
	"disc_image":      DiscImage,
	"disc_track_set":  DiscTrackSet,
	"game_folder_set": GameFolderSet,
	"RawRom":          RawRom,
	"ArchiveSet":      ArchiveSet,
	"DiscImage":       DiscImage,
	"DiscTrackSet":    DiscTrackSet,
	"GameFolderSet":   GameFolderSet,
}

// Parse accepts the canonical names plus the CamelCase spellings used by
// older definition files (e.g. "DiscImage"). The accepted set matches the
// inputKind enum of the definition schemas exactly.
func Parse(value string) (Kind, error) {
	if kind, ok := spellings[value]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown input kind %q", value)
}

// Contains reports whether kinds includes k.
func Contains(kinds []Kind, k Kind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
