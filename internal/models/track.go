package models

import "fmt"

// Track is a liked song as seen by the library endpoint.
type Track struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.ID)
}

// LikedList holds liked tracks ordered oldest-first: index 0 is the earliest like.
type LikedList []Track

// IDs returns the track identifiers in list order.
func (l LikedList) IDs() []string {
	ids := make([]string, len(l))
	for i, t := range l {
		ids[i] = t.ID
	}
	return ids
}

// Oldest returns the earliest liked track.
func (l LikedList) Oldest() (Track, bool) {
	if len(l) == 0 {
		return Track{}, false
	}
	return l[0], true
}

// Newest returns the most recently liked track.
func (l LikedList) Newest() (Track, bool) {
	if len(l) == 0 {
		return Track{}, false
	}
	return l[len(l)-1], true
}

// Operation is the library mutation applied by a replay.
type Operation string

const (
	OpAdd    Operation = "add"
	OpDelete Operation = "delete"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	return o == OpAdd || o == OpDelete
}

// ParseOperation converts user input to an [Operation].
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation %q (must be add or delete)", s)
	}
	return op, nil
}
