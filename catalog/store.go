package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfRange is returned for positions outside the store.
var ErrOutOfRange = errors.New("catalog: position out of range")

// Store is an append-only, position-addressed record list.
type Store struct {
	records []Record
}

// NewStore returns a store holding a copy of records.
func NewStore(records ...Record) *Store {
	return &Store{records: append([]Record(nil), records...)}
}

// Append adds record and returns its position.
func (s *Store) Append(record Record) int {
	s.records = append(s.records, record)
	return len(s.records) - 1
}

// Get returns the record at position.
func (s *Store) Get(position int) (Record, error) {
	if position < 0 || position >= len(s.records) {
		return Record{}, fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, position, len(s.records))
	}
	return s.records[position], nil
}

// FindByTitle returns the first record whose title contains text, ignoring
// case. Ambiguous fragments resolve to the earliest inserted match.
func (s *Store) FindByTitle(text string) (Record, int, bool) {
	needle := strings.ToLower(text)
	for pos, r := range s.records {
		if strings.Contains(strings.ToLower(r.Title), needle) {
			return r, pos, true
		}
	}
	return Record{}, -1, false
}

func (s *Store) Len() int { return len(s.records) }

// IDs returns the set of record ids.
func (s *Store) IDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(s.records))
	for _, r := range s.records {
		ids[r.ID] = struct{}{}
	}
	return ids
}

// Records returns a copy of all records in position order.
func (s *Store) Records() []Record {
	return append([]Record(nil), s.records...)
}
