// Package readstate persists the set of notification IDs the local user has
// acknowledged. Every backend keeps the whole set in one named slot as a
// JSON array of ID strings.
package readstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nhle/pmwatch/internal/model"
)

// Set is a set of acknowledged notification IDs. The zero value is not
// usable; create one with NewSet.
type Set struct {
	ids map[model.NotificationID]struct{}
}

// NewSet returns a set holding the given IDs.
func NewSet(ids ...model.NotificationID) Set {
	s := Set{ids: make(map[model.NotificationID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether the set changed.
func (s Set) Add(id model.NotificationID) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id has been acknowledged.
func (s Set) Has(id model.NotificationID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int { return len(s.ids) }

// IDs returns the IDs in ascending order.
func (s Set) IDs() []model.NotificationID {
	out := make([]model.NotificationID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	return NewSet(s.IDs()...)
}

// Store is a durable slot holding a Set.
type Store interface {
	// Load returns the persisted set. A missing, unreadable or corrupt
	// slot yields an empty set; Load never fails.
	Load(ctx context.Context) Set

	// Save overwrites the slot with the full set.
	Save(ctx context.Context, s Set) error
}

// encode serializes s as a JSON array of strings.
func encode(s Set) ([]byte, error) {
	ids := s.IDs()
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = string(id)
	}
	data, err := json.Marshal(strs)
	if err != nil {
		return nil, fmt.Errorf("encoding read state: %w", err)
	}
	return data, nil
}

// decode parses a stored slot value. Numeric entries are accepted so a
// slot written by another client with raw numeric IDs still loads.
func decode(data []byte) (Set, error) {
	var ids []model.NotificationID
	if err := json.Unmarshal(data, &ids); err != nil {
		return NewSet(), fmt.Errorf("decoding read state: %w", err)
	}
	return NewSet(ids...), nil
}
