// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package favourites

import (
	"fmt"
	"strconv"
	"strings"
)

// tokenDelimiter separates ids in the persisted favourites token.
const tokenDelimiter = ","

// Set is an insertion-ordered set of meal ids. The zero value is an empty set.
type Set struct {
	order []int
	index map[int]struct{}
}

// NewSet returns a set holding ids, ignoring duplicates.
func NewSet(ids ...int) Set {
	s := Set{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is in the set.
func (s *Set) Has(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id and reports whether it was newly added.
func (s *Set) Add(id int) bool {
	if s.Has(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[int]struct{})
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id int) bool {
	if !s.Has(id) {
		return false
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Toggle removes id if present, adds it otherwise.
// It returns true when id is in the set afterwards.
func (s *Set) Toggle(id int) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

// IDs returns the members in insertion order. Never nil.
func (s *Set) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.order)
}

// ParseToken decodes a persisted favourites token.
// An empty or delimiter-only token is the empty set; blank elements are skipped.
func ParseToken(token string) (Set, error) {
	s := Set{}
	for _, part := range strings.Split(token, tokenDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return Set{}, fmt.Errorf("favourites token element %q: %w", part, err)
		}
		s.Add(id)
	}
	return s, nil
}

// FormatToken encodes a set for persistence. The empty set encodes as "".
func FormatToken(s Set) string {
	if s.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, s.Len())
	for _, id := range s.order {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, tokenDelimiter)
}
