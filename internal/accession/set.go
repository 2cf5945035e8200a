package accession

import (
	"sort"

	"github.com/nishad/ffqf/internal/errors"
)

// Set is a deduplicated collection of accessions of a single category.
// Every member satisfies the category's validation pattern.
type Set struct {
	category   Category
	accessions map[string]struct{}
}

// NewSet creates an empty set of the given category.
func NewSet(category Category) *Set {
	return &Set{
		category:   category,
		accessions: make(map[string]struct{}),
	}
}

// NewRunSet creates an empty set of run accessions.
func NewRunSet() *Set {
	return NewSet(Run)
}

// SetOf creates a set from accs, failing on the first invalid accession.
func SetOf(category Category, accs ...string) (*Set, error) {
	s := NewSet(category)
	if err := s.Update(accs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Category returns the category of the set's members.
func (s *Set) Category() Category {
	return s.category
}

// Add inserts acc. Adding an existing member is a no-op. An accession that
// does not match the category pattern is rejected with KindInvalidAccession
// and the set is left unchanged.
func (s *Set) Add(acc string) error {
	if !s.category.Valid(acc) {
		return errors.Errorf("accession.Set.Add", errors.KindInvalidAccession,
			"invalid %s accession %q", s.category, acc)
	}

	s.accessions[acc] = struct{}{}

	return nil
}

// Update adds every accession, stopping at the first rejection.
func (s *Set) Update(accs ...string) error {
	for _, acc := range accs {
		if err := s.Add(acc); err != nil {
			return err
		}
	}
	return nil
}

// Union adds all members of other. Both sets must share a category.
func (s *Set) Union(other *Set) error {
	if other == nil {
		return nil
	}
	return s.Update(other.Sorted()...)
}

// Contains reports whether acc is a member.
func (s *Set) Contains(acc string) bool {
	_, ok := s.accessions[acc]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.accessions)
}

// Sorted returns the members in lexical order.
func (s *Set) Sorted() []string {
	out := make([]string, 0, len(s.accessions))
	for acc := range s.accessions {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}

// Difference returns the members of s that are not in other, sorted.
func (s *Set) Difference(other map[string]struct{}) []string {
	var out []string
	for _, acc := range s.Sorted() {
		if _, ok := other[acc]; !ok {
			out = append(out, acc)
		}
	}
	return out
}

// Equal reports whether s and other hold exactly the same accessions.
func (s *Set) Equal(other *Set) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	for acc := range s.accessions {
		if !other.Contains(acc) {
			return false
		}
	}
	return true
}
