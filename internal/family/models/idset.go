package models

import (
	"sort"

	id "kinship/pkg/domain"
)

// PersonIDSet is an unordered set of person ids.
type PersonIDSet map[id.PersonID]struct{}

func NewPersonIDSet(ids ...id.PersonID) PersonIDSet {
	s := make(PersonIDSet, len(ids))
	for _, pid := range ids {
		s[pid] = struct{}{}
	}
	return s
}

func (s PersonIDSet) Add(pid id.PersonID) { s[pid] = struct{}{} }

func (s PersonIDSet) Has(pid id.PersonID) bool {
	_, ok := s[pid]
	return ok
}

// Intersect returns the ids present in both sets.
func (s PersonIDSet) Intersect(other PersonIDSet) PersonIDSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(PersonIDSet, len(small))
	for pid := range small {
		if large.Has(pid) {
			out.Add(pid)
		}
	}
	return out
}

// Sorted returns the ids in a stable order.
func (s PersonIDSet) Sorted() []id.PersonID {
	out := make([]id.PersonID, 0, len(s))
	for pid := range s {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
