// Package sentinel holds the store-level facts the family services branch on.
//
// Stores return these, possibly wrapped; services decide what they mean.
// A missing anchor person is an empty discovery, a missing requester is
// "no circle to exclude", and a conflict means an account is already linked.
package sentinel

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
