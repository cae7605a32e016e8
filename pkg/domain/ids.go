// Package domain holds the typed identifiers shared across the family graph.
//
// Each identifier wraps a UUID so a PersonID can never be passed where a
// RelationshipID or UserID is expected. Parse functions are the trust boundary
// for identifiers arriving from HTTP paths, tokens and CLI arguments.
package domain

import (
	"github.com/google/uuid"

	dErrors "kinship/pkg/domain-errors"
)

type (
	// PersonID identifies a person record in the family graph.
	PersonID uuid.UUID
	// RelationshipID identifies a stored relationship edge.
	RelationshipID uuid.UUID
	// UserID identifies an account; a person may be linked to one.
	UserID uuid.UUID
	// SessionID identifies the session a bearer token was issued for.
	SessionID uuid.UUID
)

func (id PersonID) String() string       { return uuid.UUID(id).String() }
func (id RelationshipID) String() string { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id SessionID) String() string      { return uuid.UUID(id).String() }

func (id PersonID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RelationshipID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// NewPersonID returns a random person id.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewRelationshipID returns a random relationship id.
func NewRelationshipID() RelationshipID { return RelationshipID(uuid.New()) }

func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s, "person ID")
	return PersonID(u), err
}

func ParseRelationshipID(s string) (RelationshipID, error) {
	u, err := parseUUID(s, "relationship ID")
	return RelationshipID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	return SessionID(u), err
}

// parseUUID rejects empty, malformed and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}
