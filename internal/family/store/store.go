// Package store persists persons and relationships and serves the read
// primitives the discovery and matching engines are built on.
//
// Every backend satisfies Store. Reads never mutate; writes exist for
// seeding and for the account service that owns person records.
package store

import (
	"context"
	"sort"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
)

// GraphReader walks the relationship graph.
type GraphReader interface {
	// ActiveRelationshipsOf returns the active edges touching personID, seen
	// from personID, with stored inverses normalized through the type table.
	ActiveRelationshipsOf(ctx context.Context, personID id.PersonID) ([]models.Edge, error)
	// PersonsByIDs returns whichever of ids exist. Missing ids are omitted.
	PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error)
	// PersonByAccount returns the person linked to userID, or sentinel.ErrNotFound.
	PersonByAccount(ctx context.Context, userID id.UserID) (*models.Person, error)
}

// PoolFinder returns candidate ids by attribute equality.
type PoolFinder interface {
	PersonsSharingAddress(ctx context.Context, c models.AddressCriteria) (models.PersonIDSet, error)
	PersonsSharingReligion(ctx context.Context, c models.ReligionCriteria) (models.PersonIDSet, error)
}

// Writer creates and updates records.
type Writer interface {
	SavePerson(ctx context.Context, p *models.Person) error
	SaveRelationship(ctx context.Context, r *models.Relationship) error
}

// Store is a complete backend.
type Store interface {
	GraphReader
	PoolFinder
	Writer
}

func genderLookup(genders map[id.PersonID]models.Gender) func(id.PersonID) models.Gender {
	return func(pid id.PersonID) models.Gender {
		if g, ok := genders[pid]; ok {
			return g
		}
		return models.GenderUnknown
	}
}

func clonePerson(p *models.Person) *models.Person {
	c := *p
	if p.AccountID != nil {
		acct := *p.AccountID
		c.AccountID = &acct
	}
	if p.DateOfDeath != nil {
		dod := *p.DateOfDeath
		c.DateOfDeath = &dod
	}
	c.Addresses = append([]models.Address(nil), p.Addresses...)
	c.Religions = append([]models.Religion(nil), p.Religions...)
	return &c
}

// sortRelationships orders edges deterministically: oldest first, then by id.
func sortRelationships(rels []*models.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		if !rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].CreatedAt.Before(rels[j].CreatedAt)
		}
		return rels[i].ID.String() < rels[j].ID.String()
	})
}

// orderByRequest returns found persons in the order their ids were requested.
func orderByRequest(ids []id.PersonID, found map[id.PersonID]*models.Person) []*models.Person {
	out := make([]*models.Person, 0, len(found))
	for _, pid := range ids {
		if p, ok := found[pid]; ok {
			out = append(out, p)
			delete(found, pid)
		}
	}
	return out
}

func uniqueIDStrings(ids []id.PersonID) []string {
	seen := make(map[id.PersonID]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, pid := range ids {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid.String())
	}
	return out
}
