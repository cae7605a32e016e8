package store

import (
	"context"
	"sync"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
)

// InMemoryStore keeps persons and relationships in maps.
// Relationships are indexed by both endpoints.
type InMemoryStore struct {
	mu            sync.RWMutex
	persons       map[id.PersonID]*models.Person
	byAccount     map[id.UserID]id.PersonID
	relationships map[id.RelationshipID]*models.Relationship
	touching      map[id.PersonID]map[id.RelationshipID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		persons:       make(map[id.PersonID]*models.Person),
		byAccount:     make(map[id.UserID]id.PersonID),
		relationships: make(map[id.RelationshipID]*models.Relationship),
		touching:      make(map[id.PersonID]map[id.RelationshipID]struct{}),
	}
}

// EnsureSchema is a no-op; the maps are the schema.
func (s *InMemoryStore) EnsureSchema(context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) SavePerson(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.AccountID != nil {
		if owner, ok := s.byAccount[*p.AccountID]; ok && owner != p.ID {
			return sentinel.ErrConflict
		}
	}
	if prev, ok := s.persons[p.ID]; ok && prev.AccountID != nil {
		delete(s.byAccount, *prev.AccountID)
	}
	stored := clonePerson(p)
	stored.DateOfBirth = models.CalendarDate(p.DateOfBirth)
	s.persons[p.ID] = stored
	if p.AccountID != nil {
		s.byAccount[*p.AccountID] = p.ID
	}
	return nil
}

func (s *InMemoryStore) SaveRelationship(_ context.Context, r *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.relationships[r.ID]; ok {
		s.unindex(prev)
	}
	stored := *r
	s.relationships[r.ID] = &stored
	s.index(&stored)
	return nil
}

func (s *InMemoryStore) index(r *models.Relationship) {
	for _, pid := range []id.PersonID{r.PersonID, r.RelatedPersonID} {
		if s.touching[pid] == nil {
			s.touching[pid] = make(map[id.RelationshipID]struct{})
		}
		s.touching[pid][r.ID] = struct{}{}
	}
}

func (s *InMemoryStore) unindex(r *models.Relationship) {
	for _, pid := range []id.PersonID{r.PersonID, r.RelatedPersonID} {
		delete(s.touching[pid], r.ID)
	}
}

func (s *InMemoryStore) ActiveRelationshipsOf(_ context.Context, personID id.PersonID) ([]models.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rels := make([]*models.Relationship, 0, len(s.touching[personID]))
	genders := make(map[id.PersonID]models.Gender)
	for relID := range s.touching[personID] {
		r := s.relationships[relID]
		if r == nil || !r.IsActive {
			continue
		}
		rels = append(rels, r)
		if p, ok := s.persons[r.PersonID]; ok {
			genders[r.PersonID] = p.Gender
		}
	}
	sortRelationships(rels)
	return models.EdgesFor(personID, rels, genderLookup(genders)), nil
}

func (s *InMemoryStore) PersonsByIDs(_ context.Context, ids []id.PersonID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Person, 0, len(ids))
	seen := make(map[id.PersonID]struct{}, len(ids))
	for _, pid := range ids {
		if _, dup := seen[pid]; dup {
			continue
		}
		seen[pid] = struct{}{}
		if p, ok := s.persons[pid]; ok {
			out = append(out, clonePerson(p))
		}
	}
	return out, nil
}

func (s *InMemoryStore) PersonByAccount(_ context.Context, userID id.UserID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pid, ok := s.byAccount[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p, ok := s.persons[pid]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePerson(p), nil
}

func (s *InMemoryStore) PersonsSharingAddress(_ context.Context, c models.AddressCriteria) (models.PersonIDSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.PersonIDSet)
	for pid, p := range s.persons {
		if c.AnyAddress(p.Addresses) {
			out.Add(pid)
		}
	}
	return out, nil
}

func (s *InMemoryStore) PersonsSharingReligion(_ context.Context, c models.ReligionCriteria) (models.PersonIDSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(models.PersonIDSet)
	for pid, p := range s.persons {
		if c.AnyReligion(p.Religions) {
			out.Add(pid)
		}
	}
	return out, nil
}
