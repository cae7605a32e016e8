package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kinship/internal/family/models"
	"kinship/internal/platform/config"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
)

// StoreSuite runs the same behavioral checks against every backend.
type StoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
	store    Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore(s.T())
	s.ctx = context.Background()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) savePerson(given, family string, gender models.Gender, opts ...func(*models.Person)) *models.Person {
	p := &models.Person{
		ID:          id.NewPersonID(),
		GivenName:   given,
		FamilyName:  family,
		Gender:      gender,
		DateOfBirth: date(1980, time.January, 1),
		Addresses:   []models.Address{{Country: "MX", State: "JAL"}},
		Religions:   []models.Religion{{Religion: "CATH"}},
		CreatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	s.Require().NoError(s.store.SavePerson(s.ctx, p))
	return p
}

func (s *StoreSuite) relate(person, related *models.Person, typ models.RelationshipType, active bool) {
	s.Require().NoError(s.store.SaveRelationship(s.ctx, &models.Relationship{
		ID:              id.NewRelationshipID(),
		PersonID:        person.ID,
		RelatedPersonID: related.ID,
		Type:            typ,
		IsActive:        active,
		CreatedAt:       time.Now().UTC(),
	}))
}

func (s *StoreSuite) TestPersonsByIDs() {
	account := id.UserID(uuid.New())
	dod := date(2020, time.May, 4)
	maria := s.savePerson("Maria", "Garcia", models.GenderFemale, func(p *models.Person) {
		p.MiddleName = "Luisa"
		p.AccountID = &account
		p.DateOfBirth = date(1985, time.March, 2)
		p.DateOfDeath = &dod
		p.Addresses = []models.Address{
			{Country: "MX", State: "JAL", District: "GDL"},
			{Country: "US", State: "TX"},
		}
		p.Religions = []models.Religion{{Religion: "CATH", Category: "LAT"}}
	})
	juan := s.savePerson("Juan", "Garcia", models.GenderMale)

	got, err := s.store.PersonsByIDs(s.ctx, []id.PersonID{juan.ID, id.NewPersonID(), maria.ID, juan.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 2, "missing ids are omitted and duplicates collapse")
	s.Equal(juan.ID, got[0].ID, "request order is kept")

	m := got[1]
	s.Equal("Maria Luisa Garcia", m.FullName())
	s.Equal(models.GenderFemale, m.Gender)
	s.True(m.DateOfBirth.Equal(date(1985, time.March, 2)))
	s.Require().NotNil(m.DateOfDeath)
	s.True(m.DateOfDeath.Equal(dod))
	s.Require().NotNil(m.AccountID)
	s.Equal(account, *m.AccountID)
	s.ElementsMatch(maria.Addresses, m.Addresses)
	s.Equal(maria.Religions, m.Religions)

	empty, err := s.store.PersonsByIDs(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *StoreSuite) TestSavePersonReplacesAttachments() {
	p := s.savePerson("Ana", "Lopez", models.GenderFemale)
	p.Addresses = []models.Address{{Country: "PE"}}
	p.FamilyName = "Lopez Diaz"
	s.Require().NoError(s.store.SavePerson(s.ctx, p))

	got, err := s.store.PersonsByIDs(s.ctx, []id.PersonID{p.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Lopez Diaz", got[0].FamilyName)
	s.Equal([]models.Address{{Country: "PE"}}, got[0].Addresses)
}

func (s *StoreSuite) TestPersonByAccount() {
	account := id.UserID(uuid.New())
	p := s.savePerson("Luis", "Perez", models.GenderMale, func(p *models.Person) { p.AccountID = &account })

	got, err := s.store.PersonByAccount(s.ctx, account)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)

	_, err = s.store.PersonByAccount(s.ctx, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestAccountLinkIsUnique() {
	account := id.UserID(uuid.New())
	s.savePerson("Luis", "Perez", models.GenderMale, func(p *models.Person) { p.AccountID = &account })

	other := &models.Person{
		ID:          id.NewPersonID(),
		AccountID:   &account,
		GivenName:   "Other",
		FamilyName:  "Person",
		Gender:      models.GenderMale,
		DateOfBirth: date(1990, time.June, 1),
	}
	err := s.store.SavePerson(s.ctx, other)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *StoreSuite) TestActiveRelationshipsOf() {
	anchor := s.savePerson("Carlos", "Ruiz", models.GenderMale)
	wife := s.savePerson("Elena", "Ruiz", models.GenderFemale)
	daughter := s.savePerson("Sofia", "Ruiz", models.GenderFemale)
	father := s.savePerson("Jorge", "Ruiz", models.GenderMale)
	former := s.savePerson("Paula", "Mora", models.GenderFemale)

	s.relate(anchor, wife, models.RelationshipWife, true)
	s.relate(daughter, anchor, models.RelationshipFather, true) // stored on the daughter's side
	s.relate(anchor, father, models.RelationshipFather, true)
	s.relate(father, anchor, models.RelationshipSon, true) // both directions persisted
	s.relate(anchor, former, models.RelationshipSpouse, false)

	edges, err := s.store.ActiveRelationshipsOf(s.ctx, anchor.ID)
	s.Require().NoError(err)

	got := map[id.PersonID]models.RelationshipType{}
	for _, e := range edges {
		got[e.OtherPersonID] = e.Type
	}
	s.Equal(map[id.PersonID]models.RelationshipType{
		wife.ID:     models.RelationshipWife,
		daughter.ID: models.RelationshipDaughter,
		father.ID:   models.RelationshipFather,
	}, got)
	s.Len(edges, 3)

	// seen from the daughter, the stored edge is direct
	fromDaughter, err := s.store.ActiveRelationshipsOf(s.ctx, daughter.ID)
	s.Require().NoError(err)
	s.Require().Len(fromDaughter, 1)
	s.Equal(anchor.ID, fromDaughter[0].OtherPersonID)
	s.Equal(models.RelationshipFather, fromDaughter[0].Type)
	s.True(fromDaughter[0].Direct)

	none, err := s.store.ActiveRelationshipsOf(s.ctx, id.NewPersonID())
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestDeactivatedRelationshipDisappears() {
	a := s.savePerson("A", "One", models.GenderMale)
	b := s.savePerson("B", "One", models.GenderFemale)
	rel := &models.Relationship{ID: id.NewRelationshipID(), PersonID: a.ID, RelatedPersonID: b.ID, Type: models.RelationshipWife, IsActive: true}
	s.Require().NoError(s.store.SaveRelationship(s.ctx, rel))

	rel.IsActive = false
	s.Require().NoError(s.store.SaveRelationship(s.ctx, rel))

	edges, err := s.store.ActiveRelationshipsOf(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(edges)
}

func (s *StoreSuite) TestPoolFinders() {
	gdl := s.savePerson("A", "One", models.GenderFemale, func(p *models.Person) {
		p.Addresses = []models.Address{{Country: "MX", State: "JAL", District: "GDL"}}
		p.Religions = []models.Religion{{Religion: "CATH", Category: "LAT"}}
	})
	mty := s.savePerson("B", "Two", models.GenderFemale, func(p *models.Person) {
		p.Addresses = []models.Address{{Country: "US"}, {Country: "MX", State: "NL"}}
		p.Religions = []models.Religion{{Religion: "CATH", Category: "ORT"}}
	})
	s.savePerson("C", "Three", models.GenderFemale, func(p *models.Person) {
		p.Addresses = []models.Address{{Country: "PE"}}
		p.Religions = []models.Religion{{Religion: "JEW"}}
	})

	byCountry, err := s.store.PersonsSharingAddress(s.ctx, models.AddressCriteria{Country: "MX"})
	s.Require().NoError(err)
	s.Equal(models.NewPersonIDSet(gdl.ID, mty.ID), byCountry)

	byState, err := s.store.PersonsSharingAddress(s.ctx, models.AddressCriteria{Country: "MX", State: "NL"})
	s.Require().NoError(err)
	s.Equal(models.NewPersonIDSet(mty.ID), byState)

	noMatch, err := s.store.PersonsSharingAddress(s.ctx, models.AddressCriteria{Country: "MX", State: "NL", District: "X"})
	s.Require().NoError(err)
	s.Empty(noMatch)

	religion, err := s.store.PersonsSharingReligion(s.ctx, models.ReligionCriteria{Religion: "CATH"})
	s.Require().NoError(err)
	s.Equal(models.NewPersonIDSet(gdl.ID, mty.ID), religion)

	category, err := s.store.PersonsSharingReligion(s.ctx, models.ReligionCriteria{Religion: "CATH", Category: "LAT"})
	s.Require().NoError(err)
	s.Equal(models.NewPersonIDSet(gdl.ID), category)
}

const seedYAML = `
persons:
  - key: carlos
    given_name: Carlos
    family_name: Ruiz
    gender: male
    date_of_birth: "1970-05-01"
    addresses: [{country: MX, state: JAL}]
    religions: [{religion: CATH}]
  - key: elena
    given_name: Elena
    family_name: Ruiz
    gender: female
    date_of_birth: "1972-08-15"
  - key: sofia
    given_name: Sofia
    family_name: Ruiz
    gender: female
    date_of_birth: "2001-02-03"
relationships:
  - {person: carlos, related: elena, type: Wife}
  - {person: elena, related: sofia, type: daughter}
  - {person: carlos, related: sofia, type: Daughter, active: false}
`

func (s *StoreSuite) TestSeed() {
	f, err := LoadFixture(strings.NewReader(seedYAML))
	s.Require().NoError(err)

	res, err := Seed(s.ctx, s.store, f)
	s.Require().NoError(err)
	s.Len(res.Persons, 3)
	s.Equal(3, res.Relationships)

	// reseeding is idempotent
	again, err := Seed(s.ctx, s.store, f)
	s.Require().NoError(err)
	s.Equal(res.Persons, again.Persons)

	edges, err := s.store.ActiveRelationshipsOf(s.ctx, res.Persons["elena"])
	s.Require().NoError(err)
	types := map[id.PersonID]models.RelationshipType{}
	for _, e := range edges {
		types[e.OtherPersonID] = e.Type
	}
	s.Equal(models.RelationshipHusband, types[res.Persons["carlos"]])
	s.Equal(models.RelationshipDaughter, types[res.Persons["sofia"]])

	fromCarlos, err := s.store.ActiveRelationshipsOf(s.ctx, res.Persons["carlos"])
	s.Require().NoError(err)
	s.Len(fromCarlos, 1, "inactive daughter edge is ignored")
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(*testing.T) Store {
		return NewInMemoryStore()
	}})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) Store {
		st, err := OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		require.NoError(t, st.EnsureSchema(context.Background()))
		return st
	}})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, config.Store{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &InMemoryStore{}, mem)

	lite, err := Open(ctx, config.Store{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })
	require.NoError(t, lite.EnsureSchema(ctx))
	require.NoError(t, lite.EnsureSchema(ctx), "schema creation is idempotent")

	_, err = Open(ctx, config.Store{Driver: "mongo"})
	require.Error(t, err)

	_, err = Open(ctx, config.Store{Driver: config.DriverPostgres})
	require.Error(t, err, "postgres requires a database URL")
}
