package matching

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kinship/internal/family/matching/mocks"
	"kinship/internal/family/metrics"
	"kinship/internal/family/models"
	"kinship/internal/family/store"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/requestcontext"
)

var (
	testNow  = time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	mariaDOB = time.Date(1985, time.March, 2, 0, 0, 0, 0, time.UTC)
)

func mariaQuery(requester id.UserID) *models.MatchQuery {
	return &models.MatchQuery{
		FirstName:   "Maria",
		LastName:    "Garcia",
		Gender:      models.GenderFemale,
		DateOfBirth: mariaDOB,
		Address:     models.AddressCriteria{Country: "MX", State: "JAL"},
		Religion:    models.ReligionCriteria{Religion: "CATH"},
		RequesterID: requester,
	}
}

// MatchingSuite exercises the engine against the in-memory store.
type MatchingSuite struct {
	suite.Suite
	ctx       context.Context
	store     *store.InMemoryStore
	metrics   *metrics.Metrics
	service   *Service
	requester id.UserID
}

func TestMatchingSuite(t *testing.T) {
	suite.Run(t, new(MatchingSuite))
}

func (s *MatchingSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), testNow)
	s.store = store.NewInMemoryStore()
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.service = New(s.store, WithMetrics(s.metrics))
	s.requester = id.UserID(uuid.New())
}

type personOpt func(*models.Person)

func withDOB(t time.Time) personOpt { return func(p *models.Person) { p.DateOfBirth = t } }

func withGender(g models.Gender) personOpt { return func(p *models.Person) { p.Gender = g } }

func withAddress(a models.Address) personOpt {
	return func(p *models.Person) { p.Addresses = []models.Address{a} }
}

func withReligion(r models.Religion) personOpt {
	return func(p *models.Person) { p.Religions = []models.Religion{r} }
}

func withAccount(u id.UserID) personOpt { return func(p *models.Person) { p.AccountID = &u } }

// person stores someone living in Jalisco, Catholic, female, born on mariaDOB
// unless overridden.
func (s *MatchingSuite) person(given, family string, opts ...personOpt) *models.Person {
	p := &models.Person{
		ID:          id.NewPersonID(),
		GivenName:   given,
		FamilyName:  family,
		Gender:      models.GenderFemale,
		DateOfBirth: mariaDOB,
		Addresses:   []models.Address{{Country: "MX", State: "JAL", District: "GDL"}},
		Religions:   []models.Religion{{Religion: "CATH", Category: "LAT"}},
	}
	for _, opt := range opts {
		opt(p)
	}
	s.Require().NoError(s.store.SavePerson(s.ctx, p))
	return p
}

func (s *MatchingSuite) relate(a, b *models.Person, typ models.RelationshipType) {
	s.Require().NoError(s.store.SaveRelationship(s.ctx, &models.Relationship{
		ID: id.NewRelationshipID(), PersonID: a.ID, RelatedPersonID: b.ID, Type: typ, IsActive: true,
	}))
}

func (s *MatchingSuite) find(q *models.MatchQuery) []models.MatchCandidate {
	got, err := s.service.FindDuplicates(s.ctx, q)
	s.Require().NoError(err)
	return got
}

func byPerson(candidates []models.MatchCandidate) map[id.PersonID]models.MatchCandidate {
	out := make(map[id.PersonID]models.MatchCandidate, len(candidates))
	for _, c := range candidates {
		out[c.Person.ID] = c
	}
	return out
}

func (s *MatchingSuite) TestMariaGarcia() {
	exact := s.person("Maria", "Garcia")
	dayOff := s.person("Maria", "Garcia", withDOB(mariaDOB.AddDate(0, 0, 1)))

	got := s.find(mariaQuery(s.requester))

	s.Require().Len(got, 2)
	found := byPerson(got)
	s.InDelta(100, found[exact.ID].Score, 1e-9)
	s.True(found[exact.ID].HighConfidence)
	s.InDelta(100, found[dayOff.ID].Score, 1e-9)
	s.False(found[dayOff.ID].HighConfidence, "one day off is never high confidence")
	s.InDelta(1, promtest.ToFloat64(s.metrics.HighConfidenceMatches), 0)
}

func (s *MatchingSuite) TestPoolsAreIntersected() {
	both := s.person("Maria", "Garcia")
	s.person("Maria", "Garcia", withAddress(models.Address{Country: "US"}))
	s.person("Maria", "Garcia", withReligion(models.Religion{Religion: "JEW"}))
	s.person("Maria", "Garcia", withAddress(models.Address{Country: "MX", State: "NL"}))

	got := s.find(mariaQuery(s.requester))

	s.Require().Len(got, 1)
	s.Equal(both.ID, got[0].Person.ID)
}

func (s *MatchingSuite) TestGenderMustMatch() {
	s.person("Maria", "Garcia", withGender(models.GenderMale))
	s.person("Maria", "Garcia", withGender(models.GenderUnknown))

	s.Empty(s.find(mariaQuery(s.requester)))
}

func (s *MatchingSuite) TestThresholdAndOrdering() {
	mario := s.person("Mario", "Garcia")
	maria := s.person("Maria", "Garcia")
	s.person("Wei", "Chen")

	got := s.find(mariaQuery(s.requester))

	s.Require().Len(got, 2, "dissimilar names fall below the acceptance threshold")
	s.Equal(maria.ID, got[0].Person.ID)
	s.Equal(mario.ID, got[1].Person.ID)
	s.InDelta(92, got[1].Score, 1e-9)
	s.True(got[1].HighConfidence)
	for _, c := range got {
		s.GreaterOrEqual(c.Score, AcceptanceThreshold)
	}
}

func (s *MatchingSuite) TestScoreBoundariesAreInclusive() {
	s.Run("exactly the acceptance threshold is kept", func() {
		stored := s.person("Abbbbb", "Abcdefghx")
		q := mariaQuery(s.requester)
		q.FirstName, q.LastName = "Aaaaaa", "Abcdefghi"

		got := s.find(q)

		s.Require().Len(got, 1)
		s.Equal(stored.ID, got[0].Person.ID)
		s.Equal(AcceptanceThreshold, got[0].Score)
		s.False(got[0].HighConfidence)
	})

	s.Run("exactly the high-confidence score blocks", func() {
		stored := s.person("Abbbbbaaaaaaaaaaaaaaaaaaaaaa", "Abcdefghijklmnopqrstx")
		q := mariaQuery(s.requester)
		q.FirstName, q.LastName = "Aaaaaaaaaaaaaaaaaaaaaaaaaaaa", "Abcdefghijklmnopqrstu"

		got := byPerson(s.find(q))

		s.Require().Contains(got, stored.ID)
		s.Equal(90.0, got[stored.ID].Score)
		s.True(got[stored.ID].HighConfidence)
	})
}

func (s *MatchingSuite) TestCriteriaWhitespaceDoesNotHideDuplicates() {
	maria := s.person("Maria", "Garcia")

	q := mariaQuery(s.requester)
	q.Address = models.AddressCriteria{Country: " MX ", State: "JAL", District: "  "}
	q.Religion = models.ReligionCriteria{Religion: "CATH ", Category: "\t"}

	got := s.find(q)

	s.Require().Len(got, 1)
	s.Equal(maria.ID, got[0].Person.ID)
	s.True(got[0].HighConfidence)
}

func (s *MatchingSuite) TestTruncatesToMaxResults() {
	for range MaxResults + 3 {
		s.person("Maria", "Garcia")
	}

	got := s.find(mariaQuery(s.requester))

	s.Len(got, MaxResults)
}

func (s *MatchingSuite) TestRequesterExclusion() {
	self := s.person("Maria", "Garcia", withAccount(s.requester))
	sister := s.person("Maria", "Garcia", withDOB(mariaDOB.AddDate(-2, 0, 0)))
	mother := s.person("Mariana", "Garcia", withDOB(mariaDOB.AddDate(-25, 0, 0)))
	stranger := s.person("Maria", "Garcia", withDOB(mariaDOB.AddDate(5, 0, 0)))
	s.relate(self, mother, models.RelationshipMother)
	s.relate(sister, self, models.RelationshipSpouse)

	s.Run("drop is the default", func() {
		got := s.find(mariaQuery(s.requester))
		s.Require().Len(got, 1)
		s.Equal(stranger.ID, got[0].Person.ID)
	})

	s.Run("flag keeps excluded candidates", func() {
		q := mariaQuery(s.requester)
		q.Mode = models.ExclusionFlag
		got := byPerson(s.find(q))

		s.Require().Len(got, 4)
		s.True(got[self.ID].IsSelf)
		s.False(got[self.ID].AlreadyConnected)
		s.True(got[sister.ID].AlreadyConnected)
		s.True(got[mother.ID].AlreadyConnected)
		s.False(got[stranger.ID].IsSelf)
		s.False(got[stranger.ID].AlreadyConnected)
	})

	s.Run("requester without a person excludes nothing", func() {
		got := s.find(mariaQuery(id.UserID(uuid.New())))
		s.Len(got, 4)
	})
}

func (s *MatchingSuite) TestValidation() {
	tests := []struct {
		name   string
		mutate func(q *models.MatchQuery)
		want   string
	}{
		{"missing first name", func(q *models.MatchQuery) { q.FirstName = "" }, "first_name is required"},
		{"blank last name", func(q *models.MatchQuery) { q.LastName = "   " }, "last_name is required"},
		{"missing country", func(q *models.MatchQuery) { q.Address.Country = "" }, "address.country is required"},
		{"missing religion", func(q *models.MatchQuery) { q.Religion.Religion = "" }, "religion.religion is required"},
		{"future birth", func(q *models.MatchQuery) { q.DateOfBirth = testNow.AddDate(0, 0, 1) }, "date_of_birth must not be in the future"},
		{"bad gender", func(q *models.MatchQuery) { q.Gender = "other" }, "gender must be one of [male female unknown]"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			q := mariaQuery(s.requester)
			tt.mutate(q)
			_, err := s.service.FindDuplicates(s.ctx, q)
			s.Require().ErrorIs(err, dErrors.New(dErrors.CodeValidation, tt.want))
		})
	}
}

// StoreFailureSuite checks fail-fast and error surfacing with a strict mock:
// any call without an expectation fails the test.
type StoreFailureSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	service *Service
	ctx     context.Context
}

func TestStoreFailureSuite(t *testing.T) {
	suite.Run(t, new(StoreFailureSuite))
}

func (s *StoreFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.service = New(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), testNow)
}

func (s *StoreFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *StoreFailureSuite) TestInvalidQueryTouchesNoStore() {
	q := mariaQuery(id.UserID(uuid.New()))
	q.Address.Country = ""

	_, err := s.service.FindDuplicates(s.ctx, q)

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *StoreFailureSuite) TestMissingRequesterRejected() {
	_, err := s.service.FindDuplicates(s.ctx, mariaQuery(id.UserID{}))

	s.ErrorIs(err, dErrors.New(dErrors.CodeValidation, "requester is required"))
}

func (s *StoreFailureSuite) TestPoolFailuresSurfaceAsInternal() {
	q := mariaQuery(id.UserID(uuid.New()))
	dbDown := errors.New("db down")

	s.Run("address pool", func() {
		s.store.EXPECT().PersonsSharingAddress(gomock.Any(), q.Address).Return(nil, dbDown)

		got, err := s.service.FindDuplicates(s.ctx, q)
		s.Nil(got)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, dbDown)
	})

	s.Run("religion pool", func() {
		s.store.EXPECT().PersonsSharingAddress(gomock.Any(), q.Address).Return(models.NewPersonIDSet(id.NewPersonID()), nil)
		s.store.EXPECT().PersonsSharingReligion(gomock.Any(), q.Religion).Return(nil, dbDown)

		got, err := s.service.FindDuplicates(s.ctx, q)
		s.Nil(got)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *StoreFailureSuite) TestEmptyIntersectionStopsEarly() {
	q := mariaQuery(id.UserID(uuid.New()))
	s.store.EXPECT().PersonsSharingAddress(gomock.Any(), q.Address).Return(models.NewPersonIDSet(id.NewPersonID()), nil)
	s.store.EXPECT().PersonsSharingReligion(gomock.Any(), q.Religion).Return(models.NewPersonIDSet(id.NewPersonID()), nil)

	got, err := s.service.FindDuplicates(s.ctx, q)

	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *StoreFailureSuite) TestRequesterLookupFailure() {
	q := mariaQuery(id.UserID(uuid.New()))
	shared := id.NewPersonID()
	s.store.EXPECT().PersonsSharingAddress(gomock.Any(), q.Address).Return(models.NewPersonIDSet(shared), nil)
	s.store.EXPECT().PersonsSharingReligion(gomock.Any(), q.Religion).Return(models.NewPersonIDSet(shared), nil)
	s.store.EXPECT().PersonsByIDs(gomock.Any(), []id.PersonID{shared}).Return([]*models.Person{{ID: shared}}, nil)
	s.store.EXPECT().PersonByAccount(gomock.Any(), q.RequesterID).Return(nil, fmt.Errorf("lookup: %w", errors.New("timeout")))

	_, err := s.service.FindDuplicates(s.ctx, q)

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
