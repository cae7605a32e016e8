package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

func validQuery() MatchQuery {
	return MatchQuery{
		FirstName:   "Maria",
		LastName:    "Garcia",
		Gender:      GenderFemale,
		DateOfBirth: time.Date(1985, 3, 2, 0, 0, 0, 0, time.UTC),
		Address:     AddressCriteria{Country: "MX", State: "JAL"},
		Religion:    ReligionCriteria{Religion: "CATH"},
		RequesterID: id.UserID(uuid.New()),
	}
}

func TestMatchQueryValidate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("criteria are trimmed and blank optionals cleared", func(t *testing.T) {
		q := validQuery()
		q.Address = AddressCriteria{Country: " MX ", State: "JAL\n", District: "   "}
		q.Religion = ReligionCriteria{Religion: " CATH", Category: " "}

		require.NoError(t, q.Validate(now))
		assert.Equal(t, AddressCriteria{Country: "MX", State: "JAL"}, q.Address)
		assert.Equal(t, ReligionCriteria{Religion: "CATH"}, q.Religion)
		assert.True(t, q.Address.Matches(Address{Country: "MX", State: "JAL", District: "GDL"}))
	})

	t.Run("valid query", func(t *testing.T) {
		q := validQuery()
		require.NoError(t, q.Validate(now))
		assert.Equal(t, ExclusionDrop, q.ExclusionModeOrDefault())
	})

	tests := []struct {
		name    string
		mutate  func(q *MatchQuery)
		wantMsg string
	}{
		{"missing first name", func(q *MatchQuery) { q.FirstName = "" }, "first_name is required"},
		{"blank last name", func(q *MatchQuery) { q.LastName = "   " }, "last_name is required"},
		{"missing gender", func(q *MatchQuery) { q.Gender = "" }, "gender is required"},
		{"bad gender", func(q *MatchQuery) { q.Gender = "other" }, "gender must be one of [male female unknown]"},
		{"missing date of birth", func(q *MatchQuery) { q.DateOfBirth = time.Time{} }, "date_of_birth is required"},
		{"future date of birth", func(q *MatchQuery) { q.DateOfBirth = now.AddDate(0, 0, 1) }, "date_of_birth must not be in the future"},
		{"missing country", func(q *MatchQuery) { q.Address.Country = "" }, "address.country is required"},
		{"missing religion", func(q *MatchQuery) { q.Religion.Religion = "" }, "religion.religion is required"},
		{"blank country", func(q *MatchQuery) { q.Address.Country = " \t" }, "address.country is required"},
		{"blank religion", func(q *MatchQuery) { q.Religion.Religion = "  " }, "religion.religion is required"},
		{"missing requester", func(q *MatchQuery) { q.RequesterID = id.UserID{} }, "requester is required"},
		{"bad exclusion mode", func(q *MatchQuery) { q.Mode = "hide" }, "exclusion_mode must be one of [drop flag]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)
			err := q.Validate(now)
			require.ErrorIs(t, err, dErrors.New(dErrors.CodeValidation, tt.wantMsg))
		})
	}

	t.Run("birth later on the same calendar day is not future", func(t *testing.T) {
		q := validQuery()
		q.DateOfBirth = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, q.Validate(now))
	})
}

func TestCriteriaMatches(t *testing.T) {
	addr := Address{Country: "MX", State: "JAL", District: "GDL"}

	assert.True(t, AddressCriteria{Country: "MX"}.Matches(addr))
	assert.True(t, AddressCriteria{Country: "MX", State: "JAL", District: "GDL"}.Matches(addr))
	assert.False(t, AddressCriteria{Country: "MX", State: "NL"}.Matches(addr))
	assert.False(t, AddressCriteria{Country: "MX", Locality: "X"}.Matches(addr), "criteria field set but record field empty")

	assert.True(t, AddressCriteria{Country: "MX", State: "NL"}.AnyAddress([]Address{{Country: "US"}, {Country: "MX", State: "NL"}}))

	rel := Religion{Religion: "CATH", Category: "LAT"}
	assert.True(t, ReligionCriteria{Religion: "CATH"}.Matches(rel))
	assert.False(t, ReligionCriteria{Religion: "CATH", Category: "ORT"}.Matches(rel))
}

func TestPersonHelpers(t *testing.T) {
	user := id.UserID(uuid.New())
	p := &Person{GivenName: "Maria", MiddleName: "", FamilyName: "Garcia", AccountID: &user}

	assert.Equal(t, "Maria Garcia", p.FullName())
	assert.True(t, p.IsLinkedTo(user))
	assert.False(t, p.IsLinkedTo(id.UserID(uuid.New())))

	a := time.Date(1985, 3, 2, 23, 30, 0, 0, time.UTC)
	b := time.Date(1985, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameCalendarDate(a, b))
	assert.False(t, SameCalendarDate(a, b.AddDate(0, 0, 1)))
	assert.Equal(t, b, CalendarDate(a))
}
