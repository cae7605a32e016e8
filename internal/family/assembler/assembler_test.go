package assembler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
)

func TestConnectionPath(t *testing.T) {
	tests := []struct {
		via  models.RelationshipKind
		want string
	}{
		{models.KindSpouse, "Connected to your spouse Elena Ruiz."},
		{models.KindParent, "Connected to your parent Elena Ruiz."},
		{models.KindChild, "Connected to your child Elena Ruiz."},
	}
	for _, tt := range tests {
		t.Run(tt.via.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ConnectionPath(tt.via, "Elena Ruiz"))
		})
	}
}

func TestDiscoveryResult(t *testing.T) {
	daughter := &models.Person{ID: id.NewPersonID(), GivenName: "Sofia", FamilyName: "Ruiz"}
	wife := &models.Person{ID: id.NewPersonID(), GivenName: "Elena", MiddleName: "Maria", FamilyName: "Ruiz"}

	got := DiscoveryResult(daughter, models.RelationshipDaughter, wife, models.KindSpouse, 1)

	assert.Same(t, daughter, got.Person)
	assert.Equal(t, models.RelationshipDaughter, got.InferredType)
	assert.Equal(t, "Daughter", got.Label)
	assert.Equal(t, "Connected to your spouse Elena Maria Ruiz.", got.ConnectionPath)
	assert.Equal(t, 1, got.Proximity)
	assert.Equal(t, 1, got.Priority)
}

func TestMatchCandidate_HighConfidence(t *testing.T) {
	dob := time.Date(1985, time.March, 2, 0, 0, 0, 0, time.UTC)
	q := &models.MatchQuery{FirstName: "Maria", LastName: "Garcia", DateOfBirth: dob}

	tests := []struct {
		name     string
		score    float64
		dob      time.Time
		wantHigh bool
	}{
		{"exact name and date", 100, dob, true},
		{"threshold score", 90, dob, true},
		{"date off by one day", 100, dob.AddDate(0, 0, 1), false},
		{"score below threshold", 89.9, dob, false},
		{"same day different clock", 95, dob.Add(15 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Person{ID: id.NewPersonID(), DateOfBirth: tt.dob}
			got := MatchCandidate(p, tt.score, q, Flags{})
			assert.Equal(t, tt.wantHigh, got.HighConfidence)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.score, got.NameScore)
		})
	}
}

func TestMatchCandidate_CarriesFlags(t *testing.T) {
	p := &models.Person{ID: id.NewPersonID()}
	got := MatchCandidate(p, 70, &models.MatchQuery{}, Flags{IsSelf: true, AlreadyConnected: true})
	assert.True(t, got.IsSelf)
	assert.True(t, got.AlreadyConnected)
	assert.False(t, got.HighConfidence)
}
