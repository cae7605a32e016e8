package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
)

// fixtureNamespace derives stable ids from fixture keys, so reseeding the
// same file updates records instead of duplicating them.
var fixtureNamespace = uuid.MustParse("6f1c3a52-7a0e-4b8e-9d51-3f2b8c0e4a17")

// Fixture is the YAML seed format.
type Fixture struct {
	Persons       []FixturePerson       `yaml:"persons"`
	Relationships []FixtureRelationship `yaml:"relationships"`
}

type FixturePerson struct {
	Key         string            `yaml:"key"`
	ID          string            `yaml:"id"`
	AccountID   string            `yaml:"account_id"`
	GivenName   string            `yaml:"given_name"`
	MiddleName  string            `yaml:"middle_name"`
	FamilyName  string            `yaml:"family_name"`
	Gender      string            `yaml:"gender"`
	DateOfBirth string            `yaml:"date_of_birth"`
	DateOfDeath string            `yaml:"date_of_death"`
	Addresses   []models.Address  `yaml:"addresses"`
	Religions   []models.Religion `yaml:"religions"`
}

type FixtureRelationship struct {
	Person  string `yaml:"person"`
	Related string `yaml:"related"`
	Type    string `yaml:"type"`
	Active  *bool  `yaml:"active"`
}

// SeedResult reports what a seed run wrote, keyed by fixture key.
type SeedResult struct {
	Persons       map[string]id.PersonID
	Relationships int
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Seed writes every person, then every relationship, through w.
func Seed(ctx context.Context, w Writer, f *Fixture) (*SeedResult, error) {
	res := &SeedResult{Persons: make(map[string]id.PersonID, len(f.Persons))}
	now := time.Now().UTC()

	for i, fp := range f.Persons {
		p, err := fp.toPerson(now)
		if err != nil {
			return nil, fmt.Errorf("person %d (%s): %w", i, fp.Key, err)
		}
		if fp.Key != "" {
			if _, dup := res.Persons[fp.Key]; dup {
				return nil, fmt.Errorf("person %d: duplicate key %q", i, fp.Key)
			}
			res.Persons[fp.Key] = p.ID
		}
		if err := w.SavePerson(ctx, p); err != nil {
			return nil, fmt.Errorf("person %d (%s): %w", i, fp.Key, err)
		}
	}

	for i, fr := range f.Relationships {
		personID, ok := res.Persons[fr.Person]
		if !ok {
			return nil, fmt.Errorf("relationship %d: unknown person %q", i, fr.Person)
		}
		relatedID, ok := res.Persons[fr.Related]
		if !ok {
			return nil, fmt.Errorf("relationship %d: unknown related person %q", i, fr.Related)
		}
		typ, err := models.ParseRelationshipType(fr.Type)
		if err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		active := fr.Active == nil || *fr.Active
		rel := &models.Relationship{
			ID:              id.RelationshipID(uuid.NewSHA1(fixtureNamespace, []byte(fr.Person+"|"+fr.Related+"|"+string(typ)))),
			PersonID:        personID,
			RelatedPersonID: relatedID,
			Type:            typ,
			IsActive:        active,
			CreatedAt:       now,
		}
		if err := w.SaveRelationship(ctx, rel); err != nil {
			return nil, fmt.Errorf("relationship %d: %w", i, err)
		}
		res.Relationships++
	}
	return res, nil
}

func (fp FixturePerson) toPerson(now time.Time) (*models.Person, error) {
	var pid id.PersonID
	switch {
	case fp.ID != "":
		parsed, err := id.ParsePersonID(fp.ID)
		if err != nil {
			return nil, err
		}
		pid = parsed
	case fp.Key != "":
		pid = id.PersonID(uuid.NewSHA1(fixtureNamespace, []byte(fp.Key)))
	default:
		pid = id.NewPersonID()
	}

	gender, err := models.ParseGender(fp.Gender)
	if err != nil {
		return nil, err
	}
	dob, err := time.Parse(dateLayout, fp.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth: %w", err)
	}

	p := &models.Person{
		ID:          pid,
		GivenName:   fp.GivenName,
		MiddleName:  fp.MiddleName,
		FamilyName:  fp.FamilyName,
		Gender:      gender,
		DateOfBirth: dob,
		Addresses:   fp.Addresses,
		Religions:   fp.Religions,
		CreatedAt:   now,
	}
	if fp.AccountID != "" {
		acct, err := id.ParseUserID(fp.AccountID)
		if err != nil {
			return nil, err
		}
		p.AccountID = &acct
	}
	if fp.DateOfDeath != "" {
		dod, err := time.Parse(dateLayout, fp.DateOfDeath)
		if err != nil {
			return nil, fmt.Errorf("date_of_death: %w", err)
		}
		p.DateOfDeath = &dod
	}
	return p, nil
}
