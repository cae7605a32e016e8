package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/platform/tx"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

// SQLiteStore is the single-file backend used by the CLI and local development.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path. ":memory:" is accepted.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One connection: in-memory databases are per connection and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path is the database location the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// EnsureSchema creates the tables if they don't exist.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		account_id TEXT UNIQUE,
		given_name TEXT NOT NULL,
		middle_name TEXT NOT NULL DEFAULT '',
		family_name TEXT NOT NULL,
		gender TEXT NOT NULL DEFAULT 'unknown',
		date_of_birth TEXT NOT NULL,
		date_of_death TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS person_addresses (
		person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		country TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		sub_district TEXT NOT NULL DEFAULT '',
		locality TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_person_addresses_person ON person_addresses(person_id);
	CREATE INDEX IF NOT EXISTS idx_person_addresses_country ON person_addresses(country, state);

	CREATE TABLE IF NOT EXISTS person_religions (
		person_id TEXT NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		religion TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sub_category TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_person_religions_person ON person_religions(person_id);
	CREATE INDEX IF NOT EXISTS idx_person_religions_religion ON person_religions(religion, category);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES persons(id),
		related_person_id TEXT NOT NULL REFERENCES persons(id),
		relationship_type TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_person ON relationships(person_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_person_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SavePerson(ctx context.Context, p *models.Person) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		conn := tx.Conn(ctx, s.db)

		var accountID, dateOfDeath any
		if p.AccountID != nil {
			accountID = p.AccountID.String()
		}
		if p.DateOfDeath != nil {
			dateOfDeath = p.DateOfDeath.Format(dateLayout)
		}
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := conn.ExecContext(ctx, `
			INSERT INTO persons (id, account_id, given_name, middle_name, family_name, gender, date_of_birth, date_of_death, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				account_id = excluded.account_id,
				given_name = excluded.given_name,
				middle_name = excluded.middle_name,
				family_name = excluded.family_name,
				gender = excluded.gender,
				date_of_birth = excluded.date_of_birth,
				date_of_death = excluded.date_of_death
		`,
			p.ID.String(), accountID, p.GivenName, p.MiddleName, p.FamilyName, string(p.Gender),
			p.DateOfBirth.Format(dateLayout), dateOfDeath, createdAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("saving person: %w", sentinel.ErrConflict)
			}
			return fmt.Errorf("saving person: %w", err)
		}

		if _, err := conn.ExecContext(ctx, `DELETE FROM person_addresses WHERE person_id = ?`, p.ID.String()); err != nil {
			return fmt.Errorf("clearing addresses: %w", err)
		}
		for _, a := range p.Addresses {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO person_addresses (person_id, country, state, district, sub_district, locality)
				VALUES (?, ?, ?, ?, ?, ?)
			`, p.ID.String(), a.Country, a.State, a.District, a.SubDistrict, a.Locality); err != nil {
				return fmt.Errorf("saving address: %w", err)
			}
		}

		if _, err := conn.ExecContext(ctx, `DELETE FROM person_religions WHERE person_id = ?`, p.ID.String()); err != nil {
			return fmt.Errorf("clearing religions: %w", err)
		}
		for _, r := range p.Religions {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO person_religions (person_id, religion, category, sub_category)
				VALUES (?, ?, ?, ?)
			`, p.ID.String(), r.Religion, r.Category, r.SubCategory); err != nil {
				return fmt.Errorf("saving religion: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SaveRelationship(ctx context.Context, r *models.Relationship) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO relationships (id, person_id, related_person_id, relationship_type, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			relationship_type = excluded.relationship_type,
			is_active = excluded.is_active
	`, r.ID.String(), r.PersonID.String(), r.RelatedPersonID.String(), string(r.Type), r.IsActive,
		createdAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ActiveRelationshipsOf(ctx context.Context, personID id.PersonID) ([]models.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.person_id, r.related_person_id, r.relationship_type, r.created_at, COALESCE(p.gender, 'unknown')
		FROM relationships r
		LEFT JOIN persons p ON p.id = r.person_id
		WHERE r.is_active = 1 AND (r.person_id = ? OR r.related_person_id = ?)
		ORDER BY r.created_at, r.id
	`, personID.String(), personID.String())
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]*models.Relationship, 0, 16)
	genders := make(map[id.PersonID]models.Gender)
	for rows.Next() {
		var (
			relID, pid, relatedID uuid.UUID
			relType, createdAt    string
			gender                string
		)
		if err := rows.Scan(&relID, &pid, &relatedID, &relType, &createdAt, &gender); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		typ, err := models.ParseRelationshipType(relType)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship %s: %w", relID, err)
		}
		created, _ := time.Parse(timestampLayout, createdAt)
		rels = append(rels, &models.Relationship{
			ID:              id.RelationshipID(relID),
			PersonID:        id.PersonID(pid),
			RelatedPersonID: id.PersonID(relatedID),
			Type:            typ,
			IsActive:        true,
			CreatedAt:       created,
		})
		genders[id.PersonID(pid)] = models.Gender(gender)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return models.EdgesFor(personID, rels, genderLookup(genders)), nil
}

func (s *SQLiteStore) PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error) {
	keys := uniqueIDStrings(ids)
	if len(keys) == 0 {
		return []*models.Person{}, nil
	}
	in, args := inClause(keys)

	found, err := s.queryPersons(ctx, `
		SELECT id, account_id, given_name, middle_name, family_name, gender, date_of_birth, date_of_death, created_at
		FROM persons
		WHERE id IN (`+in+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []*models.Person{}, nil
	}

	if err := s.attachAddresses(ctx, found, in, args); err != nil {
		return nil, err
	}
	if err := s.attachReligions(ctx, found, in, args); err != nil {
		return nil, err
	}
	return orderByRequest(ids, found), nil
}

func (s *SQLiteStore) queryPersons(ctx context.Context, query string, args ...any) (map[id.PersonID]*models.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying persons: %w", err)
	}
	defer rows.Close()

	found := make(map[id.PersonID]*models.Person)
	for rows.Next() {
		var (
			pid                  uuid.UUID
			accountID            uuid.NullUUID
			p                    models.Person
			gender, dob, created string
			dod                  sql.NullString
		)
		if err := rows.Scan(&pid, &accountID, &p.GivenName, &p.MiddleName, &p.FamilyName, &gender, &dob, &dod, &created); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		p.ID = id.PersonID(pid)
		if accountID.Valid {
			acct := id.UserID(accountID.UUID)
			p.AccountID = &acct
		}
		p.Gender = models.Gender(gender)
		if p.DateOfBirth, err = time.Parse(dateLayout, dob); err != nil {
			return nil, fmt.Errorf("parsing date_of_birth of %s: %w", p.ID, err)
		}
		if dod.Valid && dod.String != "" {
			d, err := time.Parse(dateLayout, dod.String)
			if err != nil {
				return nil, fmt.Errorf("parsing date_of_death of %s: %w", p.ID, err)
			}
			p.DateOfDeath = &d
		}
		p.CreatedAt, _ = time.Parse(timestampLayout, created)
		found[p.ID] = &p
	}
	return found, rows.Err()
}

func (s *SQLiteStore) attachAddresses(ctx context.Context, found map[id.PersonID]*models.Person, in string, args []any) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, country, state, district, sub_district, locality
		FROM person_addresses
		WHERE person_id IN (`+in+`)
		ORDER BY rowid
	`, args...)
	if err != nil {
		return fmt.Errorf("querying addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid uuid.UUID
		var a models.Address
		if err := rows.Scan(&pid, &a.Country, &a.State, &a.District, &a.SubDistrict, &a.Locality); err != nil {
			return fmt.Errorf("scanning address: %w", err)
		}
		if p, ok := found[id.PersonID(pid)]; ok {
			p.Addresses = append(p.Addresses, a)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) attachReligions(ctx context.Context, found map[id.PersonID]*models.Person, in string, args []any) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, religion, category, sub_category
		FROM person_religions
		WHERE person_id IN (`+in+`)
		ORDER BY rowid
	`, args...)
	if err != nil {
		return fmt.Errorf("querying religions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid uuid.UUID
		var r models.Religion
		if err := rows.Scan(&pid, &r.Religion, &r.Category, &r.SubCategory); err != nil {
			return fmt.Errorf("scanning religion: %w", err)
		}
		if p, ok := found[id.PersonID(pid)]; ok {
			p.Religions = append(p.Religions, r)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) PersonByAccount(ctx context.Context, userID id.UserID) (*models.Person, error) {
	var pid uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM persons WHERE account_id = ?`, userID.String()).Scan(&pid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("finding person by account: %w", err)
	}
	persons, err := s.PersonsByIDs(ctx, []id.PersonID{id.PersonID(pid)})
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return persons[0], nil
}

func (s *SQLiteStore) PersonsSharingAddress(ctx context.Context, c models.AddressCriteria) (models.PersonIDSet, error) {
	where, args := criteriaWhere(questionMark, []criteriaField{
		{"country", c.Country},
		{"state", c.State},
		{"district", c.District},
		{"sub_district", c.SubDistrict},
		{"locality", c.Locality},
	})
	return s.queryIDSet(ctx, `SELECT DISTINCT person_id FROM person_addresses WHERE `+where, args...)
}

func (s *SQLiteStore) PersonsSharingReligion(ctx context.Context, c models.ReligionCriteria) (models.PersonIDSet, error) {
	where, args := criteriaWhere(questionMark, []criteriaField{
		{"religion", c.Religion},
		{"category", c.Category},
		{"sub_category", c.SubCategory},
	})
	return s.queryIDSet(ctx, `SELECT DISTINCT person_id FROM person_religions WHERE `+where, args...)
}

func (s *SQLiteStore) queryIDSet(ctx context.Context, query string, args ...any) (models.PersonIDSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidate pool: %w", err)
	}
	defer rows.Close()

	out := make(models.PersonIDSet)
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		out.Add(id.PersonID(pid))
	}
	return out, rows.Err()
}

func inClause(keys []string) (string, []any) {
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = k
	}
	return strings.Join(placeholders, ","), args
}
