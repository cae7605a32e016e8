package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/lib/pq"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore is the production backend.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects through the pgx stdlib driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database URL is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables if they don't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id UUID PRIMARY KEY,
		account_id UUID UNIQUE,
		given_name TEXT NOT NULL,
		middle_name TEXT NOT NULL DEFAULT '',
		family_name TEXT NOT NULL,
		gender TEXT NOT NULL DEFAULT 'unknown',
		date_of_birth DATE NOT NULL,
		date_of_death DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS person_addresses (
		id BIGSERIAL PRIMARY KEY,
		person_id UUID NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		country TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		sub_district TEXT NOT NULL DEFAULT '',
		locality TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_person_addresses_person ON person_addresses(person_id);
	CREATE INDEX IF NOT EXISTS idx_person_addresses_country ON person_addresses(country, state);

	CREATE TABLE IF NOT EXISTS person_religions (
		id BIGSERIAL PRIMARY KEY,
		person_id UUID NOT NULL REFERENCES persons(id) ON DELETE CASCADE,
		religion TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		sub_category TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_person_religions_person ON person_religions(person_id);
	CREATE INDEX IF NOT EXISTS idx_person_religions_religion ON person_religions(religion, category);

	CREATE TABLE IF NOT EXISTS relationships (
		id UUID PRIMARY KEY,
		person_id UUID NOT NULL REFERENCES persons(id),
		related_person_id UUID NOT NULL REFERENCES persons(id),
		relationship_type TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_person ON relationships(person_id) WHERE is_active;
	CREATE INDEX IF NOT EXISTS idx_relationships_related ON relationships(related_person_id) WHERE is_active;
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SavePerson(ctx context.Context, p *models.Person) error {
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		conn := tx.Conn(ctx, s.db)

		var accountID any
		if p.AccountID != nil {
			accountID = p.AccountID.String()
		}
		var dateOfDeath any
		if p.DateOfDeath != nil {
			dateOfDeath = models.CalendarDate(*p.DateOfDeath)
		}
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := conn.ExecContext(ctx, `
			INSERT INTO persons (id, account_id, given_name, middle_name, family_name, gender, date_of_birth, date_of_death, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				account_id = EXCLUDED.account_id,
				given_name = EXCLUDED.given_name,
				middle_name = EXCLUDED.middle_name,
				family_name = EXCLUDED.family_name,
				gender = EXCLUDED.gender,
				date_of_birth = EXCLUDED.date_of_birth,
				date_of_death = EXCLUDED.date_of_death
		`,
			p.ID.String(), accountID, p.GivenName, p.MiddleName, p.FamilyName, string(p.Gender),
			models.CalendarDate(p.DateOfBirth), dateOfDeath, createdAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("save person: %w", sentinel.ErrConflict)
			}
			return fmt.Errorf("save person: %w", err)
		}

		if _, err := conn.ExecContext(ctx, `DELETE FROM person_addresses WHERE person_id = $1`, p.ID.String()); err != nil {
			return fmt.Errorf("clear addresses: %w", err)
		}
		for _, a := range p.Addresses {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO person_addresses (person_id, country, state, district, sub_district, locality)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID.String(), a.Country, a.State, a.District, a.SubDistrict, a.Locality); err != nil {
				return fmt.Errorf("save address: %w", err)
			}
		}

		if _, err := conn.ExecContext(ctx, `DELETE FROM person_religions WHERE person_id = $1`, p.ID.String()); err != nil {
			return fmt.Errorf("clear religions: %w", err)
		}
		for _, r := range p.Religions {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO person_religions (person_id, religion, category, sub_category)
				VALUES ($1, $2, $3, $4)
			`, p.ID.String(), r.Religion, r.Category, r.SubCategory); err != nil {
				return fmt.Errorf("save religion: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) SaveRelationship(ctx context.Context, r *models.Relationship) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO relationships (id, person_id, related_person_id, relationship_type, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			relationship_type = EXCLUDED.relationship_type,
			is_active = EXCLUDED.is_active
	`, r.ID.String(), r.PersonID.String(), r.RelatedPersonID.String(), string(r.Type), r.IsActive, createdAt)
	if err != nil {
		return fmt.Errorf("save relationship: %w", err)
	}
	return nil
}

func (s *PostgresStore) ActiveRelationshipsOf(ctx context.Context, personID id.PersonID) ([]models.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.person_id, r.related_person_id, r.relationship_type, r.created_at, COALESCE(p.gender, 'unknown')
		FROM relationships r
		LEFT JOIN persons p ON p.id = r.person_id
		WHERE r.is_active AND (r.person_id = $1 OR r.related_person_id = $1)
		ORDER BY r.created_at, r.id
	`, personID.String())
	if err != nil {
		return nil, fmt.Errorf("find active relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]*models.Relationship, 0, 16)
	genders := make(map[id.PersonID]models.Gender)
	for rows.Next() {
		var (
			relID, pid, relatedID uuid.UUID
			relType, gender       string
			createdAt             time.Time
		)
		if err := rows.Scan(&relID, &pid, &relatedID, &relType, &createdAt, &gender); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		typ, err := models.ParseRelationshipType(relType)
		if err != nil {
			return nil, fmt.Errorf("scan relationship %s: %w", relID, err)
		}
		rels = append(rels, &models.Relationship{
			ID:              id.RelationshipID(relID),
			PersonID:        id.PersonID(pid),
			RelatedPersonID: id.PersonID(relatedID),
			Type:            typ,
			IsActive:        true,
			CreatedAt:       createdAt,
		})
		genders[id.PersonID(pid)] = models.Gender(gender)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return models.EdgesFor(personID, rels, genderLookup(genders)), nil
}

func (s *PostgresStore) PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error) {
	keys := uniqueIDStrings(ids)
	if len(keys) == 0 {
		return []*models.Person{}, nil
	}
	arr := pq.Array(keys)

	found, err := s.queryPersons(ctx, `
		SELECT id, account_id, given_name, middle_name, family_name, gender, date_of_birth, date_of_death, created_at
		FROM persons
		WHERE id = ANY($1::uuid[])
	`, arr)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []*models.Person{}, nil
	}

	if err := s.attachAddresses(ctx, found, arr); err != nil {
		return nil, err
	}
	if err := s.attachReligions(ctx, found, arr); err != nil {
		return nil, err
	}
	return orderByRequest(ids, found), nil
}

func (s *PostgresStore) queryPersons(ctx context.Context, query string, args ...any) (map[id.PersonID]*models.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find persons: %w", err)
	}
	defer rows.Close()

	found := make(map[id.PersonID]*models.Person)
	for rows.Next() {
		var (
			pid       uuid.UUID
			accountID uuid.NullUUID
			p         models.Person
			gender    string
			dod       sql.NullTime
		)
		if err := rows.Scan(&pid, &accountID, &p.GivenName, &p.MiddleName, &p.FamilyName, &gender,
			&p.DateOfBirth, &dod, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.ID = id.PersonID(pid)
		if accountID.Valid {
			acct := id.UserID(accountID.UUID)
			p.AccountID = &acct
		}
		p.Gender = models.Gender(gender)
		p.DateOfBirth = models.CalendarDate(p.DateOfBirth)
		if dod.Valid {
			d := models.CalendarDate(dod.Time)
			p.DateOfDeath = &d
		}
		found[p.ID] = &p
	}
	return found, rows.Err()
}

func (s *PostgresStore) attachAddresses(ctx context.Context, found map[id.PersonID]*models.Person, ids any) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, country, state, district, sub_district, locality
		FROM person_addresses
		WHERE person_id = ANY($1::uuid[])
		ORDER BY id
	`, ids)
	if err != nil {
		return fmt.Errorf("find addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid uuid.UUID
		var a models.Address
		if err := rows.Scan(&pid, &a.Country, &a.State, &a.District, &a.SubDistrict, &a.Locality); err != nil {
			return fmt.Errorf("scan address: %w", err)
		}
		if p, ok := found[id.PersonID(pid)]; ok {
			p.Addresses = append(p.Addresses, a)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) attachReligions(ctx context.Context, found map[id.PersonID]*models.Person, ids any) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, religion, category, sub_category
		FROM person_religions
		WHERE person_id = ANY($1::uuid[])
		ORDER BY id
	`, ids)
	if err != nil {
		return fmt.Errorf("find religions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid uuid.UUID
		var r models.Religion
		if err := rows.Scan(&pid, &r.Religion, &r.Category, &r.SubCategory); err != nil {
			return fmt.Errorf("scan religion: %w", err)
		}
		if p, ok := found[id.PersonID(pid)]; ok {
			p.Religions = append(p.Religions, r)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) PersonByAccount(ctx context.Context, userID id.UserID) (*models.Person, error) {
	var pid uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT id FROM persons WHERE account_id = $1`, userID.String()).Scan(&pid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person by account: %w", err)
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

func (s *PostgresStore) PersonsSharingAddress(ctx context.Context, c models.AddressCriteria) (models.PersonIDSet, error) {
	where, args := criteriaWhere(dollar, []criteriaField{
		{"country", c.Country},
		{"state", c.State},
		{"district", c.District},
		{"sub_district", c.SubDistrict},
		{"locality", c.Locality},
	})
	return s.queryIDSet(ctx, `SELECT DISTINCT person_id FROM person_addresses WHERE `+where, args...)
}

func (s *PostgresStore) PersonsSharingReligion(ctx context.Context, c models.ReligionCriteria) (models.PersonIDSet, error) {
	where, args := criteriaWhere(dollar, []criteriaField{
		{"religion", c.Religion},
		{"category", c.Category},
		{"sub_category", c.SubCategory},
	})
	return s.queryIDSet(ctx, `SELECT DISTINCT person_id FROM person_religions WHERE `+where, args...)
}

func (s *PostgresStore) queryIDSet(ctx context.Context, query string, args ...any) (models.PersonIDSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find candidate pool: %w", err)
	}
	defer rows.Close()

	out := make(models.PersonIDSet)
	for rows.Next() {
		var pid uuid.UUID
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out.Add(id.PersonID(pid))
	}
	return out, rows.Err()
}
