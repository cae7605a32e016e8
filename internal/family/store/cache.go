package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/circuit"
)

const personKeyPrefix = "kinship:person:"

// CachedPersons is a read-through Redis cache in front of PersonsByIDs.
// Redis failures degrade to the wrapped store; they never fail a read.
// Repeated failures open a breaker so reads stop waiting on Redis.
type CachedPersons struct {
	Store
	client  redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	breaker *circuit.Breaker
}

type CacheOption func(*CachedPersons)

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedPersons) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithCacheBreaker(b *circuit.Breaker) CacheOption {
	return func(c *CachedPersons) {
		if b != nil {
			c.breaker = b
		}
	}
}

func NewCachedPersons(inner Store, client redis.Cmdable, ttl time.Duration, opts ...CacheOption) *CachedPersons {
	c := &CachedPersons{
		Store:   inner,
		client:  client,
		ttl:     ttl,
		logger:  slog.New(slog.DiscardHandler),
		breaker: circuit.New("person-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cachedPerson struct {
	ID          string            `json:"id"`
	AccountID   string            `json:"account_id,omitempty"`
	GivenName   string            `json:"given_name"`
	MiddleName  string            `json:"middle_name,omitempty"`
	FamilyName  string            `json:"family_name"`
	Gender      string            `json:"gender"`
	DateOfBirth string            `json:"date_of_birth"`
	DateOfDeath string            `json:"date_of_death,omitempty"`
	Addresses   []models.Address  `json:"addresses,omitempty"`
	Religions   []models.Religion `json:"religions,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toCached(p *models.Person) cachedPerson {
	c := cachedPerson{
		ID:          p.ID.String(),
		GivenName:   p.GivenName,
		MiddleName:  p.MiddleName,
		FamilyName:  p.FamilyName,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.Format(dateLayout),
		Addresses:   p.Addresses,
		Religions:   p.Religions,
		CreatedAt:   p.CreatedAt,
	}
	if p.AccountID != nil {
		c.AccountID = p.AccountID.String()
	}
	if p.DateOfDeath != nil {
		c.DateOfDeath = p.DateOfDeath.Format(dateLayout)
	}
	return c
}

func (c cachedPerson) toPerson() (*models.Person, error) {
	pid, err := id.ParsePersonID(c.ID)
	if err != nil {
		return nil, err
	}
	dob, err := time.Parse(dateLayout, c.DateOfBirth)
	if err != nil {
		return nil, err
	}
	p := &models.Person{
		ID:          pid,
		GivenName:   c.GivenName,
		MiddleName:  c.MiddleName,
		FamilyName:  c.FamilyName,
		Gender:      models.Gender(c.Gender),
		DateOfBirth: dob,
		Addresses:   c.Addresses,
		Religions:   c.Religions,
		CreatedAt:   c.CreatedAt,
	}
	if c.AccountID != "" {
		acct, err := id.ParseUserID(c.AccountID)
		if err != nil {
			return nil, err
		}
		p.AccountID = &acct
	}
	if c.DateOfDeath != "" {
		dod, err := time.Parse(dateLayout, c.DateOfDeath)
		if err != nil {
			return nil, err
		}
		p.DateOfDeath = &dod
	}
	return p, nil
}

func personKey(pid id.PersonID) string {
	return personKeyPrefix + pid.String()
}

func (c *CachedPersons) PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error) {
	if len(ids) == 0 {
		return []*models.Person{}, nil
	}

	unique := make([]id.PersonID, 0, len(ids))
	seen := make(map[id.PersonID]struct{}, len(ids))
	for _, pid := range ids {
		if _, dup := seen[pid]; !dup {
			seen[pid] = struct{}{}
			unique = append(unique, pid)
		}
	}

	keys := make([]string, len(unique))
	for i, pid := range unique {
		keys[i] = personKey(pid)
	}

	found := make(map[id.PersonID]*models.Person, len(unique))
	missing := unique
	cacheUp := c.breaker.Allow()
	if cacheUp {
		values, err := c.client.MGet(ctx, keys...).Result()
		if err != nil {
			c.logger.WarnContext(ctx, "person cache read failed", "error", err)
			c.recordFailure(ctx)
			cacheUp = false
		} else {
			c.recordSuccess(ctx)
			missing = make([]id.PersonID, 0, len(unique))
			for i, v := range values {
				if p := c.decode(ctx, v); p != nil {
					found[unique[i]] = p
					continue
				}
				missing = append(missing, unique[i])
			}
		}
	}

	if len(missing) > 0 {
		loaded, err := c.Store.PersonsByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		if cacheUp {
			c.fill(ctx, loaded)
		}
		for _, p := range loaded {
			found[p.ID] = p
		}
	}
	return orderByRequest(ids, found), nil
}

func (c *CachedPersons) decode(ctx context.Context, v any) *models.Person {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	var cp cachedPerson
	if err := json.Unmarshal([]byte(s), &cp); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable cached person", "error", err)
		return nil
	}
	p, err := cp.toPerson()
	if err != nil {
		c.logger.WarnContext(ctx, "discarding invalid cached person", "error", err)
		return nil
	}
	return p
}

func (c *CachedPersons) fill(ctx context.Context, persons []*models.Person) {
	if len(persons) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, p := range persons {
		b, err := json.Marshal(toCached(p))
		if err != nil {
			continue
		}
		pipe.Set(ctx, personKey(p.ID), b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "person cache write failed", "error", err)
		c.recordFailure(ctx)
	}
}

func (c *CachedPersons) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "person cache circuit opened, reading through to store",
			"breaker", c.breaker.Name(),
		)
	}
}

func (c *CachedPersons) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "person cache circuit closed", "breaker", c.breaker.Name())
	}
}

// SavePerson writes through and drops the cached copy. Invalidation is
// attempted even while the breaker is open so no stale copy outlives an outage.
func (c *CachedPersons) SavePerson(ctx context.Context, p *models.Person) error {
	if err := c.Store.SavePerson(ctx, p); err != nil {
		return err
	}
	if err := c.client.Del(ctx, personKey(p.ID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "person cache invalidation failed",
			"person_id", p.ID,
			"error", err,
		)
		c.recordFailure(ctx)
	}
	return nil
}
