package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores encoded reference rows by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type localCache struct {
	c *gocache.Cache
}

// NewLocalCache keeps entries in process memory for ttl.
func NewLocalCache(ttl time.Duration) Cache {
	return &localCache{c: gocache.New(ttl, 2*ttl)}
}

func (l *localCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (l *localCache) Set(_ context.Context, key string, value []byte) error {
	l.c.SetDefault(key, value)
	return nil
}

type redisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache shares entries between replicas through Redis.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

type cachedStore struct {
	next  Store
	cache Cache
}

// NewCachedStore serves lookups from cache and falls back to next. Only
// found rows are cached, so a reference created after a failed lookup is
// seen on the next call. Cache failures are logged and bypassed.
func NewCachedStore(next Store, cache Cache) Store {
	return &cachedStore{next: next, cache: cache}
}

func (s *cachedStore) FindPatientByID(ctx context.Context, id int64) (*Patient, error) {
	return readThrough(ctx, s.cache, "ref:patient:"+strconv.FormatInt(id, 10), func() (*Patient, error) {
		return s.next.FindPatientByID(ctx, id)
	})
}

func (s *cachedStore) FindClinicianByRegistrationID(ctx context.Context, registrationID string) (*Clinician, error) {
	return readThrough(ctx, s.cache, "ref:clinician:"+registrationID, func() (*Clinician, error) {
		return s.next.FindClinicianByRegistrationID(ctx, registrationID)
	})
}

func (s *cachedStore) FindMedicationByCode(ctx context.Context, code string) (*Medication, error) {
	return readThrough(ctx, s.cache, "ref:medication:"+code, func() (*Medication, error) {
		return s.next.FindMedicationByCode(ctx, code)
	})
}

func readThrough[T any](ctx context.Context, c Cache, key string, load func() (*T, error)) (*T, error) {
	log := zerolog.Ctx(ctx)

	b, ok, err := c.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("reference cache read failed")
	}
	if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return &v, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable reference cache entry")
	}

	v, err := load()
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(v); err == nil {
		if err := c.Set(ctx, key, b); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("reference cache write failed")
		}
	}
	return v, nil
}
