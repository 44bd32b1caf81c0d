// Package redis provides the go-redis entity document store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/wastehunter/internal/config"
	"github.com/cory-johannsen/wastehunter/internal/game/character"
	"github.com/cory-johannsen/wastehunter/internal/storage"
)

// Store keeps each entity as a JSON string under <prefix>entity:<id> and
// tracks ids in the set <prefix>entities.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// NewClient builds a go-redis client from cfg and pings it.
//
// Postcondition: Returns a reachable client or a non-nil error.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewStore creates a Store over client with every key prefixed by prefix.
//
// Precondition: client must not be nil.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if client == nil {
		panic("redis: client must not be nil")
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(id string) string {
	return s.prefix + "entity:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "entities"
}

// Load retrieves the entity with the given id.
//
// Postcondition: returns the entity or an error wrapping
// storage.ErrEntityNotFound.
func (s *Store) Load(ctx context.Context, id string) (*character.Entity, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, storage.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	return decode(raw)
}

// Update applies patch under WATCH and writes the document back in a
// MULTI/EXEC transaction.
//
// Postcondition: a concurrent write to the same key yields an error wrapping
// storage.ErrConflict and nothing is written. Nothing is retried.
func (s *Store) Update(ctx context.Context, id string, patch character.Patch) error {
	key := s.key(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return storage.NotFound(id)
		}
		if err != nil {
			return fmt.Errorf("getting entity: %w", err)
		}
		e, err := decode(raw)
		if err != nil {
			return err
		}
		if err := e.Apply(patch); err != nil {
			return fmt.Errorf("applying patch to %q: %w", id, err)
		}
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encoding entity: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(data), 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("updating %q: %w", id, storage.ErrConflict)
	}
	if err != nil {
		if errors.Is(err, storage.ErrEntityNotFound) {
			return err
		}
		return fmt.Errorf("updating entity: %w", err)
	}
	return nil
}

// Create stores e unless its id is already taken.
//
// Precondition: e passes Validate.
// Postcondition: returns an error wrapping storage.ErrEntityExists on a
// duplicate id.
func (s *Store) Create(ctx context.Context, e *character.Entity) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validating entity: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding entity: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(e.ID), string(data), 0).Result()
	if err != nil {
		return fmt.Errorf("storing entity: %w", err)
	}
	if !ok {
		return storage.Exists(e.ID)
	}
	if err := s.client.SAdd(ctx, s.indexKey(), e.ID).Err(); err != nil {
		return fmt.Errorf("indexing entity: %w", err)
	}
	return nil
}

// List returns every indexed entity ordered by id. Index entries whose
// document is gone are skipped.
func (s *Store) List(ctx context.Context) ([]*character.Entity, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing entity ids: %w", err)
	}
	out := make([]*character.Entity, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sort.Strings(ids)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("getting entities: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		e, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decode(raw string) (*character.Entity, error) {
	var e character.Entity
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}
	return &e, nil
}

var _ storage.Store = (*Store)(nil)
