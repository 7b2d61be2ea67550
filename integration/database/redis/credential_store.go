package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/memberportal/core/session"
)

// CredentialStore keeps session records in Redis.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// CredentialOption configures a CredentialStore.
type CredentialOption func(*CredentialStore)

// WithKeyPrefix namespaces every key. Default "portal".
func WithKeyPrefix(prefix string) CredentialOption {
	return func(s *CredentialStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL sets the sliding lifetime of a record. Zero disables expiry.
func WithTTL(ttl time.Duration) CredentialOption {
	return func(s *CredentialStore) {
		s.ttl = ttl
	}
}

// NewCredentialStore creates a store over client.
func NewCredentialStore(client redis.UniversalClient, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		client: client,
		prefix: "portal",
		ttl:    7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCredentialStoreFromConfig applies cfg's prefix and TTL.
func NewCredentialStoreFromConfig(client redis.UniversalClient, cfg Config) *CredentialStore {
	return NewCredentialStore(client, WithKeyPrefix(cfg.KeyPrefix), WithTTL(cfg.SessionTTL))
}

func (s *CredentialStore) key(id string) string {
	return s.prefix + ":session:" + id
}

func (s *CredentialStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

// Load returns the record for id and extends its TTL; nil, nil when absent.
func (s *CredentialStore) Load(ctx context.Context, id string) (*session.Record, error) {
	var data []byte
	var err error
	if s.ttl > 0 {
		data, err = s.client.GetEx(ctx, s.key(id), s.ttl).Bytes()
	} else {
		data, err = s.client.Get(ctx, s.key(id)).Bytes()
	}
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}

	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(session.ErrMalformedRecord, err)
	}
	return &rec, nil
}

// Save stores rec under id and indexes id under the record's user.
func (s *CredentialStore) Save(ctx context.Context, id string, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(id), data, s.ttl)
		if rec.User != nil && rec.User.ID != "" {
			uk := s.userKey(rec.User.ID)
			pipe.SAdd(ctx, uk, id)
			if s.ttl > 0 {
				pipe.Expire(ctx, uk, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// Remove deletes the record for id. Removing an unknown id is not an error.
func (s *CredentialStore) Remove(ctx context.Context, id string) error {
	rec, err := s.Load(ctx, id)
	if err != nil && !errors.Is(err, session.ErrMalformedRecord) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		if rec != nil && rec.User != nil {
			pipe.SRem(ctx, s.userKey(rec.User.ID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// RemoveUser deletes every session of userID and returns how many existed.
func (s *CredentialStore) RemoveUser(ctx context.Context, userID string) (int, error) {
	uk := s.userKey(userID)
	ids, err := s.client.SMembers(ctx, uk).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}

	var deleted *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, keys...)
		pipe.Del(ctx, uk)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return int(deleted.Val()), nil
}

// UserSessions returns the session ids indexed under userID.
func (s *CredentialStore) UserSessions(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return ids, nil
}
