package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the customer portal core.
var ErrRedisUnavailable = errors.New("credential store redis unavailable")

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Prefix string
	// ScopeID isolates one record per browsing scope; required.
	ScopeID string
	// TTL bounds the record lifetime. Zero means no expiry.
	TTL time.Duration
}

// RedisStore is a Store backed by a shared Redis instance, for portal
// deployments where the credential record outlives one process.
type RedisStore struct {
	redis *redis.Client
	opts  RedisOptions
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client *redis.Client, opts RedisOptions) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	if opts.ScopeID == "" {
		return nil, errors.New("scope id required")
	}
	if opts.Prefix == "" {
		opts.Prefix = "portal"
	}
	if opts.TTL < 0 {
		return nil, errors.New("ttl must not be negative")
	}
	return &RedisStore{redis: client, opts: opts}, nil
}

func (s *RedisStore) key() string {
	return s.opts.Prefix + ":cred:" + s.opts.ScopeID
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return decodeRecord(data), nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Save(ctx context.Context, record *Record) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(), encoded, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
