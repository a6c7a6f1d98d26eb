// Package session binds authenticated requests to user identities through
// opaque tokens held in a pluggable server-side store.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNoSession means the token is unknown, expired or revoked.
var ErrNoSession = errors.New("no such session")

// Store persists session tokens. Tokens are opaque and revocable: deleting a
// token immediately logs the user out everywhere it is presented.
type Store interface {
	Create(ctx context.Context, userID uint) (string, error)
	Get(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

// newToken returns a 128-bit random hex token.
func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed session store with the given TTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Create stores a new session for userID and returns its token.
func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get returns the user id bound to token, or ErrNoSession.
func (s *RedisStore) Get(ctx context.Context, token string) (uint, error) {
	val, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return uint(userID), nil
}

// Delete revokes token. Deleting an unknown token is not an error.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
