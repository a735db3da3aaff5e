// Package secrets resolves shared secrets by reference id so that secret
// values never appear in transmitted configuration.
// This is part of the platform layer and contains no business logic.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"salesrep_sync/platform/apperr"

	"github.com/redis/go-redis/v9"
)

// Store resolves a secret value by its reference id.
type Store interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// EnvStore reads secrets from environment variables named SECRET_<REF>.
type EnvStore struct {
	lookup func(string) (string, bool)
}

// NewEnvStore creates an environment-backed store.
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// EnvKey returns the variable name used for ref.
func EnvKey(ref string) string {
	var b strings.Builder
	b.WriteString("SECRET_")
	for _, r := range strings.ToUpper(strings.TrimSpace(ref)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Resolve implements Store.
func (s *EnvStore) Resolve(_ context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", apperr.Configuration("secret reference is empty")
	}
	val, ok := s.lookup(EnvKey(ref))
	if !ok || val == "" {
		return "", apperr.Configuration(fmt.Sprintf("secret %q not found", ref))
	}
	return val, nil
}

// RedisStore reads secrets from a redis hash keyed by reference id.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore creates a redis-backed store reading fields of hash key.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "secrets"
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Resolve implements Store.
func (s *RedisStore) Resolve(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", apperr.Configuration("secret reference is empty")
	}
	val, err := s.rdb.HGet(ctx, s.key, ref).Result()
	if errors.Is(err, redis.Nil) || (err == nil && val == "") {
		return "", apperr.Configuration(fmt.Sprintf("secret %q not found", ref))
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindTransport, "secret store unavailable", err)
	}
	return val, nil
}

// Chain tries each store in order and returns the first resolved secret.
type Chain []Store

// Resolve implements Store.
func (c Chain) Resolve(ctx context.Context, ref string) (string, error) {
	var lastErr error = apperr.Configuration(fmt.Sprintf("secret %q not found", ref))
	for _, store := range c {
		if store == nil {
			continue
		}
		val, err := store.Resolve(ctx, ref)
		if err == nil {
			return val, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// Static is a fixed map of secrets, mostly useful in tests and local runs.
type Static map[string]string

// Resolve implements Store.
func (s Static) Resolve(_ context.Context, ref string) (string, error) {
	if val, ok := s[ref]; ok && val != "" {
		return val, nil
	}
	return "", apperr.Configuration(fmt.Sprintf("secret %q not found", ref))
}
