package adapters

import (
	"salesrep_sync/platform/secrets"

	"github.com/redis/go-redis/v9"
)

// SecretsHashKey is the redis hash holding shared secrets by reference id.
const SecretsHashKey = "secrets"

// NewSecretStore resolves secrets from the environment first, then from the
// redis hash when a client is given.
func NewSecretStore(rdb *redis.Client) secrets.Store {
	if rdb == nil {
		return secrets.NewEnvStore()
	}
	return secrets.Chain{secrets.NewEnvStore(), secrets.NewRedisStore(rdb, SecretsHashKey)}
}
