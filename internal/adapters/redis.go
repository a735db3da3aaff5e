package adapters

import (
	"crypto/tls"

	"github.com/redis/go-redis/v9"
)

// RedisConfig is the subset of settings needed to reach redis.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// NewRedisClient builds a client from REDIS_URL.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}
