package config

import (
	"github.com/go-redis/redis/v8"
)

// NewRedisClient returns a client for addr, or nil when addr is empty.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}
