// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"prepbook/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client.
var CacheClient *redis.Client

// InitCache connects the cache client. The service keeps running without a cache when Redis is down.
func InitCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	CacheClient = client
	return nil
}

// GetCacheClient returns the generic cache client, or nil when it is not connected.
func GetCacheClient() *redis.Client {
	return CacheClient
}
