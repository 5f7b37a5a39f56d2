package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions accepts either host:port or a redis:// URL.
func RedisOptions(uri string) (*redis.Options, error) {
	if strings.HasPrefix(uri, "redis://") || strings.HasPrefix(uri, "rediss://") {
		return redis.ParseURL(uri)
	}
	return &redis.Options{
		Addr:     uri, // เช่น localhost:6379
		Password: "",
		DB:       0,
	}, nil
}

// InitRedis connects to uri. An empty uri means Redis is not configured and
// yields a nil client without error.
func InitRedis(ctx context.Context, uri string) (*redis.Client, error) {
	if uri == "" {
		log.Println("⚠️ REDIS_URI not set. Token blacklist and background jobs are disabled.")
		return nil, nil
	}
	opts, err := RedisOptions(uri)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URI: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("❌ Failed to connect Redis: %w", err)
	}
	log.Println("✅ Redis connected successfully")
	return client, nil
}
