package database

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// AsynqRedisOpt derives the asynq connection from the same Redis settings.
func AsynqRedisOpt(opts *redis.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}
}

// InitAsynq builds the task client only when Redis is available.
func InitAsynq(redisClient *redis.Client) *asynq.Client {
	if redisClient == nil {
		log.Println("⚠️ Redis not available. Asynq client will not be initialized.")
		return nil
	}
	client := asynq.NewClient(AsynqRedisOpt(redisClient.Options()))
	log.Println("✅ Asynq Client initialized successfully")
	return client
}
