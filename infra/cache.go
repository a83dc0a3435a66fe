package infra

import (
	"context"
	"log"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tnqbao/gau-filestore-service/config"
)

const lockKeyPrefix = "filestore:lock:"

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisClient struct {
	Client *redis.Client
}

func InitRedisClient(cfg *config.EnvConfig) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisHost + ":" + cfg.Redis.RedisPort,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}

	log.Println("Connected to Redis:", cfg.Redis.RedisPort+" on "+cfg.Redis.RedisHost)

	return &RedisClient{Client: client}
}

// RedisLocker is a name lock shared by every instance talking to the same Redis.
type RedisLocker struct {
	redis *RedisClient
	ttl   time.Duration
	retry time.Duration
}

func NewRedisLocker(client *RedisClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{redis: client, ttl: ttl, retry: 25 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, name string) (func(), error) {
	key := lockKeyPrefix + name
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.redis.Client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.WrapWithDetails(err, "acquiring name lock", "name", name)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// the request ctx may already be cancelled, the key must still go
		_ = unlockScript.Run(context.Background(), l.redis.Client, []string{key}, token).Err()
	}, nil
}
