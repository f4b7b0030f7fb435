package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// CacheSetJSON stores a JSON-encoded value under key with a TTL. Cache errors
// are logged and swallowed; the store stays authoritative.
func CacheSetJSON(key string, value any, ttl time.Duration) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		log.Printf("[redis] Error serializing value for %s: %s\n", key, err.Error())
		return
	}
	if err := rd.SetEx(context.Background(), key, string(bytes), ttl).Err(); err != nil {
		log.Printf("[redis] Failed to set value for key %s: %s\n", key, err.Error())
	}
}

// CacheGetJSON loads a cached JSON value into out, reporting whether it hit.
func CacheGetJSON(key string, out any) bool {
	rd := GetRedisClient()
	if rd == nil {
		return false
	}
	val, err := rd.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false
	} else if err != nil {
		log.Printf("[redis] Error retrieving value for %s: %s\n", key, err.Error())
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		log.Printf("[redis] Error deserializing value for %s: %s\n", key, err.Error())
		return false
	}
	return true
}
