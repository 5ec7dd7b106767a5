package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ctx = context.Background()

var ErrCacheMiss = errors.New("cache miss")

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(url string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     url,
			Password: "",
			DB:       0,
		},
	)
	return &RedisCache{Client: client}, nil
}

func (r *RedisCache) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisCache) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

func (r *RedisCache) SetSeatMap(showtimeID string, value any) error {
	return r.Set(MakeShowtimeSeatMapKey(showtimeID), value, SeatMapTTL)
}

func (r *RedisCache) GetSeatMap(showtimeID string, dest any) error {
	return r.Get(MakeShowtimeSeatMapKey(showtimeID), dest)
}

func (r *RedisCache) InvalidateSeatMap(showtimeID string) error {
	return r.Delete(MakeShowtimeSeatMapKey(showtimeID))
}
