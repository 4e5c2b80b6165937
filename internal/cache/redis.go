package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"travelink/config"
	"travelink/internal/domain"
)

type RedisCache struct {
	client       *redis.Client
	rs           *redsync.Redsync
	schedulesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, schedulesTTL time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisCache{
		client:       client,
		rs:           redsync.New(goredis.NewPool(client)),
		schedulesTTL: schedulesTTL,
	}
}

func (c *RedisCache) GetUpcomingSchedules(ctx context.Context) ([]domain.Schedule, error) {
	data, err := c.client.Get(ctx, upcomingKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var schedules []domain.Schedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *RedisCache) SetUpcomingSchedules(ctx context.Context, schedules []domain.Schedule) error {
	payload, err := json.Marshal(schedules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, upcomingKey(), payload, c.schedulesTTL).Err()
}

func (c *RedisCache) InvalidateUpcomingSchedules(ctx context.Context) error {
	return c.client.Del(ctx, upcomingKey()).Err()
}

func (c *RedisCache) AcquireSeatHold(ctx context.Context, scheduleID, seat string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(scheduleID, seat), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, scheduleID, seat string) error {
	return c.client.Del(ctx, seatHoldKey(scheduleID, seat)).Err()
}

// SweepMutex returns the distributed lock guarding the departure sweep so
// only one worker instance flips schedules at a time.
func (c *RedisCache) SweepMutex(ttl time.Duration) *redsync.Mutex {
	return c.rs.NewMutex("lock:departure-sweep", redsync.WithExpiry(ttl), redsync.WithTries(1))
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func upcomingKey() string {
	return "cache:schedules:upcoming"
}

func seatHoldKey(scheduleID, seat string) string {
	return fmt.Sprintf("hold:schedule:%s:seat:%s", scheduleID, seat)
}
