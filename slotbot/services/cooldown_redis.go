package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCooldowns keeps slot cooldowns as expiring redis keys.
type RedisCooldowns struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCooldowns(ctx context.Context, addr, password string, db int) (*RedisCooldowns, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return &RedisCooldowns{client: client, now: time.Now}, nil
}

func cooldownKey(guildID, userID string) string {
	return fmt.Sprintf("slotbot:cooldown:%s:%s", guildID, userID)
}

func (r *RedisCooldowns) Start(ctx context.Context, guildID, userID string, until time.Time) error {
	key := cooldownKey(guildID, userID)
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return r.client.Del(ctx, key).Err()
	}
	return r.client.Set(ctx, key, until.Unix(), ttl).Err()
}

func (r *RedisCooldowns) Until(ctx context.Context, guildID, userID string) (time.Time, error) {
	raw, err := r.client.Get(ctx, cooldownKey(guildID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read cooldown: %w", err)
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt cooldown value %q: %w", raw, err)
	}
	return time.Unix(unix, 0), nil
}

func (r *RedisCooldowns) Close() error {
	return r.client.Close()
}
