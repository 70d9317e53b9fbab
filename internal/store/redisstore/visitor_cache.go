package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

func visitorKey(cedula string) string {
	return "visitor:" + cedula
}

// VisitorCache caches visitor profiles as JSON
type VisitorCache struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewVisitorCache creates a cache whose entries live for ttl
func NewVisitorCache(client *redisclient.Client, ttl time.Duration) *VisitorCache {
	return &VisitorCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a miss
func (c *VisitorCache) Get(ctx context.Context, cedula string) (*models.VisitorProfile, error) {
	data, err := c.client.Get(ctx, visitorKey(cedula)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached visitor: %w", err)
	}

	var profile models.VisitorProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode cached visitor: %w", err)
	}
	return &profile, nil
}

// Set stores the profile under its cedula
func (c *VisitorCache) Set(ctx context.Context, profile *models.VisitorProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode visitor: %w", err)
	}
	return c.client.Set(ctx, visitorKey(profile.Cedula), data, c.ttl).Err()
}

// Invalidate removes the cached profile
func (c *VisitorCache) Invalidate(ctx context.Context, cedula string) error {
	return c.client.Del(ctx, visitorKey(cedula)).Err()
}
