package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"noteally/internal/model"
)

const (
	feedKey      = "notes:feed"
	feedDirtyKey = "notes:feed:dirty"
)

// FeedCache holds the unfiltered shared-notes feed. A short-lived dirty
// marker keeps a repopulation race from resurrecting a stale feed right
// after a write.
type FeedCache struct {
	client         *redisv9.Client
	feedTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewFeedCache(client *redisv9.Client, feedTTL, dirtyMarkerTTL time.Duration) *FeedCache {
	if feedTTL <= 0 {
		feedTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &FeedCache{
		client:         client,
		feedTTL:        feedTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *FeedCache) GetFeed(ctx context.Context) ([]model.Note, bool, error) {
	dirty, err := c.isDirty(ctx)
	if err != nil || dirty {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, feedKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get feed failed: %w", err)
	}

	var notes []model.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached feed failed: %w", err)
	}
	return notes, true, nil
}

func (c *FeedCache) SetFeed(ctx context.Context, notes []model.Note) error {
	dirty, err := c.isDirty(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return nil
	}

	payload, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("marshal feed cache failed: %w", err)
	}
	if err := c.client.Set(ctx, feedKey, payload, c.feedTTL).Err(); err != nil {
		return fmt.Errorf("redis set feed failed: %w", err)
	}
	return nil
}

func (c *FeedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Set(ctx, feedDirtyKey, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		return fmt.Errorf("redis delete feed failed: %w", err)
	}
	return nil
}

func (c *FeedCache) isDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, feedDirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}
