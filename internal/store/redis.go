package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/StealthPanther/ai-career-navigator/internal/config"
	apperrors "github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/types"

	"github.com/redis/go-redis/v9"
)

const chatKeyPrefix = "careernav:chat:"

// RedisHistory caches recent chat turns in Redis lists in front of another Store.
// Writes go to the underlying store first; the cache is only an accelerator and
// cache failures are logged, never returned.
type RedisHistory struct {
	Store
	rdb      *redis.Client
	ttl      time.Duration
	maxTurns int
	logger   *apperrors.Logger
}

// NewRedisHistory connects to Redis and decorates base
func NewRedisHistory(ctx context.Context, base Store, cfg config.RedisConfig, logger *apperrors.Logger) (*RedisHistory, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig, "invalid redis URL", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, storeFailure("ping redis", err)
	}
	logger.Info("Chat history cache enabled", "ttl", cfg.TTL.String(), "max_turns", cfg.MaxTurns)
	return newRedisHistory(base, rdb, cfg, logger), nil
}

func newRedisHistory(base Store, rdb *redis.Client, cfg config.RedisConfig, logger *apperrors.Logger) *RedisHistory {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &RedisHistory{Store: base, rdb: rdb, ttl: cfg.TTL, maxTurns: maxTurns, logger: logger}
}

func chatKey(userID, roadmapID string) string {
	if roadmapID == "" {
		roadmapID = "general"
	}
	return fmt.Sprintf("%s%s:%s", chatKeyPrefix, userID, roadmapID)
}

// AppendChat writes through to the underlying store, then extends a warm cache entry
func (r *RedisHistory) AppendChat(ctx context.Context, userID, roadmapID string, turns ...types.ChatTurn) error {
	now := time.Now().UTC()
	for i := range turns {
		if turns[i].Timestamp.IsZero() {
			turns[i].Timestamp = now
		}
	}
	if err := r.Store.AppendChat(ctx, userID, roadmapID, turns...); err != nil {
		return err
	}

	key := chatKey(userID, roadmapID)
	exists, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Warn("Chat cache unavailable", "operation", "append", "error", err.Error())
		return nil
	}
	if exists == 0 {
		// cold entries are filled from the store on the next read
		return nil
	}
	if err := r.push(ctx, key, turns); err != nil {
		r.logger.Warn("Chat cache append failed, dropping entry", "key", key, "error", err.Error())
		r.rdb.Del(ctx, key)
	}
	return nil
}

// RecentTurns serves from the cache when the entry is warm and large enough
func (r *RedisHistory) RecentTurns(ctx context.Context, userID, roadmapID string, limit int) ([]types.ChatTurn, error) {
	if limit <= 0 || limit > r.maxTurns {
		return r.Store.RecentTurns(ctx, userID, roadmapID, limit)
	}

	key := chatKey(userID, roadmapID)
	raw, err := r.rdb.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		r.logger.Warn("Chat cache unavailable", "operation", "read", "error", err.Error())
		return r.Store.RecentTurns(ctx, userID, roadmapID, limit)
	}
	if len(raw) > 0 {
		turns := make([]types.ChatTurn, 0, len(raw))
		for _, item := range raw {
			var t types.ChatTurn
			if err := json.Unmarshal([]byte(item), &t); err != nil {
				r.logger.Warn("Corrupt chat cache entry, reloading", "key", key, "error", err.Error())
				r.rdb.Del(ctx, key)
				return r.Store.RecentTurns(ctx, userID, roadmapID, limit)
			}
			turns = append(turns, t)
		}
		return turns, nil
	}

	turns, err := r.Store.RecentTurns(ctx, userID, roadmapID, r.maxTurns)
	if err != nil {
		return nil, err
	}
	if len(turns) > 0 {
		if err := r.push(ctx, key, turns); err != nil {
			r.logger.Warn("Chat cache fill failed", "key", key, "error", err.Error())
			r.rdb.Del(ctx, key)
		}
	}
	return turns[max(0, len(turns)-limit):], nil
}

// ClearChat deletes from the underlying store and drops matching cache entries
func (r *RedisHistory) ClearChat(ctx context.Context, userID, roadmapID string) (int, error) {
	deleted, err := r.Store.ClearChat(ctx, userID, roadmapID)
	if err != nil {
		return deleted, err
	}

	if roadmapID != "" {
		r.rdb.Del(ctx, chatKey(userID, roadmapID))
		return deleted, nil
	}
	iter := r.rdb.Scan(ctx, 0, chatKeyPrefix+userID+":*", 100).Iterator()
	for iter.Next(ctx) {
		r.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("Chat cache scan failed", "user_id", userID, "error", err.Error())
	}
	return deleted, nil
}

func (r *RedisHistory) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return storeFailure("ping redis", err)
	}
	return r.Store.Ping(ctx)
}

func (r *RedisHistory) Close() error {
	if err := r.rdb.Close(); err != nil {
		r.logger.LogError(err, "Failed to close redis client")
	}
	return r.Store.Close()
}

func (r *RedisHistory) push(ctx context.Context, key string, turns []types.ChatTurn) error {
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, b)
	}
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
