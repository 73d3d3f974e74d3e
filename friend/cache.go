package friend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/moonveil-games/friendserver/cache"
	"github.com/moonveil-games/friendserver/cache/local"
	cacheredis "github.com/moonveil-games/friendserver/cache/redis"
	"github.com/moonveil-games/friendserver/model"
	"go.uber.org/zap"
)

const listKeyPrefix = "friends:"

// DefaultListTTL is how long a resolved friend list stays cached.
const DefaultListTTL = 300 * time.Second

// ListCache holds resolved friend lists keyed by account ID. The relational
// store stays authoritative: every cache failure degrades to a miss and is
// never returned to the caller.
type ListCache struct {
	kv     cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewListCache creates a ListCache over the given KV store.
func NewListCache(kv cache.Cache, ttl time.Duration, logger *zap.Logger) *ListCache {
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{kv: kv, ttl: ttl, logger: logger}
}

func listKey(accountID string) string {
	return listKeyPrefix + accountID
}

// Get returns the cached friend list and whether it was present.
func (c *ListCache) Get(ctx context.Context, accountID string) ([]model.Account, bool) {
	raw, err := c.kv.Get(ctx, listKey(accountID))
	if err != nil {
		if !errors.Is(err, local.ErrNotFound) && !errors.Is(err, cacheredis.ErrNotFound) {
			c.logger.Warn("friend list cache read failed", zap.String("account_id", accountID), zap.Error(err))
		}
		return nil, false
	}
	var friends []model.Account
	if err := json.Unmarshal([]byte(raw), &friends); err != nil {
		c.logger.Warn("friend list cache entry corrupt", zap.String("account_id", accountID), zap.Error(err))
		_ = c.kv.Del(ctx, listKey(accountID))
		return nil, false
	}
	return friends, true
}

// Put stores the friend list with the configured TTL. Best-effort.
func (c *ListCache) Put(ctx context.Context, accountID string, friends []model.Account) {
	raw, err := json.Marshal(friends)
	if err != nil {
		c.logger.Warn("friend list cache marshal failed", zap.String("account_id", accountID), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, listKey(accountID), string(raw), c.ttl); err != nil {
		c.logger.Warn("friend list cache write failed", zap.String("account_id", accountID), zap.Error(err))
	}
}

// Invalidate drops the cached lists for the given accounts. Best-effort.
func (c *ListCache) Invalidate(ctx context.Context, accountIDs ...string) {
	if len(accountIDs) == 0 {
		return
	}
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = listKey(id)
	}
	if err := c.kv.Del(ctx, keys...); err != nil {
		c.logger.Warn("friend list cache invalidate failed", zap.Strings("account_ids", accountIDs), zap.Error(err))
	}
}
