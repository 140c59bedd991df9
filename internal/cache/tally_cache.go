package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/voting-service/internal/domain"
)

const (
	tallyKey           = "voting:tally"
	tallyGenerationKey = "voting:tally:gen"
)

// setIfCurrent stores the tally only while the generation still matches the
// one read before the store was queried.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// TallyCache stores the last computed tally in Redis. A nil *TallyCache is
// valid and behaves as a permanently empty cache.
type TallyCache struct {
	client *redis.Client
	ttl    time.Duration
}

type tallyEntry struct {
	Party string `json:"party"`
	Count int    `json:"count"`
}

// NewTallyCache returns a cache, or nil when client is nil or ttl is not positive.
func NewTallyCache(client *redis.Client, ttl time.Duration) *TallyCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &TallyCache{client: client, ttl: ttl}
}

// Get returns the cached tally. ok is false on a miss.
func (c *TallyCache) Get(ctx context.Context) (entries []domain.TallyEntry, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, tallyKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stored []tallyEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, err
	}
	entries = make([]domain.TallyEntry, len(stored))
	for i, e := range stored {
		entries[i] = domain.TallyEntry{Party: e.Party, Count: e.Count}
	}
	return entries, true, nil
}

// Generation returns the invalidation counter. Callers read it before
// loading the tally from the store and pass it to Set.
func (c *TallyCache) Generation(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	gen, err := c.client.Get(ctx, tallyGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set caches entries computed at generation gen. Nothing is written when an
// invalidation happened since then; stored reports whether the write landed.
func (c *TallyCache) Set(ctx context.Context, gen int64, entries []domain.TallyEntry) (stored bool, err error) {
	if c == nil {
		return false, nil
	}
	rows := make([]tallyEntry, len(entries))
	for i, e := range entries {
		rows[i] = tallyEntry{Party: e.Party, Count: e.Count}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return false, err
	}
	res, err := setIfCurrent.Run(ctx, c.client,
		[]string{tallyGenerationKey, tallyKey},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// Invalidate drops the cached tally and bumps the generation so in-flight
// reads cannot write back an older result.
func (c *TallyCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, tallyGenerationKey)
		pipe.Del(ctx, tallyKey)
		return nil
	})
	return err
}
