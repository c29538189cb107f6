// Package cache 持久化的翻译结果缓存。
//
// 缓存键由提供商、语言方向和原文共同决定，条目以 JSON 形式写入
// storage.Store，超过 TTL 的条目在读取时删除，写入后按时间戳淘汰最旧的条目。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/storage"
	"go.uber.org/zap"
)

// KeyPrefix 缓存键前缀，Clear 和统计只作用于该前缀下的键
const KeyPrefix = "translate_cache_"

// 默认参数
const (
	DefaultTTL        = 7 * 24 * time.Hour
	DefaultMaxEntries = 1000
)

// Entry 缓存条目，写入后不再修改，只会被整体替换
type Entry struct {
	Result    providers.Result `json:"result"`
	Timestamp int64            `json:"timestamp"` // 毫秒
	Provider  string           `json:"provider"`
}

// Stats 缓存统计信息
type Stats struct {
	Count int `json:"count"`
	// Size 已存储的字节数
	Size int64 `json:"size"`
	// OldestTimestamp 最旧条目的时间戳（毫秒），没有条目时为0
	OldestTimestamp int64 `json:"oldestTimestamp"`
	// 本进程内的命中统计
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Cache 翻译结果缓存
type Cache struct {
	store      storage.Store
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Option 缓存选项
type Option func(*Cache)

// WithTTL 设置过期时间
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries 设置最大条目数
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New 创建缓存
func New(store storage.Store, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key 生成缓存键
func Key(text, provider, sourceLang, targetLang string) string {
	sum := xxhash.Sum64String(provider + ":" + sourceLang + ":" + targetLang + ":" + text)
	return KeyPrefix + strconv.FormatUint(sum, 36)
}

// Get 读取缓存，过期条目会被删除并视为不存在
func (c *Cache) Get(ctx context.Context, text, provider, sourceLang, targetLang string) (providers.Result, bool, error) {
	key := Key(text, provider, sourceLang, targetLang)

	values, err := c.store.Get(ctx, []string{key})
	if err != nil {
		return providers.Result{}, false, fmt.Errorf("failed to read cache: %w", err)
	}
	data, ok := values[key]
	if !ok {
		c.misses.Add(1)
		return providers.Result{}, false, nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("损坏的缓存条目", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return providers.Result{}, false, c.remove(ctx, key)
	}

	if c.expired(entry) {
		c.misses.Add(1)
		return providers.Result{}, false, c.remove(ctx, key)
	}

	c.hits.Add(1)
	c.logger.Debug("缓存命中",
		zap.String("provider", provider),
		zap.String("from", sourceLang),
		zap.String("to", targetLang))
	return entry.Result, true, nil
}

// Set 写入缓存，随后淘汰超出上限的最旧条目
func (c *Cache) Set(ctx context.Context, text string, result providers.Result, provider, sourceLang, targetLang string) error {
	key := Key(text, provider, sourceLang, targetLang)

	data, err := json.Marshal(Entry{
		Result:    result,
		Timestamp: c.now().UnixMilli(),
		Provider:  provider,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return c.evict(ctx)
}

// Clear 删除所有缓存条目，不影响其他键
func (c *Cache) Clear(ctx context.Context) error {
	entries, err := c.store.Scan(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	if err := c.store.Remove(ctx, keys); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	c.logger.Info("缓存已清空", zap.Int("removed", len(keys)))
	return nil
}

// CleanExpired 删除所有过期条目，返回删除的数量
func (c *Cache) CleanExpired(ctx context.Context) (int, error) {
	entries, err := c.store.Scan(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to scan cache: %w", err)
	}

	var expired []string
	for k, data := range entries {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.expired(entry) {
			expired = append(expired, k)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	if err := c.store.Remove(ctx, expired); err != nil {
		return 0, fmt.Errorf("failed to remove expired entries: %w", err)
	}
	c.logger.Info("已清理过期缓存", zap.Int("removed", len(expired)))
	return len(expired), nil
}

// Stats 获取缓存统计信息
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	entries, err := c.store.Scan(ctx, KeyPrefix)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to scan cache: %w", err)
	}

	stats := Stats{
		Count:  len(entries),
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
	for _, data := range entries {
		stats.Size += int64(len(data))

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if stats.OldestTimestamp == 0 || entry.Timestamp < stats.OldestTimestamp {
			stats.OldestTimestamp = entry.Timestamp
		}
	}
	return stats, nil
}

func (c *Cache) expired(entry Entry) bool {
	return c.now().UnixMilli()-entry.Timestamp > c.ttl.Milliseconds()
}

func (c *Cache) remove(ctx context.Context, key string) error {
	if err := c.store.Remove(ctx, []string{key}); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// evict 条目数超过上限时删除最旧的条目，无法解析的条目最先删除
func (c *Cache) evict(ctx context.Context) error {
	entries, err := c.store.Scan(ctx, KeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}
	if len(entries) <= c.maxEntries {
		return nil
	}

	type aged struct {
		key       string
		timestamp int64
	}
	all := make([]aged, 0, len(entries))
	for k, data := range entries {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			entry.Timestamp = 0
		}
		all = append(all, aged{key: k, timestamp: entry.Timestamp})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].timestamp != all[j].timestamp {
			return all[i].timestamp < all[j].timestamp
		}
		return all[i].key < all[j].key
	})

	excess := len(all) - c.maxEntries
	keys := make([]string, 0, excess)
	for _, a := range all[:excess] {
		keys = append(keys, a.key)
	}
	if err := c.store.Remove(ctx, keys); err != nil {
		return fmt.Errorf("failed to evict cache entries: %w", err)
	}
	c.logger.Debug("已淘汰旧缓存", zap.Int("removed", len(keys)))
	return nil
}
