package translation

import (
	"github.com/nerdneilsfield/go-selection-translator/pkg/cache"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/go-selection-translator/pkg/ratelimit"
	"go.uber.org/zap"
)

// Option 管理器配置选项函数
type Option func(*managerOptions)

// managerOptions 管理器内部选项
type managerOptions struct {
	settingsStore SettingsStore
	cache         *cache.Cache
	limiter       *ratelimit.Limiter
	stats         *stats.Manager
	logger        *zap.Logger
}

// WithSettingsStore 设置持久化存储
func WithSettingsStore(store SettingsStore) Option {
	return func(o *managerOptions) {
		o.settingsStore = store
	}
}

// WithCache 设置缓存
func WithCache(c *cache.Cache) Option {
	return func(o *managerOptions) {
		o.cache = c
	}
}

// WithLimiter 设置限流器
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(o *managerOptions) {
		o.limiter = l
	}
}

// WithStats 设置统计管理器
func WithStats(s *stats.Manager) Option {
	return func(o *managerOptions) {
		o.stats = s
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}
