package cli

import (
	"context"
	"fmt"

	"github.com/nerdneilsfield/go-selection-translator/internal/config"
	"github.com/nerdneilsfield/go-selection-translator/internal/logger"
	"github.com/nerdneilsfield/go-selection-translator/pkg/cache"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/go-selection-translator/pkg/ratelimit"
	"github.com/nerdneilsfield/go-selection-translator/pkg/storage"
	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"go.uber.org/zap"
)

// app 一次命令执行所需的全部组件
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    storage.Store
	settings *config.FileSettingsStore
	stats    *stats.Manager
	manager  *translation.Manager
}

// newApp 加载配置并组装翻译管理器
func newApp(ctx context.Context, opts *rootOptions, logFormat string) (*app, error) {
	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.debug {
		cfg.Debug = true
	}

	log := logger.New(cfg.Debug, logFormat)

	store, err := storage.Open(cfg.StorageConfig(), storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache storage: %w", err)
	}

	statsManager := stats.NewManager(log)
	if err := statsManager.Load(ctx, store); err != nil {
		log.Warn("读取提供商统计失败", zap.Error(err))
	}

	settingsStore := config.NewFileSettingsStore(cfg.SettingsFile)

	manager := translation.NewManager(
		translation.WithSettingsStore(settingsStore),
		translation.WithCache(cache.New(store,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
			cache.WithLogger(log))),
		translation.WithLimiter(ratelimit.New(
			ratelimit.WithLimits(cfg.RateLimit.PerMinute, cfg.RateLimit.PerHour))),
		translation.WithStats(statsManager),
		translation.WithLogger(log),
	)

	log.Debug("配置已加载",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("settings_file", cfg.SettingsFile))

	return &app{
		cfg:      cfg,
		logger:   log,
		store:    store,
		settings: settingsStore,
		stats:    statsManager,
		manager:  manager,
	}, nil
}

// Close 保存统计并释放存储
func (a *app) Close(ctx context.Context) {
	if err := a.stats.Save(ctx, a.store); err != nil {
		a.logger.Warn("保存提供商统计失败", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("关闭存储失败", zap.Error(err))
	}
	_ = a.logger.Sync()
}
