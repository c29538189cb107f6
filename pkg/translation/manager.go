// Package translation 翻译管理器：方向检测、缓存、限流、主服务调用与备用切换
package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nerdneilsfield/go-selection-translator/pkg/cache"
	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/go-selection-translator/pkg/ratelimit"
	"github.com/nerdneilsfield/go-selection-translator/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Manager 翻译管理器，可并发使用
type Manager struct {
	options   managerOptions
	providers *ProviderManager
	logger    *zap.Logger

	mu       sync.RWMutex
	settings *Settings

	group singleflight.Group
}

// NewManager 创建翻译管理器。未指定缓存时使用内存缓存，未指定限流器时使用默认限额。
func NewManager(opts ...Option) *Manager {
	options := managerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.logger == nil {
		options.logger = zap.NewNop()
	}
	if options.cache == nil {
		options.cache = cache.New(storage.NewMemoryStore(), cache.WithLogger(options.logger))
	}
	if options.limiter == nil {
		options.limiter = ratelimit.New()
	}
	if options.stats == nil {
		options.stats = stats.NewManager(options.logger)
	}

	return &Manager{
		options:   options,
		providers: NewProviderManager(options.stats, options.logger),
		logger:    options.logger,
	}
}

// SetSettings 设置临时配置，之后的翻译都使用它；传入 nil 则重新从存储读取
func (m *Manager) SetSettings(settings *Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings.Clone()
}

// Settings 返回当前配置：先取临时配置，否则从存储读取并保留。
// 没有任何配置时返回 nil, nil。
func (m *Manager) Settings(ctx context.Context) (*Settings, error) {
	m.mu.RLock()
	current := m.settings
	m.mu.RUnlock()
	if current != nil {
		return current.Clone(), nil
	}

	if m.options.settingsStore == nil {
		return nil, nil
	}
	loaded, err := m.options.settingsStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if loaded == nil {
		return nil, nil
	}

	m.mu.Lock()
	if m.settings == nil {
		m.settings = loaded.Clone()
	}
	current = m.settings
	m.mu.Unlock()
	return current.Clone(), nil
}

// SaveSettings 校验并持久化配置，同时替换临时配置
func (m *Manager) SaveSettings(ctx context.Context, settings *Settings) error {
	if m.options.settingsStore == nil {
		return ErrNoSettingsStore
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := m.options.settingsStore.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	m.SetSettings(settings)
	m.logger.Info("设置已保存", zap.String("provider", settings.APIProvider))
	return nil
}

// Translate 翻译文本，失败也以 Result 的形式返回
func (m *Manager) Translate(ctx context.Context, text string) providers.Result {
	logger := m.logger.With(zap.String("request_id", uuid.NewString()))

	settings, err := m.Settings(ctx)
	if err != nil {
		logger.Warn("读取设置失败", zap.Error(err))
	}
	if settings == nil {
		return failed(text, msgNotConfigured)
	}
	if strings.TrimSpace(text) == "" {
		return failed(text, msgEmptyText)
	}

	direction := langdetect.Detect(text)
	logger.Debug("开始翻译",
		zap.String("provider", settings.APIProvider),
		zap.String("from", direction.From),
		zap.String("to", direction.To),
		zap.Float64("chinese_ratio", langdetect.ChineseRatio(text)),
		zap.Int("text_length", len([]rune(text))))

	if !settings.EnableCache {
		return m.admitAndDispatch(ctx, text, settings, direction, logger)
	}

	cached, ok, err := m.options.cache.Get(ctx, text, settings.APIProvider, direction.From, direction.To)
	if err != nil {
		logger.Warn("读取缓存失败", zap.Error(err))
	}
	if ok {
		logger.Debug("从缓存返回翻译结果")
		cached.ResponseTime = 0
		return cached
	}

	key := cache.Key(text, settings.APIProvider, direction.From, direction.To)
	start := time.Now()
	ch := m.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := sharedContext(ctx)
		defer cancel()
		return m.admitAndDispatch(callCtx, text, settings, direction, logger), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Debug("与并发的相同请求共享结果")
		}
		return res.Val.(providers.Result)
	case <-ctx.Done():
		logger.Debug("调用方已取消，共享请求继续执行", zap.Error(ctx.Err()))
		return providers.Failure(text, providers.Classify(ctx.Err()), start)
	}
}

// sharedContext 共享调用不随首个调用方取消，但保留其截止时间
func sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithCancel(detached)
}

// TestTranslation 使用给定配置翻译一次，该配置会成为当前的临时配置
func (m *Manager) TestTranslation(ctx context.Context, settings *Settings, text string) providers.Result {
	m.SetSettings(settings)
	return m.Translate(ctx, text)
}

// admitAndDispatch 限流检查、调用提供商，成功时写入主服务的缓存
func (m *Manager) admitAndDispatch(ctx context.Context, text string, settings *Settings, direction langdetect.Direction, logger *zap.Logger) providers.Result {
	if !m.options.limiter.TryAdmit() {
		perMinute, _ := m.options.limiter.Limits()
		logger.Warn("请求被限流", zap.Any("quota", m.options.limiter.Remaining()))
		return failed(text, fmt.Sprintf(msgRateLimited, perMinute))
	}

	var result providers.Result
	if settings.EnableFallback {
		result = m.translateWithFallback(ctx, text, settings, logger)
	} else {
		result = m.translateWithPrimary(ctx, text, settings, logger)
	}

	if result.OK() && settings.EnableCache {
		if err := m.options.cache.Set(ctx, text, result, settings.APIProvider, direction.From, direction.To); err != nil {
			logger.Warn("写入缓存失败", zap.Error(err))
		}
	}
	return result
}

func (m *Manager) translateWithPrimary(ctx context.Context, text string, settings *Settings, logger *zap.Logger) providers.Result {
	t, err := m.providers.Create(settings.APIProvider, settings)
	if err != nil {
		logger.Warn("无法创建提供商", zap.Error(err))
		return failed(text, msgUnknownProvider)
	}

	result := t.Translate(ctx, text)
	logger.Info("翻译完成",
		zap.String("provider", t.GetName()),
		zap.String("status", string(result.Status)),
		zap.Int64("response_time_ms", result.ResponseTime))
	return result
}

// translateWithFallback 主服务优先，其余按固定顺序尝试，跳过未配置的服务
func (m *Manager) translateWithFallback(ctx context.Context, text string, settings *Settings, logger *zap.Logger) providers.Result {
	var errs []string

	for _, name := range Candidates(settings) {
		t, err := m.providers.Create(name, settings)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", name, msgUnknownProvider))
			continue
		}

		logger.Debug("尝试翻译服务", zap.String("provider", name))
		result := t.Translate(ctx, text)
		if result.OK() {
			logger.Info("翻译完成",
				zap.String("provider", name),
				zap.Bool("fallback", name != settings.APIProvider),
				zap.Int64("response_time_ms", result.ResponseTime))
			return result
		}

		msg := result.ErrorMessage
		if msg == "" {
			msg = msgUnknownError
		}
		errs = append(errs, fmt.Sprintf("%s: %s", name, msg))
		logger.Warn("翻译服务失败",
			zap.String("provider", name),
			zap.String("status", string(result.Status)),
			zap.String("error", msg))

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		errs = append(errs, msgNoneEligible)
	}
	return failed(text, msgAllFailed+"\n"+strings.Join(errs, "\n"))
}

// Candidates 备用切换的候选列表：主服务在前，其余按固定顺序，只保留配置齐全的服务
func Candidates(settings *Settings) []string {
	order := make([]string, 0, len(ProviderOrder))
	order = append(order, settings.APIProvider)
	for _, name := range ProviderOrder {
		if name != settings.APIProvider {
			order = append(order, name)
		}
	}

	candidates := order[:0]
	for _, name := range order {
		if settings.Eligible(name) {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// ClearCache 清空翻译缓存
func (m *Manager) ClearCache(ctx context.Context) error {
	return m.options.cache.Clear(ctx)
}

// CacheStats 缓存统计
func (m *Manager) CacheStats(ctx context.Context) (cache.Stats, error) {
	return m.options.cache.Stats(ctx)
}

// CleanExpiredCache 清理过期缓存
func (m *Manager) CleanExpiredCache(ctx context.Context) (int, error) {
	return m.options.cache.CleanExpired(ctx)
}

// Quota 剩余请求配额
func (m *Manager) Quota() ratelimit.Quota {
	return m.options.limiter.Remaining()
}

// ProviderStats 各提供商的调用统计
func (m *Manager) ProviderStats() []stats.ProviderStats {
	return m.options.stats.All()
}

// Stats 统计管理器
func (m *Manager) Stats() *stats.Manager {
	return m.options.stats
}

func failed(text, message string) providers.Result {
	return providers.Result{
		SourceText:   text,
		Status:       providers.StatusFailed,
		ErrorMessage: message,
	}
}
