// Package stats 统计各翻译提供商的调用情况
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/storage"
	"go.uber.org/zap"
)

// StorageKey 统计数据在存储中的键
const StorageKey = "translator_provider_stats"

// ProviderStats Provider调用统计
type ProviderStats struct {
	ProviderName       string `json:"provider_name"`
	TotalRequests      int64  `json:"total_requests"`
	SuccessfulRequests int64  `json:"successful_requests"`
	FailedRequests     int64  `json:"failed_requests"`
	TimeoutRequests    int64  `json:"timeout_requests"`

	// 性能指标
	AverageLatency time.Duration `json:"average_latency"`
	MinLatency     time.Duration `json:"min_latency"`
	MaxLatency     time.Duration `json:"max_latency"`
	TotalLatency   time.Duration `json:"total_latency"`

	// ErrorMessages 按错误信息统计
	ErrorMessages map[string]int64 `json:"error_messages"`

	FirstRequestTime time.Time `json:"first_request_time"`
	LastRequestTime  time.Time `json:"last_request_time"`
}

// SuccessRate 成功率（百分比），没有请求时为0
func (ps ProviderStats) SuccessRate() float64 {
	if ps.TotalRequests == 0 {
		return 0
	}
	return float64(ps.SuccessfulRequests) / float64(ps.TotalRequests) * 100
}

func (ps ProviderStats) clone() ProviderStats {
	c := ps
	c.ErrorMessages = make(map[string]int64, len(ps.ErrorMessages))
	for k, v := range ps.ErrorMessages {
		c.ErrorMessages[k] = v
	}
	return c
}

// Manager 统计管理器
type Manager struct {
	stats  map[string]*ProviderStats
	logger *zap.Logger
	now    func() time.Time
	mu     sync.RWMutex
}

// NewManager 创建统计管理器
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		stats:  make(map[string]*ProviderStats),
		logger: logger,
		now:    time.Now,
	}
}

// Record 记录一次提供商调用结果
func (m *Manager) Record(provider string, result providers.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[provider]
	if !ok {
		s = &ProviderStats{ProviderName: provider, ErrorMessages: make(map[string]int64)}
		m.stats[provider] = s
	}

	now := m.now()
	if s.FirstRequestTime.IsZero() {
		s.FirstRequestTime = now
	}
	s.LastRequestTime = now
	s.TotalRequests++

	switch result.Status {
	case providers.StatusSuccess:
		s.SuccessfulRequests++
	case providers.StatusTimeout:
		s.TimeoutRequests++
		s.FailedRequests++
	default:
		s.FailedRequests++
	}
	if result.ErrorMessage != "" {
		s.ErrorMessages[result.ErrorMessage]++
	}

	latency := time.Duration(result.ResponseTime) * time.Millisecond
	s.TotalLatency += latency
	if s.TotalRequests == 1 || latency < s.MinLatency {
		s.MinLatency = latency
	}
	if latency > s.MaxLatency {
		s.MaxLatency = latency
	}
	s.AverageLatency = s.TotalLatency / time.Duration(s.TotalRequests)
}

// Get 获取指定Provider的统计副本
func (m *Manager) Get(provider string) (ProviderStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.stats[provider]
	if !ok {
		return ProviderStats{}, false
	}
	return s.clone(), true
}

// All 获取所有统计信息，按提供商名称排序
func (m *Manager) All() []ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ProviderStats, 0, len(m.stats))
	for _, s := range m.stats {
		result = append(result, s.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProviderName < result[j].ProviderName
	})
	return result
}

// Reset 清空统计
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = make(map[string]*ProviderStats)
}

// Save 保存统计数据到存储
func (m *Manager) Save(ctx context.Context, store storage.Store) error {
	data, err := json.Marshal(m.All())
	if err != nil {
		return fmt.Errorf("failed to marshal stats data: %w", err)
	}
	if err := store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	m.logger.Debug("stats saved", zap.Int("providers", len(m.stats)))
	return nil
}

// Load 从存储加载统计数据，覆盖同名提供商的内存数据
func (m *Manager) Load(ctx context.Context, store storage.Store) error {
	values, err := store.Get(ctx, []string{StorageKey})
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	data, ok := values[StorageKey]
	if !ok {
		m.logger.Debug("no saved stats, starting fresh")
		return nil
	}

	var saved []ProviderStats
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("failed to unmarshal stats data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range saved {
		s := saved[i]
		if s.ErrorMessages == nil {
			s.ErrorMessages = make(map[string]int64)
		}
		m.stats[s.ProviderName] = &s
	}

	m.logger.Debug("stats loaded", zap.Int("providers", len(saved)))
	return nil
}
