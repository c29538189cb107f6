package translation

import (
	"fmt"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/baidu"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/deepseek"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/stats"
	"go.uber.org/zap"
)

// ProviderManager 根据设置创建提供商，提供商集合是固定的
type ProviderManager struct {
	stats  *stats.Manager
	logger *zap.Logger
}

// NewProviderManager 创建provider管理器
func NewProviderManager(statsManager *stats.Manager, logger *zap.Logger) *ProviderManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderManager{
		stats:  statsManager,
		logger: logger,
	}
}

// Create 根据设置创建提供商，返回的提供商会记录调用统计。
// 百度和 LibreTranslate 未配置客户端时使用默认传输，不设超时
func (pm *ProviderManager) Create(name string, settings *Settings) (providers.Translator, error) {
	var t providers.Translator

	switch name {
	case providers.NameBaidu:
		t = baidu.New(settings.Baidu, pm.logger)
	case providers.NameLibreTranslate:
		t = libretranslate.New(settings.LibreTranslate, pm.logger)
	case providers.NameDeepSeek:
		t = deepseek.New(settings.DeepSeek, pm.logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	return stats.Wrap(t, pm.stats), nil
}
