package translation

import (
	"context"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/baidu"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/deepseek"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/libretranslate"
)

// ProviderOrder 备用切换时的固定优先级
var ProviderOrder = []string{
	providers.NameBaidu,
	providers.NameLibreTranslate,
	providers.NameDeepSeek,
}

// Settings 用户设置
type Settings struct {
	// APIProvider 主翻译服务
	APIProvider    string                `json:"apiProvider" yaml:"apiProvider" mapstructure:"apiProvider"`
	Baidu          baidu.Config          `json:"baidu" yaml:"baidu" mapstructure:"baidu"`
	LibreTranslate libretranslate.Config `json:"libretranslate" yaml:"libretranslate" mapstructure:"libretranslate"`
	DeepSeek       deepseek.Config       `json:"deepseek" yaml:"deepseek" mapstructure:"deepseek"`
	EnableCache    bool                  `json:"enableCache" yaml:"enableCache" mapstructure:"enableCache"`
	EnableFallback bool                  `json:"enableFallback" yaml:"enableFallback" mapstructure:"enableFallback"`
}

// DefaultSettings 默认设置：LibreTranslate 公共服务无需密钥即可使用
func DefaultSettings() *Settings {
	return &Settings{
		APIProvider:    providers.NameLibreTranslate,
		LibreTranslate: libretranslate.Config{URL: "https://libretranslate.com"},
		EnableCache:    true,
		EnableFallback: true,
	}
}

// Clone 返回副本
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Masked 返回密钥被遮蔽的副本，用于展示
func (s *Settings) Masked() *Settings {
	c := s.Clone()
	if c == nil {
		return nil
	}
	c.Baidu.SecretKey = providers.MaskSecret(c.Baidu.SecretKey)
	c.LibreTranslate.APIKey = providers.MaskSecret(c.LibreTranslate.APIKey)
	c.DeepSeek.APIKey = providers.MaskSecret(c.DeepSeek.APIKey)
	return c
}

// Eligible 提供商的必填配置是否齐全，备用切换据此跳过未配置的服务
func (s *Settings) Eligible(provider string) bool {
	switch provider {
	case providers.NameBaidu:
		return len(s.Baidu.Missing()) == 0
	case providers.NameLibreTranslate:
		return len(s.LibreTranslate.Missing()) == 0
	case providers.NameDeepSeek:
		return len(s.DeepSeek.Missing()) == 0
	default:
		return false
	}
}

// SettingsStore 设置持久化接口，多处并发写入时以最后一次为准
type SettingsStore interface {
	// Load 读取设置，从未保存过时返回 nil, nil
	Load(ctx context.Context) (*Settings, error)

	// Save 保存设置
	Save(ctx context.Context, settings *Settings) error
}
