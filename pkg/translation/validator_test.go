package translation

import (
	"testing"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/baidu"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/deepseek"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers/libretranslate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireConfigError(t *testing.T, err error, message string) {
	t.Helper()
	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, providers.KindConfiguration, perr.Kind)
	assert.Equal(t, message, perr.Message)
}

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		settings Settings
		want     string
	}{
		{
			name:     "baidu missing both",
			provider: providers.NameBaidu,
			settings: Settings{Baidu: baidu.Config{AppID: " "}},
			want:     "百度翻译配置不完整：缺少 APP ID 和 Secret Key",
		},
		{
			name:     "baidu missing secret",
			provider: providers.NameBaidu,
			settings: Settings{Baidu: baidu.Config{AppID: "2025"}},
			want:     "百度翻译配置不完整：缺少 Secret Key",
		},
		{
			name:     "deepseek missing key",
			provider: providers.NameDeepSeek,
			want:     "DeepSeek配置不完整：缺少 API Key",
		},
		{
			name:     "deepseek bad prefix",
			provider: providers.NameDeepSeek,
			settings: Settings{DeepSeek: deepseek.Config{APIKey: "pk-123"}},
			want:     "DeepSeek API 密钥格式不正确（应以 sk- 开头）",
		},
		{
			name:     "libretranslate missing url",
			provider: providers.NameLibreTranslate,
			want:     "LibreTranslate配置不完整：缺少 服务地址",
		},
		{
			name:     "libretranslate bad url",
			provider: providers.NameLibreTranslate,
			settings: Settings{LibreTranslate: libretranslate.Config{URL: "not a url"}},
			want:     "LibreTranslate 服务地址格式不正确",
		},
		{
			name:     "unknown",
			provider: "google",
			want:     "未知的API提供商",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.settings
			requireConfigError(t, ValidateProvider(tt.provider, &s), tt.want)
		})
	}
}

func TestValidateProviderValid(t *testing.T) {
	s := &Settings{
		Baidu:          baidu.Config{AppID: "2025", SecretKey: "secret"},
		LibreTranslate: libretranslate.Config{URL: "https://libretranslate.com"},
		DeepSeek:       deepseek.Config{APIKey: "sk-abc"},
	}
	assert.NoError(t, ValidateProvider(providers.NameBaidu, s))
	assert.NoError(t, ValidateProvider(providers.NameLibreTranslate, s))
	assert.NoError(t, ValidateProvider(providers.NameDeepSeek, s))
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	requireConfigError(t, (&Settings{}).Validate(), "未知的API提供商")
	requireConfigError(t, (&Settings{APIProvider: "google"}).Validate(), "未知的API提供商")

	// 只校验主服务
	s := DefaultSettings()
	s.DeepSeek.APIKey = "bad"
	assert.NoError(t, s.Validate())

	s.APIProvider = providers.NameDeepSeek
	requireConfigError(t, s.Validate(), "DeepSeek API 密钥格式不正确（应以 sk- 开头）")
}

func TestEligible(t *testing.T) {
	s := &Settings{DeepSeek: deepseek.Config{APIKey: "not-sk"}}

	// Eligible 只看必填字段，不校验格式
	assert.True(t, s.Eligible(providers.NameDeepSeek))
	assert.False(t, s.Eligible(providers.NameBaidu))
	assert.False(t, s.Eligible(providers.NameLibreTranslate))
	assert.False(t, s.Eligible("google"))
}

func TestSettingsClone(t *testing.T) {
	var nilSettings *Settings
	assert.Nil(t, nilSettings.Clone())

	s := DefaultSettings()
	c := s.Clone()
	c.APIProvider = providers.NameBaidu
	assert.Equal(t, providers.NameLibreTranslate, s.APIProvider)
}

func TestSettingsMasked(t *testing.T) {
	s := DefaultSettings()
	s.Baidu = baidu.Config{AppID: "2025", SecretKey: "secret-key"}
	s.DeepSeek.APIKey = "sk-abcdef"

	m := s.Masked()
	assert.Equal(t, "2025", m.Baidu.AppID)
	assert.Equal(t, "secr****", m.Baidu.SecretKey)
	assert.Equal(t, "sk-a****", m.DeepSeek.APIKey)
	assert.Equal(t, "", m.LibreTranslate.APIKey)

	// 原设置不受影响
	assert.Equal(t, "secret-key", s.Baidu.SecretKey)
}
