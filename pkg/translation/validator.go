package translation

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
)

// deepSeekKeyPrefix DeepSeek API 密钥前缀
const deepSeekKeyPrefix = "sk-"

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
})

// Validate 校验主翻译服务的配置
func (s *Settings) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.APIProvider, validation.Required, validation.In(
			providers.NameBaidu, providers.NameLibreTranslate, providers.NameDeepSeek,
		).Error(msgUnknownProvider)),
	); err != nil {
		return providers.WrapError(providers.KindConfiguration, msgUnknownProvider, err)
	}
	return ValidateProvider(s.APIProvider, s)
}

// ValidateProvider 校验指定翻译服务的配置完整性，返回 *providers.Error
func ValidateProvider(provider string, s *Settings) error {
	switch provider {
	case providers.NameBaidu:
		return validateBaidu(s)
	case providers.NameLibreTranslate:
		return validateLibreTranslate(s)
	case providers.NameDeepSeek:
		return validateDeepSeek(s)
	default:
		return providers.WrapError(providers.KindConfiguration, msgUnknownProvider,
			fmt.Errorf("%w: %q", ErrUnknownProvider, provider))
	}
}

func validateBaidu(s *Settings) error {
	cfg := &s.Baidu
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.AppID, notBlank),
		validation.Field(&cfg.SecretKey, notBlank),
	)
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return providers.WrapError(providers.KindConfiguration, "百度翻译配置无效", err)
	}
	var missing []string
	if fields["appId"] != nil {
		missing = append(missing, "APP ID")
	}
	if fields["secretKey"] != nil {
		missing = append(missing, "Secret Key")
	}
	perr := providers.ConfigError("百度翻译", missing...)
	perr.Cause = err
	return perr
}

func validateLibreTranslate(s *Settings) error {
	cfg := &s.LibreTranslate
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.URL, notBlank),
	)
	if err != nil {
		perr := providers.ConfigError("LibreTranslate", "服务地址")
		perr.Cause = err
		return perr
	}

	if err := validation.Validate(strings.TrimSpace(cfg.URL), is.URL); err != nil {
		return providers.WrapError(providers.KindConfiguration, "LibreTranslate 服务地址格式不正确", err)
	}
	return nil
}

func validateDeepSeek(s *Settings) error {
	cfg := &s.DeepSeek
	if err := validation.ValidateStruct(cfg, validation.Field(&cfg.APIKey, notBlank)); err != nil {
		perr := providers.ConfigError("DeepSeek", "API Key")
		perr.Cause = err
		return perr
	}

	if !strings.HasPrefix(strings.TrimSpace(cfg.APIKey), deepSeekKeyPrefix) {
		return providers.NewError(providers.KindConfiguration, "DeepSeek API 密钥格式不正确（应以 sk- 开头）")
	}
	return nil
}
