// Package deepseek 通过 OpenAI 兼容的对话补全接口调用 DeepSeek 进行翻译
package deepseek

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// 默认参数
const (
	DefaultBaseURL     = "https://api.deepseek.com/v1/"
	DefaultModel       = "deepseek-chat"
	DefaultTimeout     = 10 * time.Second
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4000
)

// 系统提示词
const (
	promptToEnglish = "请将以下中文文本翻译为英文，保持原文语气和风格。只返回翻译结果，不要添加任何解释或说明。"
	promptToChinese = "请将以下文本翻译为简体中文，保持原文语气和风格。只返回翻译结果，不要添加任何解释或说明。"
)

// Config DeepSeek配置
type Config struct {
	providers.BaseConfig `json:"-" yaml:"-" mapstructure:"-"`
	APIKey               string `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	BaseURL              string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" mapstructure:"baseUrl"`
	Model                string `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
}

// Missing 返回缺失的必填字段
func (c Config) Missing() []string {
	if strings.TrimSpace(c.APIKey) == "" {
		return []string{"API Key"}
	}
	return nil
}

// Provider DeepSeek提供商
type Provider struct {
	config  Config
	client  openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

var _ providers.Translator = (*Provider)(nil)

// New 创建DeepSeek提供商，SDK 自带的重试被关闭
func New(config Config, logger *zap.Logger) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(config.BaseURL, "/") {
		config.BaseURL += "/"
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := DefaultTimeout
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(config.APIKey)),
		option.WithBaseURL(config.BaseURL),
		option.WithMaxRetries(0),
	}
	if config.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	}
	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &Provider{
		config:  config,
		client:  openai.NewClient(opts...),
		timeout: timeout,
		logger:  logger.Named(providers.NameDeepSeek),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return providers.NameDeepSeek
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text string) providers.Result {
	start := time.Now()

	if missing := p.config.Missing(); len(missing) > 0 {
		return providers.Failure(text, providers.ConfigError("DeepSeek", missing...), start)
	}

	direction := langdetect.Detect(text)
	prompt := promptToChinese
	if direction.IsChinese {
		prompt = promptToEnglish
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(text),
		},
		Model:       openai.ChatModel(p.config.Model),
		Temperature: openai.Float(DefaultTemperature),
		MaxTokens:   openai.Int(DefaultMaxTokens),
	}

	p.logger.Debug("发送翻译请求",
		zap.String("model", p.config.Model),
		zap.String("api_key", providers.MaskSecret(p.config.APIKey)),
		zap.Bool("is_chinese", direction.IsChinese),
		zap.Duration("timeout", p.timeout))

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = classify(ctx, err)
		p.logger.Warn("翻译失败", zap.Error(err))
		return providers.Failure(text, err, start)
	}

	var translated string
	if len(completion.Choices) > 0 {
		translated = stripReasoning(strings.TrimSpace(completion.Choices[0].Message.Content))
	}
	if translated == "" {
		return providers.Failure(text, providers.NewError(providers.KindEmptyResult, "翻译服务未返回有效结果"), start)
	}

	p.logger.Debug("翻译完成",
		zap.String("id", completion.ID),
		zap.Int64("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int64("completion_tokens", completion.Usage.CompletionTokens))
	return providers.Success(text, translated, start)
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || providers.IsTimeout(err) {
		return providers.WrapError(providers.KindTimeout, "翻译请求超时，请检查网络连接后重试", err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &providers.Error{
			Kind:    providers.KindTransport,
			Code:    strconv.Itoa(apiErr.StatusCode),
			Message: fmt.Sprintf("翻译服务返回错误（状态码：%d）", apiErr.StatusCode),
			Cause:   err,
		}
	}
	return providers.WrapError(providers.KindTransport, "翻译服务暂时不可用，请检查网络连接后重试", err)
}
