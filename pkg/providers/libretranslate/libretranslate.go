// Package libretranslate 自托管 LibreTranslate 服务提供商
package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"go.uber.org/zap"
)

const displayName = "LibreTranslate"

// Config LibreTranslate配置
type Config struct {
	providers.BaseConfig `json:"-" yaml:"-" mapstructure:"-"`
	// URL 服务地址，例如 https://libretranslate.com
	URL string `json:"url" yaml:"url" mapstructure:"url"`
	// APIKey 服务器要求时才需要
	APIKey string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" mapstructure:"apiKey"`
}

// Missing 返回缺失的必填字段
func (c Config) Missing() []string {
	if strings.TrimSpace(c.URL) == "" {
		return []string{"服务地址"}
	}
	return nil
}

// Provider LibreTranslate提供商
type Provider struct {
	config Config
	logger *zap.Logger
}

var _ providers.Translator = (*Provider)(nil)

// New 创建新的LibreTranslate提供商
func New(config Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		config: config,
		logger: logger.Named(providers.NameLibreTranslate),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return providers.NameLibreTranslate
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, text string) providers.Result {
	start := time.Now()

	if missing := p.config.Missing(); len(missing) > 0 {
		return providers.Failure(text, providers.ConfigError(displayName, missing...), start)
	}

	direction := langdetect.Detect(text)
	req := TranslateRequest{
		Q:      text,
		Source: direction.From,
		Target: direction.To,
		Format: "text",
		APIKey: strings.TrimSpace(p.config.APIKey),
	}

	p.logger.Debug("发送翻译请求",
		zap.String("source", req.Source),
		zap.String("target", req.Target),
		zap.Bool("with_api_key", req.APIKey != ""))

	resp, err := p.translate(ctx, req)
	if err != nil {
		p.logger.Warn("翻译失败", zap.Error(err))
		return providers.Failure(text, err, start)
	}

	if resp.DetectedLanguage != nil {
		p.logger.Debug("服务端识别的源语言",
			zap.String("language", resp.DetectedLanguage.Language),
			zap.Float64("confidence", resp.DetectedLanguage.Confidence))
	}
	return providers.Success(text, resp.TranslatedText, start)
}

// Languages 获取服务支持的语言列表，可用于检查服务地址是否可用
func (p *Provider) Languages(ctx context.Context) ([]Language, error) {
	if missing := p.config.Missing(); len(missing) > 0 {
		return nil, providers.ConfigError(displayName, missing...)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("languages"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range p.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.config.Client().Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	var languages []Language
	if err := json.NewDecoder(resp.Body).Decode(&languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	return languages, nil
}

// translate 执行单次翻译请求
func (p *Provider) translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("translate"), bytes.NewReader(body))
	if err != nil {
		return nil, providers.WrapError(providers.KindConfiguration, "LibreTranslate服务地址无效，请检查URL配置", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.config.Client().Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ErrorResponse
		if json.Unmarshal(respBody, &errorResp) == nil && errorResp.Error != "" {
			p.logger.Debug("服务端错误", zap.Int("status", resp.StatusCode), zap.String("error", errorResp.Error))
		}
		return nil, statusError(resp.StatusCode)
	}

	var translateResp TranslateResponse
	if err := json.Unmarshal(respBody, &translateResp); err != nil {
		return nil, providers.WrapError(providers.KindTransport, "LibreTranslate服务暂时不可用，请稍后重试", err)
	}
	if translateResp.TranslatedText == "" {
		return nil, providers.NewError(providers.KindEmptyResult, "LibreTranslate未返回有效结果")
	}
	return &translateResp, nil
}

// endpoint 拼接接口地址，容忍结尾的斜杠
func (p *Provider) endpoint(path string) string {
	base := strings.TrimSpace(p.config.URL)
	if strings.HasSuffix(base, "/") {
		return base + path
	}
	return base + "/" + path
}

func statusError(status int) *providers.Error {
	e := &providers.Error{Kind: providers.KindTransport, Code: strconv.Itoa(status)}
	switch status {
	case http.StatusForbidden:
		e.Kind = providers.KindProvider
		e.Message = "API密钥无效或已过期，请检查配置"
	case http.StatusTooManyRequests:
		e.Kind = providers.KindProvider
		e.Message = "请求过于频繁，请稍后重试"
	default:
		e.Message = fmt.Sprintf("LibreTranslate服务返回错误（状态码：%d）", status)
	}
	return e
}

func classifyTransport(err error) error {
	if providers.IsTimeout(err) {
		return providers.WrapError(providers.KindTimeout, "LibreTranslate请求超时，请稍后重试", err)
	}
	if providers.IsNetworkError(err) {
		return providers.WrapError(providers.KindTransport, "LibreTranslate服务连接失败，请检查URL配置或网络连接", err)
	}
	return providers.WrapError(providers.KindTransport, "LibreTranslate服务暂时不可用，请稍后重试", err)
}

// Language 语言信息
type Language struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets,omitempty"`
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`                 // 要翻译的文本
	Source string `json:"source"`            // 源语言，auto 由服务端识别
	Target string `json:"target"`            // 目标语言
	Format string `json:"format"`            // 文本格式
	APIKey string `json:"api_key,omitempty"` // API密钥（如果需要）
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string `json:"error"`
}
