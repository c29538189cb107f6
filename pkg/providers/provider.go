package providers

import (
	"context"
	"net/http"
	"time"
)

// 提供商名称
const (
	NameBaidu          = "baidu"
	NameLibreTranslate = "libretranslate"
	NameDeepSeek       = "deepseek"
)

// Status 翻译状态
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
)

// Result 翻译结果，返回后不再修改
type Result struct {
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	Status         Status `json:"status"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	// ResponseTime 毫秒；缓存命中时为0
	ResponseTime int64 `json:"responseTime"`
}

// OK 是否翻译成功
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Translator 翻译提供商接口。
// 实现不返回错误：所有失败都记录在 Result 的状态和错误信息中。
type Translator interface {
	// Translate 执行一次翻译请求，不做重试
	Translate(ctx context.Context, text string) Result

	// GetName 获取提供商名称
	GetName() string
}

// BaseConfig 基础配置
type BaseConfig struct {
	// 超时，0 表示使用底层传输的默认行为
	Timeout time.Duration `json:"timeout,omitempty"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`

	// HTTPClient 为空时使用 http.DefaultClient
	HTTPClient *http.Client `json:"-"`
}

// Client 返回要使用的 HTTP 客户端
func (c BaseConfig) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	if c.Timeout > 0 {
		return &http.Client{Timeout: c.Timeout}
	}
	return http.DefaultClient
}

// Success 构造成功结果
func Success(text, translated string, start time.Time) Result {
	return Result{
		SourceText:     text,
		TranslatedText: translated,
		Status:         StatusSuccess,
		ResponseTime:   Elapsed(start),
	}
}

// Failure 将错误转换为失败结果，超时类错误得到 timeout 状态
func Failure(text string, err error, start time.Time) Result {
	perr := Classify(err)
	status := StatusFailed
	if perr.Kind == KindTimeout {
		status = StatusTimeout
	}
	return Result{
		SourceText:   text,
		Status:       status,
		ErrorMessage: perr.Message,
		ResponseTime: Elapsed(start),
	}
}

// Elapsed 从 start 到现在的毫秒数
func Elapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// MaskSecret 遮蔽密钥，只保留前4位
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return "****"
	}
	return string(runes[:4]) + "****"
}
