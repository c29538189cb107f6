// Package baidu 百度翻译开放平台（通用文本翻译）提供商
package baidu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/pkg/langdetect"
	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/nerdneilsfield/go-selection-translator/pkg/signer"
	"go.uber.org/zap"
)

// DefaultEndpoint 通用翻译接口地址
const DefaultEndpoint = "https://fanyi-api.baidu.com/api/trans/vip/translate"

const displayName = "百度翻译"

// errorMessages 百度错误码说明
var errorMessages = map[string]string{
	"52001": "请求超时，请稍后重试",
	"52002": "系统繁忙，请稍后重试",
	"52003": "用户认证失败，请检查 APP ID 和密钥",
	"54000": "必填参数为空",
	"54001": "签名错误！请检查：\n1. APP ID 是否正确\n2. 密钥是否正确\n3. 配置中是否有多余的空格",
	"54003": "访问频率受限",
	"54004": "账户余额不足",
	"54005": "长query请求频繁",
	"58000": "客户端IP非法",
	"58001": "译文语言方向不支持",
	"58002": "服务当前已关闭",
}

// ErrorMessage 返回错误码对应的提示，未知错误码返回通用提示
func ErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("百度翻译服务错误（错误码：%s）", code)
}

// Config 百度翻译配置
type Config struct {
	providers.BaseConfig `json:"-" yaml:"-" mapstructure:"-"`
	AppID                string `json:"appId" yaml:"appId" mapstructure:"appId"`
	SecretKey            string `json:"secretKey" yaml:"secretKey" mapstructure:"secretKey"`
	// Endpoint 为空时使用官方地址
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
}

// Missing 返回缺失的必填字段
func (c Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.AppID) == "" {
		missing = append(missing, "APP ID")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		missing = append(missing, "Secret Key")
	}
	return missing
}

// Provider 百度翻译提供商
type Provider struct {
	config Config
	logger *zap.Logger
	now    func() time.Time
}

// 确保 Provider 实现 providers.Translator 接口
var _ providers.Translator = (*Provider)(nil)

// New 创建百度翻译提供商
func New(config Config, logger *zap.Logger) *Provider {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		config: config,
		logger: logger.Named(providers.NameBaidu),
		now:    time.Now,
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return providers.NameBaidu
}

// Translate 执行翻译，语言方向由文本自动检测
func (p *Provider) Translate(ctx context.Context, text string) providers.Result {
	start := time.Now()

	appID := strings.TrimSpace(p.config.AppID)
	secretKey := strings.TrimSpace(p.config.SecretKey)
	if missing := p.config.Missing(); len(missing) > 0 {
		p.logger.Warn("配置缺失", zap.Strings("missing", missing))
		return providers.Failure(text, providers.ConfigError(displayName, missing...), start)
	}

	direction := langdetect.Detect(text)
	salt := strconv.FormatInt(p.now().UnixMilli(), 10)

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", direction.From)
	params.Set("to", direction.To)
	params.Set("appid", appID)
	params.Set("salt", salt)
	params.Set("sign", signer.BaiduSign(appID, text, salt, secretKey))

	p.logger.Debug("发送翻译请求",
		zap.String("from", direction.From),
		zap.String("to", direction.To),
		zap.String("salt", salt),
		zap.Int("text_length", len(text)))

	translated, err := p.do(ctx, p.config.Endpoint+"?"+params.Encode())
	if err != nil {
		p.logger.Warn("翻译失败", zap.Error(err))
		return providers.Failure(text, err, start)
	}
	return providers.Success(text, translated, start)
}

func (p *Provider) do(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", providers.WrapError(providers.KindTransport, "请求错误："+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range p.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.config.Client().Do(req)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &providers.Error{
			Kind:    providers.KindTransport,
			Code:    strconv.Itoa(resp.StatusCode),
			Message: fmt.Sprintf("百度翻译服务返回错误（状态码：%d）", resp.StatusCode),
		}
	}

	var data TranslateResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", providers.WrapError(providers.KindTransport, "百度翻译返回了无法解析的响应", err)
	}

	if code := data.ErrorCode.String(); code != "" && code != "52000" {
		return "", &providers.Error{
			Kind:    providers.KindProvider,
			Code:    code,
			Message: ErrorMessage(code),
		}
	}

	if len(data.TransResult) == 0 || data.TransResult[0].Dst == "" {
		return "", providers.NewError(providers.KindEmptyResult, "百度翻译未返回有效结果")
	}
	return data.TransResult[0].Dst, nil
}

func classifyTransport(err error) error {
	if providers.IsTimeout(err) {
		return providers.WrapError(providers.KindTimeout, "百度翻译请求超时，请稍后重试", err)
	}
	if providers.IsNetworkError(err) {
		return providers.WrapError(providers.KindTransport, "网络连接失败，请检查网络设置或防火墙配置", err)
	}
	return providers.WrapError(providers.KindTransport, "百度翻译服务暂时不可用", err)
}

// TranslateResponse 百度翻译响应
type TranslateResponse struct {
	From        string        `json:"from,omitempty"`
	To          string        `json:"to,omitempty"`
	TransResult []TransResult `json:"trans_result,omitempty"`
	ErrorCode   ErrorCode     `json:"error_code,omitempty"`
	ErrorMsg    string        `json:"error_msg,omitempty"`
}

// TransResult 单段译文
type TransResult struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// ErrorCode 错误码，接口有时返回字符串有时返回数字
type ErrorCode string

// UnmarshalJSON 同时接受字符串和数字
func (c *ErrorCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = ErrorCode(n.String())
	return nil
}

func (c ErrorCode) String() string {
	return string(c)
}
