package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind 错误类型
type Kind string

const (
	// KindConfiguration 配置缺失或格式错误，不会发起请求
	KindConfiguration Kind = "configuration"
	// KindRateLimit 本地限流拒绝
	KindRateLimit Kind = "rate_limit"
	// KindTransport 网络或HTTP错误
	KindTransport Kind = "transport"
	// KindTimeout 超过截止时间
	KindTimeout Kind = "timeout"
	// KindProvider 服务端返回了业务错误（如错误码）
	KindProvider Kind = "provider"
	// KindEmptyResult 响应成功但没有译文
	KindEmptyResult Kind = "empty_result"
)

// Error 提供商错误
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 返回原因错误
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError 创建提供商错误
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError 包装底层错误
func WrapError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ConfigError 配置不完整
func ConfigError(provider string, missing ...string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("%s配置不完整：缺少 %s", provider, strings.Join(missing, " 和 ")),
	}
}

// 默认提示
const (
	msgTimeout     = "翻译请求超时，请检查网络连接后重试"
	msgUnavailable = "翻译服务暂时不可用，请检查网络连接后重试"
)

// Classify 将任意错误归入错误分类，已是 *Error 的原样返回
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}

	if IsTimeout(err) {
		return WrapError(KindTimeout, msgTimeout, err)
	}
	return WrapError(KindTransport, msgUnavailable, err)
}

// IsTimeout 判断是否为超时
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsNetworkError 判断是否为网络层错误（连接失败、DNS、连接重置等）
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no such host",
		"broken pipe",
		"eof",
	}
	for _, pattern := range networkPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
