package translation

import "errors"

// 预定义错误
var (
	// ErrUnknownProvider 未知的提供商
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoSettingsStore 未设置持久化存储
	ErrNoSettingsStore = errors.New("settings store not configured")
)

// 面向用户的提示
const (
	msgNotConfigured   = "请先配置翻译API"
	msgRateLimited     = "请求过于频繁，请稍后再试（每分钟最多%d次）"
	msgUnknownProvider = "未知的API提供商"
	msgAllFailed       = "所有翻译服务都不可用。"
	msgNoneEligible    = "没有已完成配置的翻译服务"
	msgUnknownError    = "未知错误"
	msgEmptyText       = "没有需要翻译的文本"
)
