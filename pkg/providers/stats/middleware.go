package stats

import (
	"context"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
)

// Middleware 统计中间件，记录被包装提供商的每次调用
type Middleware struct {
	next    providers.Translator
	manager *Manager
}

var _ providers.Translator = (*Middleware)(nil)

// Wrap 用统计中间件包装提供商，manager 为空时原样返回
func Wrap(next providers.Translator, manager *Manager) providers.Translator {
	if manager == nil {
		return next
	}
	return &Middleware{next: next, manager: manager}
}

// Translate 带统计的翻译方法
func (m *Middleware) Translate(ctx context.Context, text string) providers.Result {
	result := m.next.Translate(ctx, text)
	m.manager.Record(m.next.GetName(), result)
	return result
}

// GetName 返回被包装提供商的名称
func (m *Middleware) GetName() string {
	return m.next.GetName()
}
