package deepseek

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// 推理模型可能在回复开头输出成对标签包裹的思考过程
const reasoningTags = `think|thinking|thought|reasoning|reflection`

// leadingReasoning 只匹配位于回复开头的完整思考块，正文中出现的同名标签保持原样
var leadingReasoning = mustCompile(`\A\s*<(` + reasoningTags + `)>.*?</\1>\s*`)

func mustCompile(pattern string) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, regexp2.IgnoreCase|regexp2.Singleline)
	re.MatchTimeout = time.Second
	return re
}

// stripReasoning 移除开头的思考块，匹配失败时原样返回
func stripReasoning(content string) string {
	if !strings.HasPrefix(strings.TrimSpace(content), "<") {
		return content
	}

	replaced, err := leadingReasoning.Replace(content, "", 0, 1)
	if err != nil {
		return content
	}
	return strings.TrimSpace(replaced)
}
