package deepseek

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello, world", "Hello, world"},
		{"angle brackets kept", "a < b", "a < b"},
		{"leading think block", "<think>\n用户想要翻译\n</think>\n\n你好，世界", "你好，世界"},
		{"leading whitespace", "  \n<think>plan</think>你好", "你好"},
		{"case insensitive", "<THINKING>plan</THINKING>Hello", "Hello"},
		{"only first block", "<think>a</think>第一句<reasoning>b</reasoning>", "第一句<reasoning>b</reasoning>"},
		{"unclosed tag mid text", "Use the <think> element to mark internal notes.", "Use the <think> element to mark internal notes."},
		{"closed tag mid text", "The <reasoning>tag</reasoning> wraps the argument.", "The <reasoning>tag</reasoning> wraps the argument."},
		{"unclosed leading tag", "<think> 元素用于标记内部注释", "<think> 元素用于标记内部注释"},
		{"html untouched", "<b>bold</b>", "<b>bold</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripReasoning(tt.input))
		})
	}
}
