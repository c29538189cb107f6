package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "deepseek-chat",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": content},
		}},
		"usage": map[string]interface{}{"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12},
	})
	return string(body)
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 1e-9)
		assert.Equal(t, 4000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, promptToChinese, req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "Hello world", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("  你好世界\n")))
	}))
	defer server.Close()

	p := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil)
	result := p.Translate(context.Background(), "Hello world")

	require.True(t, result.OK(), result.ErrorMessage)
	assert.Equal(t, "你好世界", result.TranslatedText)
}

func TestTranslateChinesePrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, promptToEnglish, req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("Hello")))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-test", BaseURL: server.URL + "/"}, nil).Translate(context.Background(), "你好")
	assert.Equal(t, "Hello", result.TranslatedText)
}

func TestTranslateMissingKey(t *testing.T) {
	result := New(Config{APIKey: " "}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "DeepSeek配置不完整：缺少 API Key", result.ErrorMessage)
}

func TestTranslateHTTPError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Authentication Fails","type":"authentication_error"}}`))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-bad", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "翻译服务返回错误（状态码：401）", result.ErrorMessage)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "不应重试")
}

func TestTranslateServerErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"Server is busy"}}`))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, "翻译服务返回错误（状态码：503）", result.ErrorMessage)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTranslateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("   ")))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "翻译服务未返回有效结果", result.ErrorMessage)
}

func TestTranslateStripsReasoning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("<think>\nThe user wants Chinese.\n</think>\n\n你好")))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusSuccess, result.Status)
	assert.Equal(t, "你好", result.TranslatedText)
}

func TestTranslateOnlyReasoning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("<think>still thinking</think>\n")))
	}))
	defer server.Close()

	result := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, "翻译服务未返回有效结果", result.ErrorMessage)
}

func TestTranslateKeepsTagsInText(t *testing.T) {
	replies := []string{
		"Use the <think> element to mark internal notes.",
		"The <reasoning>tag</reasoning> wraps the argument.",
	}

	for _, reply := range replies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(completion(reply)))
		}))

		result := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil).Translate(context.Background(), "Hello")
		server.Close()

		assert.Equal(t, providers.StatusSuccess, result.Status)
		assert.Equal(t, reply, result.TranslatedText)
	}
}

func TestTranslateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()

	cfg := Config{APIKey: "sk-test", BaseURL: server.URL}
	cfg.Timeout = 100 * time.Millisecond

	result := New(cfg, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusTimeout, result.Status)
	assert.Equal(t, "翻译请求超时，请检查网络连接后重试", result.ErrorMessage)
	assert.GreaterOrEqual(t, result.ResponseTime, int64(100))
	assert.Less(t, result.ResponseTime, int64(3000))
}

func TestNewDefaults(t *testing.T) {
	p := New(Config{APIKey: "sk-test"}, nil)
	assert.Equal(t, DefaultBaseURL, p.config.BaseURL)
	assert.Equal(t, DefaultModel, p.config.Model)
	assert.Equal(t, DefaultTimeout, p.timeout)
	assert.Equal(t, "deepseek", p.GetName())
}
