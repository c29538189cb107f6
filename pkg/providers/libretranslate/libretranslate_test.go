package libretranslate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerdneilsfield/go-selection-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Good morning", req.Q)
		assert.Equal(t, "auto", req.Source)
		assert.Equal(t, "zh", req.Target)
		assert.Equal(t, "text", req.Format)
		assert.Equal(t, "key-123", req.APIKey)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"translatedText":   "早上好",
			"detectedLanguage": map[string]interface{}{"confidence": 92.0, "language": "en"},
		})
	}))
	defer server.Close()

	p := New(Config{URL: server.URL, APIKey: "key-123"}, nil)
	result := p.Translate(context.Background(), "Good morning")

	require.True(t, result.OK(), result.ErrorMessage)
	assert.Equal(t, "早上好", result.TranslatedText)
}

func TestTranslateChineseAndTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)

		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "zh", raw["source"])
		assert.Equal(t, "en", raw["target"])
		_, hasKey := raw["api_key"]
		assert.False(t, hasKey, "api_key 为空时不应发送")

		_, _ = w.Write([]byte(`{"translatedText":"Good morning"}`))
	}))
	defer server.Close()

	p := New(Config{URL: server.URL + "/"}, nil)
	result := p.Translate(context.Background(), "早上好")
	assert.Equal(t, "Good morning", result.TranslatedText)
}

func TestTranslateStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusForbidden, "API密钥无效或已过期，请检查配置"},
		{http.StatusTooManyRequests, "请求过于频繁，请稍后重试"},
		{http.StatusInternalServerError, "LibreTranslate服务返回错误（状态码：500）"},
		{http.StatusBadRequest, "LibreTranslate服务返回错误（状态码：400）"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			result := New(Config{URL: server.URL}, nil).Translate(context.Background(), "Hello")
			assert.Equal(t, providers.StatusFailed, result.Status)
			assert.Equal(t, tt.want, result.ErrorMessage)
		})
	}
}

func TestTranslateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translatedText":""}`))
	}))
	defer server.Close()

	result := New(Config{URL: server.URL}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "LibreTranslate未返回有效结果", result.ErrorMessage)
}

func TestTranslateMissingURL(t *testing.T) {
	result := New(Config{URL: "   "}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "LibreTranslate配置不完整：缺少 服务地址", result.ErrorMessage)
}

func TestTranslateConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := New(Config{URL: url}, nil).Translate(context.Background(), "Hello")
	assert.Equal(t, providers.StatusFailed, result.Status)
	assert.Equal(t, "LibreTranslate服务连接失败，请检查URL配置或网络连接", result.ErrorMessage)
}

func TestLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/languages", r.URL.Path)
		_, _ = w.Write([]byte(`[{"code":"en","name":"English","targets":["zh"]},{"code":"zh","name":"Chinese","targets":["en"]}]`))
	}))
	defer server.Close()

	langs, err := New(Config{URL: server.URL}, nil).Languages(context.Background())
	require.NoError(t, err)
	require.Len(t, langs, 2)
	assert.Equal(t, "en", langs[0].Code)
	assert.Equal(t, []string{"en"}, langs[1].Targets)
}

func TestLanguagesErrors(t *testing.T) {
	_, err := New(Config{}, nil).Languages(context.Background())
	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, providers.KindConfiguration, perr.Kind)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err = New(Config{URL: server.URL}, nil).Languages(context.Background())
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "403", perr.Code)
}
