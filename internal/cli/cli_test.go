package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type cliEnv struct {
	configPath   string
	settingsPath string
	libre        *httptest.Server
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	libre := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"你好"}`))
	}))
	t.Cleanup(libre.Close)

	env := &cliEnv{
		configPath:   filepath.Join(dir, "config.yaml"),
		settingsPath: filepath.Join(dir, "settings.yaml"),
		libre:        libre,
	}
	content := fmt.Sprintf("settings_file: %s\ncache:\n  backend: memory\n", env.settingsPath)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o600))
	return env
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("1.0.0", "abc123", "2025-01-01")

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) configure(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "", "settings", "set", "--provider", "libretranslate", "--libre-url", e.libre.URL)
	require.NoError(t, err)
	require.Contains(t, out, "设置已保存")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0 (commit abc123, built 2025-01-01)")
}

func TestSettingsLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "settings", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "请先配置翻译API")

	env.configure(t)
	assert.FileExists(t, env.settingsPath)

	out, err := env.run(t, "", "settings", "set", "--deepseek-api-key", "sk-abcdef", "--fallback=false")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-a****")
	assert.NotContains(t, out, "sk-abcdef")

	out, err = env.run(t, "", "settings", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"apiProvider": "libretranslate"`)
	assert.Contains(t, out, env.libre.URL)
	assert.Contains(t, out, `"enableFallback": false`)
	assert.Contains(t, out, `"enableCache": true`)

	_, err = env.run(t, "", "settings", "set", "--provider", "google")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "未知的API提供商")

	_, err = env.run(t, "", "settings", "set", "--provider", "baidu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "百度翻译配置不完整")
}

func TestSettingsTest(t *testing.T) {
	env := newCLIEnv(t)
	env.configure(t)

	out, err := env.run(t, "", "settings", "test")
	require.NoError(t, err)
	assert.Contains(t, out, "测试成功")
	assert.Contains(t, out, "你好")
}

func TestTranslateCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "", "translate", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "请先配置翻译API")

	env.configure(t)

	out, err := env.run(t, "", "translate", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "你好\n", out)

	out, err = env.run(t, "hello from stdin\n", "translate", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"translatedText": "你好"`)
	assert.Contains(t, out, `"sourceText": "hello from stdin"`)

	_, err = env.run(t, "", "translate", "hello", "--provider", "deepseek", "--no-fallback", "--no-cache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeepSeek配置不完整：缺少 API Key")
}

func TestCacheCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "条目数")

	out, err = env.run(t, "", "cache", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "已删除 0 条过期缓存")

	out, err = env.run(t, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "缓存已清空")
}

func TestQuotaAndProviders(t *testing.T) {
	env := newCLIEnv(t)
	env.configure(t)

	out, err := env.run(t, "", "quota")
	require.NoError(t, err)
	assert.Contains(t, out, "每分钟")
	assert.Contains(t, out, "30")

	out, err = env.run(t, "", "providers")
	require.NoError(t, err)
	for _, want := range []string{"baidu", "libretranslate", "deepseek", "百度翻译", "LibreTranslate"} {
		assert.Contains(t, out, want)
	}

	out, err = env.run(t, "", "providers", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestProvidersLanguages(t *testing.T) {
	env := newCLIEnv(t)

	languages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/languages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"code":"en","name":"English","targets":["zh"]},{"code":"zh","name":"Chinese","targets":["en"]}]`))
	}))
	defer languages.Close()

	_, err := env.run(t, "", "settings", "set", "--libre-url", languages.URL)
	require.NoError(t, err)

	out, err := env.run(t, "", "providers", "--languages")
	require.NoError(t, err)
	assert.Contains(t, out, "English")
	assert.Contains(t, out, "Chinese")
}
