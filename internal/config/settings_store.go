package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/nerdneilsfield/go-selection-translator/pkg/translation"
	"github.com/spf13/viper"
)

// FileSettingsStore 把翻译设置保存在 YAML 文件中
type FileSettingsStore struct {
	path string
	mu   sync.Mutex
}

var _ translation.SettingsStore = (*FileSettingsStore)(nil)

// NewFileSettingsStore 创建文件设置存储，文件可以暂不存在
func NewFileSettingsStore(path string) *FileSettingsStore {
	return &FileSettingsStore{path: path}
}

// Path 设置文件路径
func (s *FileSettingsStore) Path() string {
	return s.path
}

// Load 读取设置，文件不存在时返回 nil, nil
func (s *FileSettingsStore) Load(ctx context.Context) (*translation.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", s.path, err)
	}

	var settings translation.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}
	return &settings, nil
}

// Save 覆盖写入设置文件
func (s *FileSettingsStore) Save(ctx context.Context, settings *translation.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if settings == nil {
		return errors.New("settings must not be nil")
	}

	values, err := settingsToMap(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.MergeConfigMap(values); err != nil {
		return err
	}
	return v.WriteConfigAs(s.path)
}

// settingsToMap 按 json 标签展开，密钥等字段名与界面保持一致
func settingsToMap(settings *translation.Settings) (map[string]interface{}, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
