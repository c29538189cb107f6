package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nerdneilsfield/go-selection-translator/pkg/cache"
	"github.com/nerdneilsfield/go-selection-translator/pkg/ratelimit"
	"github.com/nerdneilsfield/go-selection-translator/pkg/storage"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 TRANSLATOR_SERVER_ADDR
const EnvPrefix = "TRANSLATOR"

// CacheConfig 翻译缓存配置
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // badger / valkey / memory
	Dir        string        `mapstructure:"dir"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// ServerConfig 本地 HTTP 服务配置
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
}

// Config 程序运行配置。翻译服务的设置单独保存在 SettingsFile 中。
type Config struct {
	Debug        bool                 `mapstructure:"debug"`
	SettingsFile string               `mapstructure:"settings_file"`
	Cache        CacheConfig          `mapstructure:"cache"`
	Valkey       storage.ValkeyConfig `mapstructure:"valkey"`
	Server       ServerConfig         `mapstructure:"server"`
	RateLimit    RateLimitConfig      `mapstructure:"rate_limit"`
}

// LoadConfig 加载配置，优先级：环境变量 > 配置文件 > 默认值。
// 当前目录下的 .env 会先被载入环境变量。
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".translator")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Cache.Dir == "" {
		config.Cache.Dir = getDefaultCacheDir()
	}
	if config.SettingsFile == "" {
		config.SettingsFile = getDefaultSettingsFile()
	}

	return &config, nil
}

// NewDefaultConfig 返回全部使用默认值的配置
func NewDefaultConfig() *Config {
	return &Config{
		SettingsFile: getDefaultSettingsFile(),
		Cache: CacheConfig{
			Backend:    storage.BackendBadger,
			Dir:        getDefaultCacheDir(),
			TTL:        cache.DefaultTTL,
			MaxEntries: cache.DefaultMaxEntries,
		},
		Valkey: storage.ValkeyConfig{
			KeyPrefix:      "translator",
			ConnectTimeout: storage.DefaultConnectTimeout,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8765"},
		RateLimit: RateLimitConfig{
			PerMinute: ratelimit.DefaultPerMinute,
			PerHour:   ratelimit.DefaultPerHour,
		},
	}
}

// StorageConfig 转换为存储层配置
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Valkey:  c.Valkey,
	}
}

func getDefaultCacheDir() string {
	// 优先使用系统缓存目录
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		return filepath.Join(cacheDir, "translator")
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".translator", "cache")
	}

	return "./translator-cache"
}

func getDefaultSettingsFile() string {
	configDir, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(configDir, "translator", "settings.yaml")
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".translator", "settings.yaml")
	}

	return "./translator-settings.yaml"
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("debug", false)
	v.SetDefault("settings_file", "")

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)

	v.SetDefault("valkey.address", "")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("valkey.key_prefix", d.Valkey.KeyPrefix)
	v.SetDefault("valkey.connect_timeout", d.Valkey.ConnectTimeout)

	v.SetDefault("server.addr", d.Server.Addr)

	v.SetDefault("rate_limit.per_minute", d.RateLimit.PerMinute)
	v.SetDefault("rate_limit.per_hour", d.RateLimit.PerHour)
}
