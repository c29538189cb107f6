package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"
)

// DefaultConnectTimeout 初次连接的最长等待时间
const DefaultConnectTimeout = 5 * time.Second

// scanBatch 每次 SCAN 返回的建议数量
const scanBatch = 200

// ValkeyConfig Valkey/Redis 连接配置
type ValkeyConfig struct {
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ValkeyStore 基于 Valkey 的共享存储，多个进程可共用同一份缓存
type ValkeyStore struct {
	client    valkeylib.Client
	keyPrefix string
}

// NewValkeyStore 连接 Valkey 并用 PING 确认可用
func NewValkeyStore(cfg ValkeyConfig) (*ValkeyStore, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("valkey address must be specified")
	}

	opts := valkeylib.ClientOption{
		InitAddress: []string{cfg.Address},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkeylib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping valkey (timeout: %v): %w", timeout, err)
	}

	return newValkeyStore(client, cfg.KeyPrefix), nil
}

func newValkeyStore(client valkeylib.Client, prefix string) *ValkeyStore {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &ValkeyStore{client: client, keyPrefix: prefix}
}

func (s *ValkeyStore) fullKey(key string) string {
	return s.keyPrefix + key
}

// Get 使用 MGET 批量读取
func (s *ValkeyStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.fullKey(key)
	}

	values, err := s.client.Do(ctx, s.client.B().Mget().Key(full...).Build()).ToArray()
	if err != nil {
		return nil, fmt.Errorf("valkey mget: %w", err)
	}
	for i, msg := range values {
		if i >= len(keys) {
			break
		}
		data, err := msg.AsBytes()
		if err != nil {
			if valkeylib.IsValkeyNil(err) {
				continue
			}
			return nil, fmt.Errorf("valkey mget: %w", err)
		}
		result[keys[i]] = data
	}
	return result, nil
}

// Set 写入，不设置过期时间（过期由缓存层判断）
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(s.fullKey(key)).Value(valkeylib.BinaryString(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set: %w", err)
	}
	return nil
}

// Remove 使用 DEL 批量删除
func (s *ValkeyStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.fullKey(key)
	}
	if err := s.client.Do(ctx, s.client.B().Del().Key(full...).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del: %w", err)
	}
	return nil
}

// Scan 使用 SCAN MATCH 枚举，再用 MGET 取值
func (s *ValkeyStore) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	pattern := s.fullKey(prefix) + "*"

	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("valkey scan: %w", err)
		}
		for _, key := range entry.Elements {
			keys = append(keys, strings.TrimPrefix(key, s.keyPrefix))
		}
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}

	result := make(map[string][]byte, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		values, err := s.Get(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			result[k] = v
		}
	}
	return result, nil
}

// Close 关闭连接
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
