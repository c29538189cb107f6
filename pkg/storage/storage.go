// Package storage 翻译缓存使用的键值存储
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store 键值存储接口，所有实现都可并发使用
type Store interface {
	// Get 批量读取，不存在的键不会出现在结果中
	Get(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set 写入单个键
	Set(ctx context.Context, key string, value []byte) error

	// Remove 批量删除，不存在的键被忽略
	Remove(ctx context.Context, keys []string) error

	// Scan 枚举所有以 prefix 开头的键值
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)

	// Close 释放底层资源
	Close() error
}

// 存储后端名称
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendValkey = "valkey"
)

// MemoryStore 内存存储，进程退出后数据丢失
type MemoryStore struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Get 批量读取
func (s *MemoryStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := s.data[key]; ok {
			result[key] = clone(value)
		}
	}
	return result, nil
}

// Set 写入
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = clone(value)
	return nil
}

// Remove 批量删除
func (s *MemoryStore) Remove(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// Scan 前缀枚举
func (s *MemoryStore) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make(map[string][]byte)
	for key, value := range s.data {
		if strings.HasPrefix(key, prefix) {
			result[key] = clone(value)
		}
	}
	return result, nil
}

// Close 内存存储无需关闭
func (s *MemoryStore) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Config 存储配置
type Config struct {
	Backend string
	Dir     string
	Valkey  ValkeyConfig
}

// Open 根据配置创建存储
func Open(cfg Config, opts ...BadgerOption) (Store, error) {
	switch cfg.Backend {
	case "", BackendBadger:
		return OpenBadger(cfg.Dir, opts...)
	case BackendValkey:
		return NewValkeyStore(cfg.Valkey)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}
