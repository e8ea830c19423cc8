// Package memory 提供基于内存map的字存储实现
//
// 相比进程内缓存库（bigcache等），共识关键的字状态不允许任何形式的
// 条目淘汰或过期，因此这里使用受读写锁保护的普通map。
package memory

import (
	"context"
	"fmt"
	"sync"

	log "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/ucskit/v1/pkg/types"
)

// storageKey (地址,槽)组合键
type storageKey struct {
	addr types.Address
	slot types.Word
}

// Store 实现了WordStore接口，基于内存map提供字存储
type Store struct {
	mu     sync.RWMutex
	words  map[storageKey]types.Word
	logger log.Logger
	closed bool
}

// 编译时检查：确保Store实现了storage.WordStore接口
var _ storage.WordStore = (*Store)(nil)

// New 创建一个新的内存字存储实例
func New(logger log.Logger) *Store {
	return &Store{
		words:  make(map[storageKey]types.Word),
		logger: logger,
	}
}

// Get 读取一个存储槽；未写入过的槽返回零字
func (s *Store) Get(_ context.Context, addr types.Address, slot types.Word) (types.Word, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.ZeroWord, fmt.Errorf("memory store closed")
	}
	// 缺失键返回零字：与持久化键值存储的语义一致
	return s.words[storageKey{addr: addr, slot: slot}], nil
}

// Set 写入一个存储槽
func (s *Store) Set(_ context.Context, addr types.Address, slot types.Word, value types.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	s.words[storageKey{addr: addr, slot: slot}] = value
	return nil
}

// Batch 原子地应用一组写入
func (s *Store) Batch(_ context.Context, writes []storage.WordWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	for _, w := range writes {
		s.words[storageKey{addr: w.Addr, slot: w.Slot}] = w.Value
	}
	return nil
}

// Close 关闭存储
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		if s.logger != nil {
			s.logger.Info("内存字存储已关闭，跳过重复关闭")
		}
		return nil
	}
	s.closed = true
	s.words = nil
	return nil
}

// Len 返回当前存储的槽数量（测试与诊断用）
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}
