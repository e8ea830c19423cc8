// Package badger 提供基于BadgerDB的字存储实现
package badger

import (
	"context"
	"fmt"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"

	log "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/ucskit/v1/pkg/types"
)

// 键布局：'w' ‖ 20字节地址 ‖ 32字节槽 → 32字节值
const keyPrefix = 'w'

// Store 实现了WordStore接口，基于BadgerDB提供持久化字存储
type Store struct {
	db     *badgerdb.DB
	logger log.Logger
}

// 编译时检查：确保Store实现了storage.WordStore接口
var _ storage.WordStore = (*Store)(nil)

// New 创建新的BadgerDB字存储实例
func New(dataDir string, logger log.Logger) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("badger data dir is empty")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create badger data dir: %w", err)
	}

	opts := badgerdb.DefaultOptions(dataDir)
	opts.Logger = nil
	// 字状态写入量小但必须落盘：同步写避免宿主崩溃丢提交
	opts.SyncWrites = true
	// 值固定32字节，无需大value log映射
	opts.ValueLogFileSize = 64 << 20

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	if logger != nil {
		logger.Infof("BadgerDB字存储已初始化: dir=%s", dataDir)
	}

	return &Store{db: db, logger: logger}, nil
}

// storeKey 编码(地址,槽)为badger键
func storeKey(addr types.Address, slot types.Word) []byte {
	key := make([]byte, 1+types.AddressSize+types.WordSize)
	key[0] = keyPrefix
	copy(key[1:], addr[:])
	copy(key[1+types.AddressSize:], slot[:])
	return key
}

// Get 读取一个存储槽；未写入过的槽返回零字
func (s *Store) Get(_ context.Context, addr types.Address, slot types.Word) (types.Word, error) {
	var value types.Word
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(storeKey(addr, slot))
		if err == badgerdb.ErrKeyNotFound {
			return nil // 缺失键即零字
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != types.WordSize {
				return fmt.Errorf("corrupt word value: %d bytes", len(val))
			}
			copy(value[:], val)
			return nil
		})
	})
	if err != nil {
		return types.ZeroWord, fmt.Errorf("badger get: %w", err)
	}
	return value, nil
}

// Set 写入一个存储槽
func (s *Store) Set(_ context.Context, addr types.Address, slot types.Word, value types.Word) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(storeKey(addr, slot), value.Bytes())
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Batch 原子地应用一组写入
//
// 一次外部调用的全部写入通过单个badger事务提交，保持
// "全部可见或全部不可见"的调用原子性。
func (s *Store) Batch(_ context.Context, writes []storage.WordWrite) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		for _, w := range writes {
			if err := txn.Set(storeKey(w.Addr, w.Slot), w.Value.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger batch: %w", err)
	}
	return nil
}

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("关闭BadgerDB字存储")
	}
	return s.db.Close()
}
