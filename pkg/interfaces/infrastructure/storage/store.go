// Package storage 提供UCS运行时的持久化字存储接口定义
//
// WordStore 是执行引擎的底层键值存储：以(地址,槽)为键，以32字节字为值。
// 实现位于 internal/core/infrastructure/storage/{memory,badger}。
//
// 职责边界：WordStore 只提供原始读写；每调用原子性（全部提交或全部丢弃）
// 由执行引擎的日志层（journal）负责，提交时通过 Batch 一次性落盘。
package storage

import (
	"context"

	"github.com/ucskit/v1/pkg/types"
)

// WordStore 定义字存储接口
type WordStore interface {
	// Get 读取一个存储槽；未写入过的槽返回零字（不是错误）
	Get(ctx context.Context, addr types.Address, slot types.Word) (types.Word, error)

	// Set 写入一个存储槽
	Set(ctx context.Context, addr types.Address, slot types.Word, value types.Word) error

	// Batch 原子地应用一组写入（外部调用成功提交时使用）
	Batch(ctx context.Context, writes []WordWrite) error

	// Close 关闭存储并释放资源
	Close() error
}

// WordWrite 单条待提交写入
type WordWrite struct {
	Addr  types.Address
	Slot  types.Word
	Value types.Word
}
