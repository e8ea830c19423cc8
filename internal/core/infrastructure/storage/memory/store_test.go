package memory

import (
	"context"
	"testing"

	storage "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/ucskit/v1/pkg/types"
)

// TestGetMissingReturnsZeroWord 测试缺失槽读出零字而非错误
func TestGetMissingReturnsZeroWord(t *testing.T) {
	s := New(nil)
	defer s.Close()

	got, err := s.Get(context.Background(), types.Address{1}, types.WordFromUint64(1))
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("缺失槽期望零字, 实际: %s", got.Hex())
	}
}

// TestSetGetRoundtrip 测试写读往返
func TestSetGetRoundtrip(t *testing.T) {
	s := New(nil)
	defer s.Close()

	addr := types.Address{0xaa}
	slot := types.WordFromUint64(7)
	value := types.WordFromUint64(42)

	if err := s.Set(context.Background(), addr, slot, value); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := s.Get(context.Background(), addr, slot)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if got != value {
		t.Errorf("回读不一致: %s", got.Hex())
	}

	// 地址隔离：同槽不同地址互不可见
	got, _ = s.Get(context.Background(), types.Address{0xbb}, slot)
	if !got.IsZero() {
		t.Errorf("不同地址不应共享槽, 实际: %s", got.Hex())
	}
}

// TestBatchApply 测试批量写入
func TestBatchApply(t *testing.T) {
	s := New(nil)
	defer s.Close()

	writes := []storage.WordWrite{
		{Addr: types.Address{1}, Slot: types.WordFromUint64(1), Value: types.WordFromUint64(10)},
		{Addr: types.Address{1}, Slot: types.WordFromUint64(2), Value: types.WordFromUint64(20)},
		{Addr: types.Address{2}, Slot: types.WordFromUint64(1), Value: types.WordFromUint64(30)},
	}
	if err := s.Batch(context.Background(), writes); err != nil {
		t.Fatalf("批量写入失败: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("槽数量期望3, 实际%d", s.Len())
	}
	for _, w := range writes {
		got, _ := s.Get(context.Background(), w.Addr, w.Slot)
		if got != w.Value {
			t.Errorf("批量回读不一致: slot=%s 实际%s", w.Slot.Hex(), got.Hex())
		}
	}
}

// TestClosedStoreRejected 测试关闭后的操作被拒绝
func TestClosedStoreRejected(t *testing.T) {
	s := New(nil)
	if err := s.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}
	// 重复关闭幂等
	if err := s.Close(); err != nil {
		t.Errorf("重复关闭应为空操作: %v", err)
	}

	if _, err := s.Get(context.Background(), types.Address{1}, types.ZeroWord); err == nil {
		t.Error("关闭后读取应失败")
	}
	if err := s.Set(context.Background(), types.Address{1}, types.ZeroWord, types.ZeroWord); err == nil {
		t.Error("关闭后写入应失败")
	}
}
