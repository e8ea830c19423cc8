package engine

import (
	"testing"

	"github.com/ucskit/v1/pkg/types"
)

func jkey(addr byte, slot uint64) storageKey {
	return storageKey{
		addr: types.Address{addr},
		slot: types.WordFromUint64(slot),
	}
}

// TestJournalOverlay 测试覆盖层读写
func TestJournalOverlay(t *testing.T) {
	j := newJournal()

	if _, ok := j.get(jkey(1, 1)); ok {
		t.Fatal("空日志不应命中")
	}

	j.set(jkey(1, 1), types.WordFromUint64(10))
	j.set(jkey(1, 1), types.WordFromUint64(20))

	v, ok := j.get(jkey(1, 1))
	if !ok || v != types.WordFromUint64(20) {
		t.Errorf("覆盖写后期望20, 实际: %s (命中=%v)", v.Hex(), ok)
	}
}

// TestJournalRevert 测试回滚到快照点
func TestJournalRevert(t *testing.T) {
	j := newJournal()

	j.set(jkey(1, 1), types.WordFromUint64(10))
	mark := j.snapshot()
	j.set(jkey(1, 1), types.WordFromUint64(20))
	j.set(jkey(1, 2), types.WordFromUint64(30))

	j.revertTo(mark)

	v, ok := j.get(jkey(1, 1))
	if !ok || v != types.WordFromUint64(10) {
		t.Errorf("回滚后槽1应恢复为10, 实际: %s (命中=%v)", v.Hex(), ok)
	}
	if _, ok := j.get(jkey(1, 2)); ok {
		t.Error("回滚后槽2不应存在")
	}
}

// TestJournalNestedRevert 测试多层快照的逐层回滚
func TestJournalNestedRevert(t *testing.T) {
	j := newJournal()

	j.set(jkey(1, 1), types.WordFromUint64(1))
	outer := j.snapshot()
	j.set(jkey(1, 2), types.WordFromUint64(2))
	inner := j.snapshot()
	j.set(jkey(1, 3), types.WordFromUint64(3))

	j.revertTo(inner)
	if _, ok := j.get(jkey(1, 3)); ok {
		t.Error("内层回滚后槽3不应存在")
	}
	if _, ok := j.get(jkey(1, 2)); !ok {
		t.Error("内层回滚不应波及槽2")
	}

	j.revertTo(outer)
	if _, ok := j.get(jkey(1, 2)); ok {
		t.Error("外层回滚后槽2不应存在")
	}
	if _, ok := j.get(jkey(1, 1)); !ok {
		t.Error("外层回滚不应波及槽1")
	}
}

// TestJournalWritesOrderAndFinalValues 测试提交集按首写顺序携带终值
func TestJournalWritesOrderAndFinalValues(t *testing.T) {
	j := newJournal()

	j.set(jkey(1, 5), types.WordFromUint64(50))
	j.set(jkey(1, 3), types.WordFromUint64(30))
	j.set(jkey(1, 5), types.WordFromUint64(55)) // 覆盖写不改变顺序

	writes := j.writes()
	if len(writes) != 2 {
		t.Fatalf("提交集大小期望2, 实际%d", len(writes))
	}
	if writes[0].Slot != types.WordFromUint64(5) || writes[0].Value != types.WordFromUint64(55) {
		t.Errorf("首条提交不一致: slot=%s value=%s", writes[0].Slot.Hex(), writes[0].Value.Hex())
	}
	if writes[1].Slot != types.WordFromUint64(3) || writes[1].Value != types.WordFromUint64(30) {
		t.Errorf("次条提交不一致: slot=%s value=%s", writes[1].Slot.Hex(), writes[1].Value.Hex())
	}
}
