package engine

import (
	storage "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/ucskit/v1/pkg/types"
)

// storageKey (地址,槽)组合键
type storageKey struct {
	addr types.Address
	slot types.Word
}

// undoEntry 一条可回滚的写入记录
type undoEntry struct {
	key     storageKey
	prev    types.Word
	existed bool // 写入前overlay中是否已有该键
}

// journal 外部调用的写入日志
//
// 所有写入先进overlay，调用成功后整体提交到后备存储，失败则丢弃；
// 嵌套调用帧通过快照/回滚撤销自己子树的写入。
type journal struct {
	overlay map[storageKey]types.Word
	undo    []undoEntry
}

func newJournal() *journal {
	return &journal{
		overlay: make(map[storageKey]types.Word),
	}
}

// get 查询overlay；未命中时由调用方回退到后备存储
func (j *journal) get(key storageKey) (types.Word, bool) {
	v, ok := j.overlay[key]
	return v, ok
}

// set 记录一条写入（先登记undo再更新overlay）
func (j *journal) set(key storageKey, value types.Word) {
	prev, existed := j.overlay[key]
	j.undo = append(j.undo, undoEntry{key: key, prev: prev, existed: existed})
	j.overlay[key] = value
}

// snapshot 返回当前回滚点
func (j *journal) snapshot() int {
	return len(j.undo)
}

// revertTo 回滚到指定回滚点
func (j *journal) revertTo(snap int) {
	for i := len(j.undo) - 1; i >= snap; i-- {
		e := j.undo[i]
		if e.existed {
			j.overlay[e.key] = e.prev
		} else {
			delete(j.overlay, e.key)
		}
	}
	j.undo = j.undo[:snap]
}

// writes 导出待提交写入（按首次写入的键序，取各键最终值）
func (j *journal) writes() []storage.WordWrite {
	seen := make(map[storageKey]bool, len(j.overlay))
	out := make([]storage.WordWrite, 0, len(j.overlay))
	for _, e := range j.undo {
		if seen[e.key] {
			continue
		}
		seen[e.key] = true
		out = append(out, storage.WordWrite{
			Addr:  e.key.addr,
			Slot:  e.key.slot,
			Value: j.overlay[e.key],
		})
	}
	return out
}
