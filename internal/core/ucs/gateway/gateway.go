// Package gateway 提供能力令牌门控的存储访问中介
//
// 本包是通往原始持久化读写的唯一路径：任何触碰持久化状态的函数都
// 必须以 Capability 作为首个参数。Capability 的构造函数不对外导出，
// 只有执行引擎（调度运行时）在每次外部调用入口铸造一枚，调用结束
// 即作废——"这个函数会触碰持久化状态"因此可以从签名直接看出，且
// 无法绕过中介。
//
// 铸造路径受 StateAccessor 的持有权保护：StateAccessor 由执行引擎
// 内部实现并持有，合约代码只拿得到已铸造的 Capability，拿不到
// StateAccessor，因此无法自行开启会话。
package gateway

import (
	"github.com/google/uuid"

	"github.com/ucskit/v1/internal/core/ucs/slot"
	"github.com/ucskit/v1/pkg/types"
)

// StateAccessor 执行引擎暴露给网关的状态访问点
//
// 读写作用于当前调用帧的存储作用域（上下文保持调用下为代理自身），
// 只读帧中的写入由实现方拒绝。
type StateAccessor interface {
	// StorageRead 读取当前作用域的一个存储槽
	StorageRead(slot types.Word) (types.Word, error)

	// StorageWrite 写入当前作用域的一个存储槽
	StorageWrite(slot types.Word, value types.Word) error

	// HashKeccak 计算Keccak-256哈希（计入计算预算）
	HashKeccak(data []byte) (types.Word, error)
}

// Session 一次外部调用的存储访问会话
//
// 由执行引擎在调用入口开启、调用出口关闭；关闭后由其铸造的
// Capability 全部失效。
type Session struct {
	id       string
	accessor StateAccessor
	deriver  *slot.Deriver
	active   bool
}

// Capability 不可伪造的存储访问令牌
//
// 零值无效；唯一的铸造路径是 OpenSession。按值传递，
// 调用作用域生命周期，绝不持久化。
type Capability struct {
	session *Session
}

// OpenSession 开启存储访问会话并铸造能力令牌
//
// 仅供执行引擎使用：合约代码不持有 StateAccessor，无法到达这里。
func OpenSession(accessor StateAccessor, deriver *slot.Deriver) (*Session, Capability) {
	if deriver == nil {
		deriver = slot.NewDeriver(nil)
	}
	s := &Session{
		id:       uuid.NewString(),
		accessor: accessor,
		deriver:  deriver,
		active:   true,
	}
	return s, Capability{session: s}
}

// Close 关闭会话，作废所有由其铸造的能力令牌
func (s *Session) Close() {
	s.active = false
}

// ID 返回会话标识（日志与追踪用）
func (s *Session) ID() string {
	return s.id
}

// Valid 检查令牌是否有效（会话存在且未关闭）
func (c Capability) Valid() bool {
	return c.session != nil && c.session.active
}

// SessionID 返回铸造本令牌的会话标识；无效令牌返回空串
func (c Capability) SessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.id
}

// checked 校验令牌并返回其会话
func (c Capability) checked() (*Session, error) {
	if c.session == nil {
		return nil, ErrInvalidCapability
	}
	if !c.session.active {
		return nil, ErrSessionClosed
	}
	return c.session, nil
}

// ==================== 原语操作 ====================

// Read 读取一个存储槽
func Read(cap Capability, slotAddr types.Word) (types.Word, error) {
	s, err := cap.checked()
	if err != nil {
		return types.ZeroWord, err
	}
	return s.accessor.StorageRead(slotAddr)
}

// Write 写入一个存储槽
func Write(cap Capability, slotAddr types.Word, value types.Word) error {
	s, err := cap.checked()
	if err != nil {
		return err
	}
	return s.accessor.StorageWrite(slotAddr, value)
}

// Hash 计算Keccak-256哈希
func Hash(cap Capability, data []byte) (types.Word, error) {
	s, err := cap.checked()
	if err != nil {
		return types.ZeroWord, err
	}
	return s.accessor.HashKeccak(data)
}

// ==================== 组合操作 ====================

// ReadMapping 读取映射条目: slot = keccak256(key ‖ base)
func ReadMapping(cap Capability, base types.Word, key types.Word) (types.Word, error) {
	s, err := cap.checked()
	if err != nil {
		return types.ZeroWord, err
	}
	return s.accessor.StorageRead(s.deriver.MappingSlot(base, key))
}

// WriteMapping 写入映射条目
func WriteMapping(cap Capability, base types.Word, key types.Word, value types.Word) error {
	s, err := cap.checked()
	if err != nil {
		return err
	}
	return s.accessor.StorageWrite(s.deriver.MappingSlot(base, key), value)
}

// ReadMapping2 读取二级映射条目
func ReadMapping2(cap Capability, base types.Word, key1, key2 types.Word) (types.Word, error) {
	s, err := cap.checked()
	if err != nil {
		return types.ZeroWord, err
	}
	return s.accessor.StorageRead(s.deriver.NestedMappingSlot(base, key1, key2))
}

// WriteMapping2 写入二级映射条目
func WriteMapping2(cap Capability, base types.Word, key1, key2, value types.Word) error {
	s, err := cap.checked()
	if err != nil {
		return err
	}
	return s.accessor.StorageWrite(s.deriver.NestedMappingSlot(base, key1, key2), value)
}

// ReadArrayLen 读取数组长度（存于base槽本身）
func ReadArrayLen(cap Capability, base types.Word) (types.Word, error) {
	return Read(cap, base)
}

// ReadArrayElem 读取数组元素
func ReadArrayElem(cap Capability, base types.Word, index uint64, elemSize uint64) (types.Word, error) {
	s, err := cap.checked()
	if err != nil {
		return types.ZeroWord, err
	}
	return s.accessor.StorageRead(s.deriver.ArrayElementSlot(base, index, elemSize))
}

// WriteArrayElem 写入数组元素
func WriteArrayElem(cap Capability, base types.Word, index uint64, elemSize uint64, value types.Word) error {
	s, err := cap.checked()
	if err != nil {
		return err
	}
	return s.accessor.StorageWrite(s.deriver.ArrayElementSlot(base, index, elemSize), value)
}
