package dispatch

import (
	"fmt"

	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/pkg/types"
)

// Handler 条目处理函数
//
// dec的游标已置于选择器之后，按参数声明顺序依次解码即可。
type Handler func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error)

// Entry 分发表条目：一个选择器绑定一个处理动作
//
// 不同签名的处理器通过统一接口共存于同一张表（标签联合模式）。
type Entry interface {
	// Selector 条目绑定的选择器
	Selector() types.Selector

	// Signature 条目绑定的签名
	Signature() Sig

	// Invoke 执行处理动作
	Invoke(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error)
}

// boundEntry Entry的默认实现
type boundEntry struct {
	sig      Sig
	selector types.Selector
	handler  Handler
}

// 编译时检查：确保boundEntry实现了Entry接口
var _ Entry = (*boundEntry)(nil)

func (e *boundEntry) Selector() types.Selector { return e.selector }
func (e *boundEntry) Signature() Sig           { return e.sig }

func (e *boundEntry) Invoke(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
	return e.handler(env, cap, dec)
}

// Bind 由签名推导选择器并绑定处理器
func Bind(sig Sig, handler Handler) Entry {
	return &boundEntry{
		sig:      sig,
		selector: DeriveSelector(sig),
		handler:  handler,
	}
}

// BindLiteral 以字面量选择器绑定处理器
//
// 构造时按签名重新推导并比对字面量，不一致返回ErrSelectorMismatch。
func BindLiteral(sig Sig, literal types.Selector, handler Handler) (Entry, error) {
	if err := CheckSelector(sig, literal); err != nil {
		return nil, err
	}
	return &boundEntry{
		sig:      sig,
		selector: literal,
		handler:  handler,
	}, nil
}

// Table 有序分发表
//
// 线性扫描取首个选择器相等的条目；无匹配则以UnknownSelector失败
// （空返回数据）。
type Table struct {
	entries []Entry
}

// NewTable 创建分发表
//
// 同一选择器重复注册在构造时报错，保证"每选择器至多一个活动条目"。
func NewTable(entries ...Entry) (*Table, error) {
	seen := make(map[types.Selector]Sig, len(entries))
	for _, e := range entries {
		if prev, ok := seen[e.Selector()]; ok {
			return nil, fmt.Errorf("%w: %s conflicts with %s on %s",
				ErrDuplicateSelector, e.Signature(), prev, e.Selector().Hex())
		}
		seen[e.Selector()] = e.Signature()
	}
	return &Table{entries: entries}, nil
}

// MustTable 创建分发表，冲突时panic（启动期装配用）
func MustTable(entries ...Entry) *Table {
	t, err := NewTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries 返回条目表副本
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Dispatch 按calldata头部选择器路由到首个匹配条目
func (t *Table) Dispatch(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	sel, ok := types.SelectorFromBytes(env.Calldata())
	if !ok {
		// calldata不足4字节：无选择器可提取，同样视为未知选择器
		return nil, ErrUnknownSelector
	}
	for _, e := range t.entries {
		if e.Selector() == sel {
			return e.Invoke(env, cap, NewDecoder(env.Calldata()))
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSelector, sel.Hex())
}
