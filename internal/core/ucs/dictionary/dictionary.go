// Package dictionary 实现选择器→实现地址的注册表合约
//
// 字典自身的持久化状态经存储网关落在两个固定逻辑槽上：owner占
// 槽0，implementations映射基槽占槽1（条目槽按mappingSlot推导）。
// 变更操作由owner门控；getImplementation无访问控制，任何人可查。
// 把某选择器的实现设为零地址即注销该选择器（后续查询返回零，
// 代理转发该选择器将失败）。
package dictionary

import (
	"github.com/ucskit/v1/internal/core/ucs/dispatch"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/internal/core/ucs/schema"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
	"github.com/ucskit/v1/pkg/types"
)

// ==================== ABI签名 ====================

var (
	// SigGetImplementation getImplementation(bytes4) → address
	SigGetImplementation = dispatch.NewSig("getImplementation", "bytes4").WithReturns("address")

	// SigSetImplementation setImplementation(bytes4,address)
	SigSetImplementation = dispatch.NewSig("setImplementation", "bytes4", "address")

	// SigBatchSetImplementation batchSetImplementation(bytes4[],address[])
	SigBatchSetImplementation = dispatch.NewSig("batchSetImplementation", "bytes4[]", "address[]")

	// SigTransferOwnership transferOwnership(address)
	SigTransferOwnership = dispatch.NewSig("transferOwnership", "address")

	// SigInitializeOwner initializeOwner(address)
	SigInitializeOwner = dispatch.NewSig("initializeOwner", "address")
)

// SelectorGetImplementation 代理解析实现地址时使用的选择器
var SelectorGetImplementation = dispatch.DeriveSelector(SigGetImplementation)

// ImplementationSetEvent 实现注册/覆盖/注销事件载荷
type ImplementationSetEvent struct {
	Selector       types.Selector
	Implementation types.Address
}

// OwnershipTransferredEvent 所有权转移事件载荷
type OwnershipTransferredEvent struct {
	Previous types.Address
	New      types.Address
}

// Dictionary 选择器注册表合约
type Dictionary struct {
	layout *schema.Schema
	table  *dispatch.Table
	bus    eventIntf.Bus
}

// 编译时检查：确保Dictionary实现了Contract接口
var _ ifaces.Contract = (*Dictionary)(nil)

// New 创建字典合约
//
// 参数:
//   - deriver: 槽推导器（字典的映射条目槽由它推导）
//   - bus: 事件总线，可为nil（不发布事件）
//
// 返回:
//   - *Dictionary: 字典合约实例
func New(deriver *slot.Deriver, bus eventIntf.Bus) *Dictionary {
	layout := schema.NewAt(types.ZeroWord, deriver)
	// 固定布局：owner槽0，implementations映射基槽1
	_ = layout.AddValue("owner", "address")
	_ = layout.AddMapping("implementations", "bytes4", "address")
	layout.Seal()

	d := &Dictionary{layout: layout, bus: bus}
	d.table = dispatch.MustTable(
		dispatch.Bind(SigGetImplementation, d.getImplementation),
		dispatch.Bind(SigSetImplementation, d.setImplementation),
		dispatch.Bind(SigBatchSetImplementation, d.batchSetImplementation),
		dispatch.Bind(SigTransferOwnership, d.transferOwnership),
		dispatch.Bind(SigInitializeOwner, d.initializeOwner),
	)
	return d
}

// Run 实现Contract接口
func (d *Dictionary) Run(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	return d.table.Dispatch(env, cap)
}

// owner 读取当前所有者
func (d *Dictionary) owner(cap gateway.Capability) (types.Address, error) {
	w, err := d.layout.ReadValue(cap, "owner")
	if err != nil {
		return types.ZeroAddress, err
	}
	return w.Address(), nil
}

// requireOwner 校验调用者为当前所有者
func (d *Dictionary) requireOwner(env ifaces.CallContext, cap gateway.Capability) error {
	owner, err := d.owner(cap)
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return ErrUnauthorized
	}
	return nil
}

// setEntry 写入一条选择器映射并发布事件
func (d *Dictionary) setEntry(cap gateway.Capability, sel types.Selector, impl types.Address) error {
	if err := d.layout.WriteMapping(cap, "implementations", dispatch.SelectorWord(sel), impl.Word()); err != nil {
		return err
	}
	if d.bus != nil {
		d.bus.Publish(eventIntf.EventImplementationSet, ImplementationSetEvent{
			Selector:       sel,
			Implementation: impl,
		})
	}
	return nil
}

// ==================== 处理器 ====================

// getImplementation 查询选择器绑定的实现地址，未注册返回零地址
func (d *Dictionary) getImplementation(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	sel, err := dec.SelectorArg()
	if err != nil {
		return nil, err
	}
	w, err := d.layout.ReadMapping(cap, "implementations", dispatch.SelectorWord(sel))
	if err != nil {
		return nil, err
	}
	out := w.Address().Word()
	return out[:], nil
}

// setImplementation 注册/覆盖/注销一条选择器映射（owner门控）
func (d *Dictionary) setImplementation(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	sel, err := dec.SelectorArg()
	if err != nil {
		return nil, err
	}
	impl, err := dec.Address()
	if err != nil {
		return nil, err
	}
	if err := d.requireOwner(env, cap); err != nil {
		return nil, err
	}
	if err := d.setEntry(cap, sel, impl); err != nil {
		return nil, err
	}
	return nil, nil
}

// batchSetImplementation 批量注册选择器映射
//
// 线格式：选择器数组长度N、N个选择器字、地址数组长度M、M个地址字。
// 逐条顺序应用，条目之间无额外原子性——但任一条失败会令整个调用
// 失败，调用级原子性保证不留下部分条目。
func (d *Dictionary) batchSetImplementation(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	selCount, err := dec.Uint64()
	if err != nil {
		return nil, err
	}
	sels := make([]types.Selector, 0, selCount)
	for i := uint64(0); i < selCount; i++ {
		sel, err := dec.SelectorArg()
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	implCount, err := dec.Uint64()
	if err != nil {
		return nil, err
	}
	if implCount != selCount {
		return nil, ErrLengthMismatch
	}
	if err := d.requireOwner(env, cap); err != nil {
		return nil, err
	}
	for i := uint64(0); i < implCount; i++ {
		impl, err := dec.Address()
		if err != nil {
			return nil, err
		}
		if err := d.setEntry(cap, sels[i], impl); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// transferOwnership 转移所有权（owner门控，无条件覆盖）
func (d *Dictionary) transferOwnership(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	newOwner, err := dec.Address()
	if err != nil {
		return nil, err
	}
	prev, err := d.owner(cap)
	if err != nil {
		return nil, err
	}
	if env.Caller() != prev {
		return nil, ErrUnauthorized
	}
	if err := d.layout.WriteValue(cap, "owner", newOwner.Word()); err != nil {
		return nil, err
	}
	if d.bus != nil {
		d.bus.Publish(eventIntf.EventOwnershipTransferred, OwnershipTransferredEvent{
			Previous: prev,
			New:      newOwner,
		})
	}
	return nil, nil
}

// initializeOwner 一次性初始化所有者
// 仅当当前所有者为零地址（从未初始化）时成功
func (d *Dictionary) initializeOwner(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	owner, err := dec.Address()
	if err != nil {
		return nil, err
	}
	current, err := d.owner(cap)
	if err != nil {
		return nil, err
	}
	if !current.IsZero() {
		return nil, ErrAlreadyInitialized
	}
	if err := d.layout.WriteValue(cap, "owner", owner.Word()); err != nil {
		return nil, err
	}
	if d.bus != nil {
		d.bus.Publish(eventIntf.EventOwnershipTransferred, OwnershipTransferredEvent{
			Previous: types.ZeroAddress,
			New:      owner,
		})
	}
	return nil, nil
}
