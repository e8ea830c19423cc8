// Package proxy 实现持久化存储拥有方的转发合约与最小克隆工厂
//
// 代理自身只持久化一个字段：当前字典地址，落在由命名空间标识
// "ucs.proxy.dictionary"推导出的固定槽上。每次转发都重新向字典
// 解析实现地址，不跨调用缓存，升级即时生效。
//
// 两种转发策略：
//   - 解析后委托（默认）：取calldata前4字节选择器，只读查询字典的
//     getImplementation，零地址则失败，否则对实现做上下文保持调用，
//     结果透明传播（既不重新解释成功数据，也不吞掉失败数据）。
//   - 直接委托：整个调用原样上下文保持转发给字典自身的可执行代码，
//     由字典代码自行完成选择器分发。
package proxy

import (
	"github.com/ucskit/v1/internal/core/ucs/clone"
	"github.com/ucskit/v1/internal/core/ucs/dictionary"
	"github.com/ucskit/v1/internal/core/ucs/dispatch"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	"github.com/ucskit/v1/pkg/types"
)

// DictionaryNamespace 代理字典指针槽的命名空间标识
const DictionaryNamespace = "ucs.proxy.dictionary"

// Mode 转发策略
type Mode int

const (
	// ModeResolve 解析后委托（ERC-7546首选流程）
	ModeResolve Mode = iota

	// ModeDirect 直接委托给字典代码
	ModeDirect
)

// ==================== ABI签名 ====================

var (
	// SigInitializeProxy initializeProxy(address)
	SigInitializeProxy = dispatch.NewSig("initializeProxy", "address")

	// SigSetDictionary setDictionary(address)
	SigSetDictionary = dispatch.NewSig("setDictionary", "address")
)

var (
	selInitializeProxy = dispatch.DeriveSelector(SigInitializeProxy)
	selSetDictionary   = dispatch.DeriveSelector(SigSetDictionary)
)

// Proxy 转发合约
type Proxy struct {
	dictSlot types.Word
	mode     Mode
}

// 编译时检查：确保Proxy实现了Contract接口
var _ ifaces.Contract = (*Proxy)(nil)

// New 创建代理合约
//
// 参数:
//   - deriver: 槽推导器（字典指针槽由它推导）
//   - mode: 转发策略
//
// 返回:
//   - *Proxy: 代理合约实例
func New(deriver *slot.Deriver, mode Mode) *Proxy {
	return &Proxy{
		dictSlot: deriver.NamespaceRoot(DictionaryNamespace),
		mode:     mode,
	}
}

// Run 实现Contract接口
//
// 管理选择器（initializeProxy/setDictionary）优先于转发：同名
// 选择器若也注册在字典里会被本地处理遮蔽。其余calldata一律转发。
func (p *Proxy) Run(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	if sel, ok := types.SelectorFromBytes(env.Calldata()); ok {
		switch sel {
		case selInitializeProxy:
			return p.initializeProxy(env, cap)
		case selSetDictionary:
			return p.setDictionary(env, cap)
		}
	}
	return p.forward(env, cap)
}

// Dictionary 读取当前字典地址（零地址表示未初始化）
func (p *Proxy) Dictionary(cap gateway.Capability) (types.Address, error) {
	w, err := gateway.Read(cap, p.dictSlot)
	if err != nil {
		return types.ZeroAddress, err
	}
	return w.Address(), nil
}

// initializeProxy 一次性设置字典指针
// 指针已非零时失败（显式的一次性初始化守卫）
func (p *Proxy) initializeProxy(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	dec := dispatch.NewDecoder(env.Calldata())
	dict, err := dec.Address()
	if err != nil {
		return nil, err
	}
	current, err := p.Dictionary(cap)
	if err != nil {
		return nil, err
	}
	if !current.IsZero() {
		return nil, ErrAlreadyInitialized
	}
	if err := gateway.Write(cap, p.dictSlot, dict.Word()); err != nil {
		return nil, err
	}
	return nil, nil
}

// setDictionary 升级字典指针
// 升级路径由字典自身门控：仅接受当前字典地址作为调用者
// （所有权校验由字典侧的owner逻辑在发起升级前完成）
func (p *Proxy) setDictionary(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	dec := dispatch.NewDecoder(env.Calldata())
	dict, err := dec.Address()
	if err != nil {
		return nil, err
	}
	current, err := p.Dictionary(cap)
	if err != nil {
		return nil, err
	}
	if current.IsZero() {
		return nil, ErrNotInitialized
	}
	if env.Caller() != current {
		return nil, dictionary.ErrUnauthorized
	}
	if err := gateway.Write(cap, p.dictSlot, dict.Word()); err != nil {
		return nil, err
	}
	return nil, nil
}

// forward 按转发策略转发当前调用
func (p *Proxy) forward(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	dict, err := p.Dictionary(cap)
	if err != nil {
		return nil, err
	}
	if dict.IsZero() {
		return nil, ErrNotInitialized
	}

	if p.mode == ModeDirect {
		// 整个调用原样交给字典代码，分发由字典侧完成
		return env.DelegateCall(dict, env.Calldata())
	}

	impl, err := p.resolve(env, dict)
	if err != nil {
		return nil, err
	}
	if impl.IsZero() {
		return nil, ErrNoImplementation
	}
	// 透明传播：成功与失败数据都原样上交，不做重新解释
	return env.DelegateCall(impl, env.Calldata())
}

// resolve 向字典只读查询当前选择器的实现地址
func (p *Proxy) resolve(env ifaces.CallContext, dict types.Address) (types.Address, error) {
	sel, ok := types.SelectorFromBytes(env.Calldata())
	if !ok {
		// 无选择子可提取，等同未注册
		return types.ZeroAddress, ErrNoImplementation
	}
	query := dispatch.EncodeCall(dictionary.SelectorGetImplementation, dispatch.SelectorWord(sel))
	ret, err := env.StaticCall(dict, query)
	if err != nil {
		return types.ZeroAddress, err
	}
	if len(ret) < types.WordSize {
		return types.ZeroAddress, ErrNoImplementation
	}
	return types.WordFromBytes(ret[:types.WordSize]).Address(), nil
}

// ==================== 最小克隆工厂 ====================

// CreateMinimalProxy 部署指向target的45字节最小克隆
//
// 克隆是零配置代理：目标地址固化在代码里而非读自存储，被调用时
// 无条件对目标做上下文保持调用并透明转发结果。用于以极低成本
// 批量实例化指向同一共享字典的代理。
//
// 参数:
//   - env: 当前调用上下文（部署经由其Create原语）
//   - target: 克隆指向的目标地址
//
// 返回:
//   - types.Address: 新部署的克隆地址
//   - error: 部署失败（静态帧、预算耗尽等）
func CreateMinimalProxy(env ifaces.CallContext, target types.Address) (types.Address, error) {
	return env.Create(clone.Code(target))
}
