package proxy

import (
	"context"
	"errors"
	"testing"

	memorystore "github.com/ucskit/v1/internal/core/infrastructure/storage/memory"
	"github.com/ucskit/v1/internal/core/ucs/clone"
	"github.com/ucskit/v1/internal/core/ucs/dictionary"
	"github.com/ucskit/v1/internal/core/ucs/dispatch"
	"github.com/ucskit/v1/internal/core/ucs/engine"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/internal/core/ucs/schema"
	"github.com/ucskit/v1/pkg/types"
)

var (
	addrAdmin = types.Address{0x11, 0x11}
	addrUser  = types.Address{0x22, 0x22}
	addrDict  = types.Address{0xd1, 0xc7}
	addrDict2 = types.Address{0xd1, 0xc8}
	addrProxy = types.Address{0x98, 0x0c}
	addrToken = types.Address{0x70, 0x6b}
)

var (
	sigTransfer = dispatch.NewSig("transfer", "address", "uint256").WithReturns("bool")
	selTransfer = types.Selector{0xa9, 0x05, 0x9c, 0xbb}
)

// tokenImpl 测试用代币实现：balances[to] += amount
type tokenImpl struct {
	layout *schema.Schema
	table  *dispatch.Table
}

func newTokenImpl(eng *engine.Engine) *tokenImpl {
	layout := schema.New("demo.token", eng.Deriver())
	_ = layout.AddMapping("balances", "address", "uint256")
	layout.Seal()

	impl := &tokenImpl{layout: layout}
	entry, err := dispatch.BindLiteral(sigTransfer, selTransfer, impl.transfer)
	if err != nil {
		panic(err)
	}
	impl.table = dispatch.MustTable(entry)
	return impl
}

func (c *tokenImpl) Run(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	return c.table.Dispatch(env, cap)
}

func (c *tokenImpl) transfer(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	to, err := dec.Address()
	if err != nil {
		return nil, err
	}
	amount, err := dec.U256()
	if err != nil {
		return nil, err
	}

	prev, err := c.layout.ReadMapping(cap, "balances", to.Word())
	if err != nil {
		return nil, err
	}
	next := prev.U256()
	next.Add(next, amount)
	if err := c.layout.WriteMapping(cap, "balances", to.Word(), types.WordFromU256(next)); err != nil {
		return nil, err
	}

	ok := types.WordFromUint64(1)
	return ok[:], nil
}

// newForwardingSetup 装配字典+代理+代币实现并完成初始化
func newForwardingSetup(t *testing.T, mode Mode) (*engine.Engine, *memorystore.Store) {
	t.Helper()
	store := memorystore.New(nil)
	eng := engine.New(engine.Options{Store: store})

	if err := eng.Register(addrDict, dictionary.New(eng.Deriver(), nil)); err != nil {
		t.Fatalf("注册字典失败: %v", err)
	}
	if err := eng.Register(addrProxy, New(eng.Deriver(), mode)); err != nil {
		t.Fatalf("注册代理失败: %v", err)
	}
	if err := eng.Register(addrToken, newTokenImpl(eng)); err != nil {
		t.Fatalf("注册实现失败: %v", err)
	}

	mustExecute(t, eng, addrAdmin, addrDict, dispatch.EncodeCall(
		dispatch.DeriveSelector(dictionary.SigInitializeOwner), addrAdmin.Word()))
	mustExecute(t, eng, addrAdmin, addrProxy, dispatch.EncodeCall(
		dispatch.DeriveSelector(SigInitializeProxy), addrDict.Word()))
	return eng, store
}

func mustExecute(t *testing.T, eng *engine.Engine, caller, to types.Address, calldata []byte) types.ExecutionResult {
	t.Helper()
	res := eng.Execute(context.Background(), types.ExternalCall{Caller: caller, To: to, Calldata: calldata})
	if !res.Success {
		t.Fatalf("调用 %s 失败: %v", to.Hex(), res.Err)
	}
	return res
}

func registerTransfer(t *testing.T, eng *engine.Engine) {
	t.Helper()
	mustExecute(t, eng, addrAdmin, addrDict, dispatch.EncodeCall(
		dispatch.DeriveSelector(dictionary.SigSetImplementation),
		dispatch.SelectorWord(selTransfer), addrToken.Word()))
}

// TestForwardResolvesAndDelegates 测试解析后委托的完整转发链路
func TestForwardResolvesAndDelegates(t *testing.T) {
	eng, _ := newForwardingSetup(t, ModeResolve)
	registerTransfer(t, eng)

	calldata := dispatch.EncodeCall(selTransfer, addrUser.Word(), types.WordFromUint64(100))
	res := mustExecute(t, eng, addrUser, addrProxy, calldata)

	// 返回数据透明传播
	if types.WordFromBytes(res.ReturnData) != types.WordFromUint64(1) {
		t.Errorf("返回数据不一致: %x", res.ReturnData)
	}
}

// TestForwardStatePersistsInProxyScope 测试实现状态落在代理作用域
func TestForwardStatePersistsInProxyScope(t *testing.T) {
	eng, store := newForwardingSetup(t, ModeResolve)
	registerTransfer(t, eng)

	calldata := dispatch.EncodeCall(selTransfer, addrUser.Word(), types.WordFromUint64(100))
	mustExecute(t, eng, addrUser, addrProxy, calldata)
	mustExecute(t, eng, addrUser, addrProxy, calldata)

	layout := schema.New("demo.token", eng.Deriver())
	_ = layout.AddMapping("balances", "address", "uint256")
	slotAddr, err := layout.MappingEntrySlot("balances", addrUser.Word())
	if err != nil {
		t.Fatalf("推导余额槽失败: %v", err)
	}

	got, err := store.Get(context.Background(), addrProxy, slotAddr)
	if err != nil {
		t.Fatalf("存储读取失败: %v", err)
	}
	if got != types.WordFromUint64(200) {
		t.Errorf("代理作用域余额期望200, 实际: %s", got.Hex())
	}

	// 实现自身作用域不应有状态
	got, _ = store.Get(context.Background(), addrToken, slotAddr)
	if !got.IsZero() {
		t.Errorf("实现自身作用域不应有状态, 实际: %s", got.Hex())
	}
}

// TestForwardUnknownSelector 测试未注册选择器的失败路径
func TestForwardUnknownSelector(t *testing.T) {
	eng, _ := newForwardingSetup(t, ModeResolve)

	res := eng.Execute(context.Background(), types.ExternalCall{
		Caller:   addrUser,
		To:       addrProxy,
		Calldata: []byte{0xde, 0xad, 0xbe, 0xef},
	})
	if res.Success {
		t.Fatal("未注册选择器应失败")
	}
	if !errors.Is(res.Err, ErrNoImplementation) {
		t.Errorf("期望ErrNoImplementation, 实际: %v", res.Err)
	}
	if len(res.ReturnData) != 0 {
		t.Errorf("失败时应无返回数据, 实际%d字节", len(res.ReturnData))
	}
}

// TestForwardPropagatesFailureData 测试内层失败数据透明上交
func TestForwardPropagatesFailureData(t *testing.T) {
	eng, _ := newForwardingSetup(t, ModeResolve)

	boom := errors.New("实现失败")
	failing := types.Address{0xff, 0x01}
	if err := eng.Register(failing, ifaces.ContractFunc(func(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
		return []byte("失败详情"), boom
	})); err != nil {
		t.Fatal(err)
	}
	sel := types.Selector{0x0b, 0x0b, 0x0b, 0x0b}
	mustExecute(t, eng, addrAdmin, addrDict, dispatch.EncodeCall(
		dispatch.DeriveSelector(dictionary.SigSetImplementation),
		dispatch.SelectorWord(sel), failing.Word()))

	res := eng.Execute(context.Background(), types.ExternalCall{
		Caller:   addrUser,
		To:       addrProxy,
		Calldata: sel[:],
	})
	if res.Success {
		t.Fatal("期望调用失败")
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("内层失败原因应可命中, 实际: %v", res.Err)
	}
	if string(res.ReturnData) != "失败详情" {
		t.Errorf("失败数据应透明传播, 实际: %q", res.ReturnData)
	}
}

// TestInitializeProxyOnce 测试代理的一次性初始化守卫
func TestInitializeProxyOnce(t *testing.T) {
	eng, _ := newForwardingSetup(t, ModeResolve)

	res := eng.Execute(context.Background(), types.ExternalCall{
		Caller: addrAdmin,
		To:     addrProxy,
		Calldata: dispatch.EncodeCall(
			dispatch.DeriveSelector(SigInitializeProxy), addrDict2.Word()),
	})
	if res.Success {
		t.Fatal("二次初始化应失败")
	}
	if !errors.Is(res.Err, ErrAlreadyInitialized) {
		t.Errorf("期望ErrAlreadyInitialized, 实际: %v", res.Err)
	}
}

// TestUninitializedProxyRejectsForwarding 测试未初始化代理拒绝转发
func TestUninitializedProxyRejectsForwarding(t *testing.T) {
	eng := engine.New(engine.Options{Store: memorystore.New(nil)})
	if err := eng.Register(addrProxy, New(eng.Deriver(), ModeResolve)); err != nil {
		t.Fatal(err)
	}

	res := eng.Execute(context.Background(), types.ExternalCall{
		Caller:   addrUser,
		To:       addrProxy,
		Calldata: selTransfer[:],
	})
	if res.Success {
		t.Fatal("未初始化代理转发应失败")
	}
	if !errors.Is(res.Err, ErrNotInitialized) {
		t.Errorf("期望ErrNotInitialized, 实际: %v", res.Err)
	}
}

// TestSetDictionaryGating 测试字典指针升级的门控
func TestSetDictionaryGating(t *testing.T) {
	eng, _ := newForwardingSetup(t, ModeResolve)

	// 非当前字典的调用者被拒绝
	res := eng.Execute(context.Background(), types.ExternalCall{
		Caller: addrAdmin,
		To:     addrProxy,
		Calldata: dispatch.EncodeCall(
			dispatch.DeriveSelector(SigSetDictionary), addrDict2.Word()),
	})
	if res.Success || !errors.Is(res.Err, dictionary.ErrUnauthorized) {
		t.Fatalf("非字典调用者期望ErrUnauthorized, 实际: 成功=%v 错误=%v", res.Success, res.Err)
	}

	// 以当前字典身份升级成功
	mustExecute(t, eng, addrDict, addrProxy, dispatch.EncodeCall(
		dispatch.DeriveSelector(SigSetDictionary), addrDict2.Word()))

	// 升级即时生效：每次转发都重新解析，旧字典的注册不再可见
	if err := eng.Register(addrDict2, dictionary.New(eng.Deriver(), nil)); err != nil {
		t.Fatal(err)
	}
	res = eng.Execute(context.Background(), types.ExternalCall{
		Caller:   addrUser,
		To:       addrProxy,
		Calldata: selTransfer[:],
	})
	if res.Success {
		t.Fatal("新字典未注册该选择器, 转发应失败")
	}
	if !errors.Is(res.Err, ErrNoImplementation) {
		t.Errorf("期望ErrNoImplementation, 实际: %v", res.Err)
	}
}

// TestDirectDelegationMode 测试直接委托策略
//
// 字典代码在代理的存储作用域内执行：经代理走完初始化、注册、
// 查询的完整流程，全部状态落在代理作用域的保留槽上。
func TestDirectDelegationMode(t *testing.T) {
	store := memorystore.New(nil)
	eng := engine.New(engine.Options{Store: store})

	if err := eng.Register(addrDict, dictionary.New(eng.Deriver(), nil)); err != nil {
		t.Fatal(err)
	}
	if err := eng.Register(addrProxy, New(eng.Deriver(), ModeDirect)); err != nil {
		t.Fatal(err)
	}

	mustExecute(t, eng, addrAdmin, addrProxy, dispatch.EncodeCall(
		dispatch.DeriveSelector(SigInitializeProxy), addrDict.Word()))

	// 经代理初始化所有者并注册：写入落在代理作用域
	mustExecute(t, eng, addrAdmin, addrProxy, dispatch.EncodeCall(
		dispatch.DeriveSelector(dictionary.SigInitializeOwner), addrAdmin.Word()))
	mustExecute(t, eng, addrAdmin, addrProxy, dispatch.EncodeCall(
		dispatch.DeriveSelector(dictionary.SigSetImplementation),
		dispatch.SelectorWord(selTransfer), addrToken.Word()))

	res := mustExecute(t, eng, addrUser, addrProxy, dispatch.EncodeCall(
		dictionary.SelectorGetImplementation, dispatch.SelectorWord(selTransfer)))
	if types.WordFromBytes(res.ReturnData).Address() != addrToken {
		t.Errorf("经代理查询不一致: %x", res.ReturnData)
	}

	// 字典自身作用域保持干净
	got, _ := store.Get(context.Background(), addrDict, types.ZeroWord)
	if !got.IsZero() {
		t.Errorf("字典自身作用域不应有owner, 实际: %s", got.Hex())
	}
}

// TestMinimalCloneForwarding 测试最小克隆与直连调用行为等价
func TestMinimalCloneForwarding(t *testing.T) {
	eng, store := newForwardingSetup(t, ModeResolve)
	registerTransfer(t, eng)

	// 工厂合约部署指向代币实现的克隆
	factory := types.Address{0xfa, 0xc7}
	if err := eng.Register(factory, ifaces.ContractFunc(func(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
		addr, err := CreateMinimalProxy(env, addrToken)
		if err != nil {
			return nil, err
		}
		w := addr.Word()
		return w[:], nil
	})); err != nil {
		t.Fatal(err)
	}

	res := mustExecute(t, eng, addrAdmin, factory, nil)
	cloneAddr := types.WordFromBytes(res.ReturnData).Address()

	// 部署的代码就是45字节固定布局
	code := eng.CodeAt(cloneAddr)
	if target, ok := clone.Parse(code); !ok || target != addrToken {
		t.Fatalf("克隆代码不合法: %x", code)
	}

	// 经克隆调用：行为与直连实现一致，状态落在克隆作用域
	calldata := dispatch.EncodeCall(selTransfer, addrUser.Word(), types.WordFromUint64(77))
	res = mustExecute(t, eng, addrUser, cloneAddr, calldata)
	if types.WordFromBytes(res.ReturnData) != types.WordFromUint64(1) {
		t.Errorf("克隆返回数据不一致: %x", res.ReturnData)
	}

	layout := schema.New("demo.token", eng.Deriver())
	_ = layout.AddMapping("balances", "address", "uint256")
	slotAddr, err := layout.MappingEntrySlot("balances", addrUser.Word())
	if err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(context.Background(), cloneAddr, slotAddr)
	if got != types.WordFromUint64(77) {
		t.Errorf("克隆作用域余额期望77, 实际: %s", got.Hex())
	}
}
