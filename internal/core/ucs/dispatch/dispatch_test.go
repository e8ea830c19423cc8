package dispatch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/pkg/types"
)

// fakeEnv 测试用调用上下文：只承载calldata
type fakeEnv struct {
	calldata []byte
}

var _ ifaces.CallContext = (*fakeEnv)(nil)

func (f *fakeEnv) Caller() types.Address { return types.ZeroAddress }
func (f *fakeEnv) Self() types.Address   { return types.ZeroAddress }
func (f *fakeEnv) Value() *uint256.Int   { return uint256.NewInt(0) }
func (f *fakeEnv) Calldata() []byte      { return f.calldata }
func (f *fakeEnv) Remaining() uint64     { return 0 }

func (f *fakeEnv) Call(types.Address, *uint256.Int, []byte) ([]byte, error) {
	return nil, errors.New("不支持")
}
func (f *fakeEnv) DelegateCall(types.Address, []byte) ([]byte, error) {
	return nil, errors.New("不支持")
}
func (f *fakeEnv) StaticCall(types.Address, []byte) ([]byte, error) {
	return nil, errors.New("不支持")
}
func (f *fakeEnv) Create([]byte) (types.Address, error) {
	return types.ZeroAddress, errors.New("不支持")
}

// ==================== 签名与选择器 ====================

// TestCanonicalSignature 测试规范签名形式
func TestCanonicalSignature(t *testing.T) {
	tests := []struct {
		sig  Sig
		want string
	}{
		{NewSig("transfer", "address", "uint256"), "transfer(address,uint256)"},
		{NewSig("increment"), "increment()"},
		{NewSig("getImplementation", "bytes4").WithReturns("address"), "getImplementation(bytes4)"},
	}
	for _, tt := range tests {
		if got := tt.sig.Canonical(); got != tt.want {
			t.Errorf("Canonical() = %q, 期望 %q", got, tt.want)
		}
	}
}

// TestWellKnownSelector 测试已知选择器字面量
//
// transfer(address,uint256) 的选择器是跨生态公认的 0xa9059cbb，
// 作为推导正确性的外部锚点。
func TestWellKnownSelector(t *testing.T) {
	sig := NewSig("transfer", "address", "uint256")
	want := types.Selector{0xa9, 0x05, 0x9c, 0xbb}

	if got := DeriveSelector(sig); got != want {
		t.Fatalf("DeriveSelector(%s) = %s, 期望 %s", sig, got.Hex(), want.Hex())
	}
	if err := CheckSelector(sig, want); err != nil {
		t.Errorf("字面量校验失败: %v", err)
	}
	if err := CheckSelector(sig, types.Selector{0xde, 0xad, 0xbe, 0xef}); !errors.Is(err, ErrSelectorMismatch) {
		t.Errorf("错误字面量期望ErrSelectorMismatch, 实际: %v", err)
	}
}

// TestSelectorDistinct 测试不同签名的选择器互不相同
func TestSelectorDistinct(t *testing.T) {
	sigs := []Sig{
		NewSig("transfer", "address", "uint256"),
		NewSig("transfer", "address"),
		NewSig("transferFrom", "address", "address", "uint256"),
		NewSig("approve", "address", "uint256"),
	}
	seen := make(map[types.Selector]string)
	for _, sig := range sigs {
		sel := DeriveSelector(sig)
		if prev, ok := seen[sel]; ok {
			t.Errorf("签名 %s 与 %s 选择器碰撞", sig, prev)
		}
		seen[sel] = sig.Canonical()
	}
}

// ==================== 编解码 ====================

// TestEncodeDecodeRoundtrip 测试calldata编解码按参数声明顺序往返
func TestEncodeDecodeRoundtrip(t *testing.T) {
	sel := DeriveSelector(NewSig("transfer", "address", "uint256"))
	to := types.Address{0x11, 0x22}
	amount := uint256.NewInt(12345)

	calldata := EncodeCall(sel, to.Word(), types.WordFromU256(amount))
	if len(calldata) != types.SelectorSize+2*types.WordSize {
		t.Fatalf("calldata长度期望%d, 实际%d", types.SelectorSize+2*types.WordSize, len(calldata))
	}

	dec := NewDecoder(calldata)
	gotSel, err := dec.Selector()
	if err != nil {
		t.Fatalf("选择器解码失败: %v", err)
	}
	if gotSel != sel {
		t.Errorf("选择器不一致: %s", gotSel.Hex())
	}

	gotTo, err := dec.Address()
	if err != nil {
		t.Fatalf("地址解码失败: %v", err)
	}
	if gotTo != to {
		t.Errorf("地址不一致: %s", gotTo.Hex())
	}

	gotAmount, err := dec.U256()
	if err != nil {
		t.Fatalf("整数解码失败: %v", err)
	}
	if gotAmount.Cmp(amount) != 0 {
		t.Errorf("整数不一致: %s", gotAmount.String())
	}

	if dec.Remaining() != 0 {
		t.Errorf("解码完毕后剩余字节期望0, 实际%d", dec.Remaining())
	}
}

// TestDecoderExhaustion 测试越过参数末尾的解码失败
func TestDecoderExhaustion(t *testing.T) {
	sel := DeriveSelector(NewSig("increment"))
	dec := NewDecoder(EncodeCall(sel))
	if _, err := dec.Word(); !errors.Is(err, ErrCalldataShort) {
		t.Errorf("无参数解码期望ErrCalldataShort, 实际: %v", err)
	}
}

// TestDecoderBool 测试布尔解码
func TestDecoderBool(t *testing.T) {
	sel := DeriveSelector(NewSig("setFlag", "bool"))

	dec := NewDecoder(EncodeCall(sel, types.WordFromUint64(1)))
	got, err := dec.Bool()
	if err != nil {
		t.Fatalf("布尔解码失败: %v", err)
	}
	if !got {
		t.Error("期望true")
	}

	dec = NewDecoder(EncodeCall(sel, types.ZeroWord))
	got, err = dec.Bool()
	if err != nil {
		t.Fatalf("布尔解码失败: %v", err)
	}
	if got {
		t.Error("期望false")
	}
}

// TestSelectorArgLeftAligned 测试bytes4参数的左对齐编码往返
func TestSelectorArgLeftAligned(t *testing.T) {
	inner := types.Selector{0xa9, 0x05, 0x9c, 0xbb}
	w := SelectorWord(inner)

	// 左对齐：前4字节是选择器本体，其余为零
	if w[0] != 0xa9 || w[3] != 0xbb {
		t.Fatalf("SelectorWord未左对齐: %s", w.Hex())
	}

	sel := DeriveSelector(NewSig("getImplementation", "bytes4"))
	dec := NewDecoder(EncodeCall(sel, w))
	got, err := dec.SelectorArg()
	if err != nil {
		t.Fatalf("bytes4解码失败: %v", err)
	}
	if got != inner {
		t.Errorf("bytes4往返不一致: %s", got.Hex())
	}
}

// ==================== 分发表 ====================

// TestDispatchRoutesBySelector 测试按选择器路由到对应处理器
func TestDispatchRoutesBySelector(t *testing.T) {
	sigA := NewSig("alpha")
	sigB := NewSig("beta", "uint256")

	table := MustTable(
		Bind(sigA, func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
			return []byte("A"), nil
		}),
		Bind(sigB, func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
			v, err := dec.Uint64()
			if err != nil {
				return nil, err
			}
			w := types.WordFromUint64(v * 2)
			return w[:], nil
		}),
	)

	ret, err := table.Dispatch(&fakeEnv{calldata: EncodeCall(DeriveSelector(sigA))}, gateway.Capability{})
	if err != nil {
		t.Fatalf("分发失败: %v", err)
	}
	if !bytes.Equal(ret, []byte("A")) {
		t.Errorf("alpha返回不一致: %q", ret)
	}

	ret, err = table.Dispatch(&fakeEnv{calldata: EncodeCall(DeriveSelector(sigB), types.WordFromUint64(21))}, gateway.Capability{})
	if err != nil {
		t.Fatalf("分发失败: %v", err)
	}
	if types.WordFromBytes(ret) != types.WordFromUint64(42) {
		t.Errorf("beta返回不一致: %x", ret)
	}
}

// TestDispatchUnknownSelector 测试未匹配选择器失败且无返回数据
func TestDispatchUnknownSelector(t *testing.T) {
	table := MustTable(
		Bind(NewSig("alpha"), func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
			return nil, nil
		}),
	)

	ret, err := table.Dispatch(&fakeEnv{calldata: []byte{0xde, 0xad, 0xbe, 0xef}}, gateway.Capability{})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("期望ErrUnknownSelector, 实际: %v", err)
	}
	if len(ret) != 0 {
		t.Errorf("未知选择器不应携带返回数据, 实际%d字节", len(ret))
	}

	// 不足4字节的calldata同样视为未知选择器
	ret, err = table.Dispatch(&fakeEnv{calldata: []byte{0x01}}, gateway.Capability{})
	if !errors.Is(err, ErrUnknownSelector) {
		t.Fatalf("短calldata期望ErrUnknownSelector, 实际: %v", err)
	}
	if len(ret) != 0 {
		t.Errorf("短calldata不应携带返回数据, 实际%d字节", len(ret))
	}
}

// TestDuplicateSelectorRejected 测试重复选择器在建表时被拒绝
func TestDuplicateSelectorRejected(t *testing.T) {
	noop := func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
		return nil, nil
	}
	_, err := NewTable(
		Bind(NewSig("alpha"), noop),
		Bind(NewSig("alpha"), noop),
	)
	if !errors.Is(err, ErrDuplicateSelector) {
		t.Errorf("重复选择器期望ErrDuplicateSelector, 实际: %v", err)
	}
}

// TestBindLiteralVerifiesAtConstruction 测试字面量绑定在构造时校验
func TestBindLiteralVerifiesAtConstruction(t *testing.T) {
	noop := func(env ifaces.CallContext, cap gateway.Capability, dec *Decoder) ([]byte, error) {
		return nil, nil
	}
	sig := NewSig("transfer", "address", "uint256")

	if _, err := BindLiteral(sig, types.Selector{0xa9, 0x05, 0x9c, 0xbb}, noop); err != nil {
		t.Errorf("正确字面量绑定失败: %v", err)
	}
	if _, err := BindLiteral(sig, types.Selector{0x00, 0x00, 0x00, 0x01}, noop); !errors.Is(err, ErrSelectorMismatch) {
		t.Errorf("错误字面量期望ErrSelectorMismatch, 实际: %v", err)
	}
}
