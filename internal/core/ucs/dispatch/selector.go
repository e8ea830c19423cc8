// Package dispatch 提供签名/选择器绑定与calldata分发
//
// 函数签名的规范字符串形式为 name(type1,type2,...)，选择器取其
// Keccak-256哈希的前4字节。字面量选择器绝不手工推导：携带字面量
// 注册的条目会在构造时按签名重新计算并比对，不一致即构造失败
// （一次性的启动校验）。
package dispatch

import (
	"fmt"
	"strings"

	hashimpl "github.com/ucskit/v1/internal/core/infrastructure/crypto/hash"
	cryptointf "github.com/ucskit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/ucskit/v1/pkg/types"
)

// 包级默认哈希服务（选择器推导只在启动期发生，共享缓存合理）
var defaultHasher cryptointf.HashManager = hashimpl.NewHashService()

// Sig 函数签名：名字、有序参数类型、有序返回类型
type Sig struct {
	Name    string
	Args    []string
	Returns []string
}

// NewSig 创建函数签名
func NewSig(name string, args ...string) Sig {
	return Sig{Name: name, Args: args}
}

// WithReturns 附加返回类型列表
func (s Sig) WithReturns(returns ...string) Sig {
	s.Returns = returns
	return s
}

// Canonical 返回规范字符串形式: name(type1,type2,...)
//
// 返回类型不参与规范形式（选择器只绑定入参）。
func (s Sig) Canonical() string {
	return s.Name + "(" + strings.Join(s.Args, ",") + ")"
}

// String 实现fmt.Stringer
func (s Sig) String() string {
	return s.Canonical()
}

// DeriveSelector 从签名推导选择器：keccak256(canonical)的前4字节
func DeriveSelector(sig Sig) types.Selector {
	return DeriveSelectorWith(defaultHasher, sig)
}

// DeriveSelectorWith 使用指定哈希服务推导选择器
func DeriveSelectorWith(hasher cryptointf.HashManager, sig Sig) types.Selector {
	digest := hasher.Keccak256([]byte(sig.Canonical()))
	var sel types.Selector
	copy(sel[:], digest[:types.SelectorSize])
	return sel
}

// CheckSelector 校验字面量选择器与签名推导值一致
//
// 字面量与计算值必须相等；不等说明字面量是手工误derive的，
// 返回ErrSelectorMismatch让构造失败。
func CheckSelector(sig Sig, literal types.Selector) error {
	derived := DeriveSelector(sig)
	if derived != literal {
		return fmt.Errorf("%w: signature %s derives %s, literal is %s",
			ErrSelectorMismatch, sig.Canonical(), derived.Hex(), literal.Hex())
	}
	return nil
}
