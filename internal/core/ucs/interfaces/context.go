// Package interfaces 定义UCS运行时内部的执行接口
//
// CallContext 是执行引擎提供给合约代码的受限视图：上下文访问器为
// 只读，嵌套远程调用会阻塞直到被调方完成、失败或耗尽计算预算。
package interfaces

import (
	"github.com/holiman/uint256"

	"github.com/ucskit/v1/internal/core/ucs/gateway"
	"github.com/ucskit/v1/pkg/types"
)

// CallContext 当前调用帧的执行上下文
type CallContext interface {
	// Caller 调用者地址
	Caller() types.Address

	// Self 当前存储作用域地址（上下文保持调用下为代理自身）
	Self() types.Address

	// Value 附带金额
	Value() *uint256.Int

	// Calldata 完整calldata（前4字节为选择器）
	Calldata() []byte

	// Remaining 剩余计算预算
	Remaining() uint64

	// Call 普通远程调用：切换调用者身份与存储作用域
	//
	// 失败时第一个返回值为被调方的失败数据（可能为空），
	// 错误默认向上传播（不捕获则外层调用一并失败）。
	Call(to types.Address, value *uint256.Int, calldata []byte) ([]byte, error)

	// DelegateCall 上下文保持远程调用：调用者身份与存储作用域不变
	DelegateCall(to types.Address, calldata []byte) ([]byte, error)

	// StaticCall 只读远程调用：执行期间禁止任何持久化状态变更
	StaticCall(to types.Address, calldata []byte) ([]byte, error)

	// Create 以给定代码部署新的可执行体，返回新地址
	Create(code []byte) (types.Address, error)
}

// Contract 本地（原生Go）合约
//
// Run 的返回约定：err为nil时data是成功返回数据；err非nil时
// data是失败数据（可能为nil），调用随即失败并回滚其全部写入。
type Contract interface {
	Run(env CallContext, cap gateway.Capability) ([]byte, error)
}

// ContractFunc 函数式合约适配器
type ContractFunc func(env CallContext, cap gateway.Capability) ([]byte, error)

// Run 实现Contract接口
func (f ContractFunc) Run(env CallContext, cap gateway.Capability) ([]byte, error) {
	return f(env, cap)
}
