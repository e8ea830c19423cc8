// Package types provides execution type definitions.
package types

import "github.com/holiman/uint256"

// ==================== 调用类型 ====================

// CallKind 远程调用的类型
type CallKind int

const (
	// CallKindRegular 普通调用：切换调用者身份与存储作用域
	CallKindRegular CallKind = iota

	// CallKindDelegate 上下文保持调用：保留调用者身份与存储作用域，仅切换执行代码
	CallKindDelegate

	// CallKindStatic 只读调用：执行期间禁止任何持久化状态变更
	CallKindStatic
)

// String 返回调用类型的字符串表示
func (k CallKind) String() string {
	switch k {
	case CallKindRegular:
		return "call"
	case CallKindDelegate:
		return "delegatecall"
	case CallKindStatic:
		return "staticcall"
	default:
		return "unknown"
	}
}

// ==================== 外部调用入参 ====================

// ExternalCall 外部调用入参
//
// 由调用方（交易层/测试）整理为统一结构后提交给执行引擎。
type ExternalCall struct {
	// 调用者地址
	Caller Address
	// 目标地址
	To Address
	// 附带金额（nil视作0）
	Value *uint256.Int
	// 完整calldata（前4字节为选择器）
	Calldata []byte
	// 计算预算（0表示使用引擎默认值）
	Budget uint64
}

// ==================== 执行结果 ====================

// ExecutionResult 执行结果
type ExecutionResult struct {
	// 是否成功
	Success bool
	// 返回数据（失败时为失败数据，可能为空）
	ReturnData []byte
	// 消耗的计算预算
	Consumed uint64
	// 失败原因（Success为true时为nil）
	Err error
}
