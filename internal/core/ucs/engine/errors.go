// Package engine provides error definitions for call execution.
package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetExhausted 计算预算耗尽（与其他失败同等对待）
	ErrBudgetExhausted = errors.New("compute budget exhausted")

	// ErrCallDepthExceeded 嵌套调用深度超限
	ErrCallDepthExceeded = errors.New("call depth exceeded")

	// ErrStaticWrite 只读调用中尝试变更持久化状态
	ErrStaticWrite = errors.New("state mutation in read-only invocation")

	// ErrNestedCallFailed 嵌套远程调用失败（默认向上冒泡）
	ErrNestedCallFailed = errors.New("nested call failed")

	// ErrUnsupportedCode 目标账户的原始代码不可解释（非最小克隆布局）
	ErrUnsupportedCode = errors.New("unsupported raw code")

	// ErrAccountExists 目标地址已被占用
	ErrAccountExists = errors.New("account already exists")

	// ErrNilContract 注册了空合约
	ErrNilContract = errors.New("nil contract")

	// ErrEmptyCode 以空代码部署可执行体
	ErrEmptyCode = errors.New("empty code")
)

// NestedError 嵌套调用失败的包装错误
//
// errors.Is 同时命中 ErrNestedCallFailed 与内层失败的哨兵错误，
// 内层的失败数据由调用原语的第一个返回值透明携带。
type NestedError struct {
	inner error
}

// WrapNested 包装嵌套调用失败
func WrapNested(inner error) error {
	return &NestedError{inner: inner}
}

// Error 实现error接口
func (e *NestedError) Error() string {
	return fmt.Sprintf("nested call failed: %v", e.inner)
}

// Unwrap 暴露内层错误链
func (e *NestedError) Unwrap() error {
	return e.inner
}

// Is 使errors.Is(err, ErrNestedCallFailed)成立
func (e *NestedError) Is(target error) bool {
	return target == ErrNestedCallFailed
}
