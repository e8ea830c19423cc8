// Package dispatch provides error definitions for selector binding and routing.
package dispatch

import "errors"

var (
	// ErrUnknownSelector 分发表无匹配条目（返回数据为空）
	ErrUnknownSelector = errors.New("unknown selector")

	// ErrSelectorMismatch 字面量选择器与签名推导值不一致
	ErrSelectorMismatch = errors.New("selector mismatch")

	// ErrDuplicateSelector 同一选择器在表内重复注册
	ErrDuplicateSelector = errors.New("duplicate selector")

	// ErrCalldataShort calldata长度不足以解码下一个参数
	ErrCalldataShort = errors.New("calldata too short")

	// ErrDecodeValue 参数值超出目标类型表示范围
	ErrDecodeValue = errors.New("cannot decode value")
)
