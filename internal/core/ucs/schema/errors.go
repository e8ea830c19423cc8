// Package schema provides error definitions for declarative storage layout.
package schema

import "errors"

var (
	// ErrFieldNotFound 字段名不存在（可恢复条件，调用方应自行处理）
	ErrFieldNotFound = errors.New("field not found")

	// ErrDuplicateField 字段名在Schema内重复
	ErrDuplicateField = errors.New("duplicate field")

	// ErrNamespaceFull 命名空间顶层字段数达到256上限
	ErrNamespaceFull = errors.New("namespace field capacity exceeded")

	// ErrKindMismatch 字段种类与访问器不匹配
	ErrKindMismatch = errors.New("field kind mismatch")

	// ErrInvalidField 字段声明非法
	ErrInvalidField = errors.New("invalid field declaration")

	// ErrIndexOutOfRange 数组访问越界
	ErrIndexOutOfRange = errors.New("array index out of range")

	// ErrOverflow 有界量算术溢出
	ErrOverflow = errors.New("arithmetic overflow")

	// ErrSchemaSealed Schema已封存，禁止继续声明字段
	ErrSchemaSealed = errors.New("schema sealed")
)
