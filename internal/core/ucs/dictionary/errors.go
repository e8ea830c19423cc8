package dictionary

import "errors"

// ==================== 错误定义 ====================

var (
	// ErrUnauthorized 调用者不具备所需角色
	ErrUnauthorized = errors.New("调用者无权限")

	// ErrAlreadyInitialized 一次性初始化被重复调用
	ErrAlreadyInitialized = errors.New("所有者已初始化")

	// ErrLengthMismatch 批量注册的选择器与地址数量不一致
	ErrLengthMismatch = errors.New("批量参数长度不一致")
)
