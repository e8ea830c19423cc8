package proxy

import "errors"

// ==================== 错误定义 ====================

var (
	// ErrNoImplementation 选择器在字典中未注册实现
	ErrNoImplementation = errors.New("选择器无对应实现")

	// ErrAlreadyInitialized 字典指针已初始化
	ErrAlreadyInitialized = errors.New("代理已初始化")

	// ErrNotInitialized 字典指针尚未初始化
	ErrNotInitialized = errors.New("代理未初始化")
)
