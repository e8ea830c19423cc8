// Package gateway provides error definitions for capability-gated storage access.
package gateway

import "errors"

var (
	// ErrInvalidCapability 无效能力令牌（零值或伪造）
	ErrInvalidCapability = errors.New("invalid storage capability")

	// ErrSessionClosed 会话已关闭（令牌逃逸出调用作用域）
	ErrSessionClosed = errors.New("storage session closed")
)
