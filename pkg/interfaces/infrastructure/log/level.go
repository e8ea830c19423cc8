// Package log 提供UCS运行时的日志级别接口定义
package log

import "github.com/ucskit/v1/pkg/types"

// 兼容别名（定义位于 pkg/types）
type LogLevel = types.LogLevel

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)
