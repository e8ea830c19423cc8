// Package event 提供UCS运行时的事件总线接口定义
//
// 基于发布/订阅模型的进程内事件分发，用于运行时可观测性：
// 字典升级、所有权转移、外部调用完成等事件通过总线对外广播。
// 事件是旁路信号，订阅者的失败不影响执行语义。
package event

// EventType 事件类型标识
type EventType string

const (
	// EventImplementationSet 字典实现注册/覆盖/注销事件
	EventImplementationSet EventType = "ucs.implementation_set"

	// EventOwnershipTransferred 字典所有权转移事件
	EventOwnershipTransferred EventType = "ucs.ownership_transferred"

	// EventCallExecuted 外部调用执行完成事件（无论成功失败）
	EventCallExecuted EventType = "ucs.call_executed"

	// EventProxyDeployed 代理实例部署事件（含最小克隆）
	EventProxyDeployed EventType = "ucs.proxy_deployed"
)

// Handler 事件处理函数
type Handler func(eventType EventType, payload interface{})

// Bus 定义事件总线接口
type Bus interface {
	// Publish 发布一个事件（异步投递，不阻塞发布方）
	Publish(eventType EventType, payload interface{})

	// Subscribe 订阅指定类型的事件
	Subscribe(eventType EventType, handler Handler) error

	// Unsubscribe 取消订阅
	Unsubscribe(eventType EventType, handler Handler) error

	// Close 关闭总线，等待在途事件投递完成
	Close() error
}
