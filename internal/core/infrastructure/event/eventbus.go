// 基于asaskevich/EventBus的事件总线实现
// 为UCS运行时提供旁路可观测事件：字典升级、所有权转移、调用完成等

package event

import (
	"fmt"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"

	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
	logIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
)

// Bus 是基于asaskevich/EventBus的事件总线实现
//
// 事件投递为异步（非事务性）：订阅者失败不影响发布方，
// 也不参与执行引擎的提交/回滚语义。
type Bus struct {
	bus    evbus.Bus
	logger logIntf.Logger
	closed atomic.Bool

	// 统计计数
	published atomic.Uint64
	dropped   atomic.Uint64
}

// 编译时检查：确保Bus实现了event.Bus接口
var _ eventIntf.Bus = (*Bus)(nil)

// New 创建一个新的事件总线
func New(logger logIntf.Logger) *Bus {
	return &Bus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Publish 发布一个事件
//
// 异步投递，不阻塞发布方；总线关闭后的发布被静默丢弃（计入统计）。
func (b *Bus) Publish(eventType eventIntf.EventType, payload interface{}) {
	if b.closed.Load() {
		b.dropped.Add(1)
		return
	}
	b.published.Add(1)
	b.bus.Publish(string(eventType), eventType, payload)

	if b.logger != nil {
		b.logger.Debugf("事件已发布: type=%s", eventType)
	}
}

// Subscribe 订阅指定类型的事件
func (b *Bus) Subscribe(eventType eventIntf.EventType, handler eventIntf.Handler) error {
	if b.closed.Load() {
		return fmt.Errorf("event bus closed")
	}
	return b.bus.SubscribeAsync(string(eventType), handler, false)
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(eventType eventIntf.EventType, handler eventIntf.Handler) error {
	return b.bus.Unsubscribe(string(eventType), handler)
}

// Close 关闭总线，等待在途事件投递完成
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.bus.WaitAsync()
	if b.logger != nil {
		b.logger.Infof("事件总线已关闭: published=%d dropped=%d",
			b.published.Load(), b.dropped.Load())
	}
	return nil
}

// PublishedCount 返回累计发布事件数
func (b *Bus) PublishedCount() uint64 {
	return b.published.Load()
}
