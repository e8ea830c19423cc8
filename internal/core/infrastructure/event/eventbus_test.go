package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
)

// TestPublishSubscribe 测试发布订阅的基本链路
func TestPublishSubscribe(t *testing.T) {
	bus := New(nil)

	var mu sync.Mutex
	var got []interface{}
	err := bus.Subscribe(eventIntf.EventImplementationSet, func(et eventIntf.EventType, payload interface{}) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, payload)
	})
	require.NoError(t, err)

	bus.Publish(eventIntf.EventImplementationSet, "payload-1")
	bus.Publish(eventIntf.EventImplementationSet, "payload-2")
	// 其它类型不投递给本订阅者
	bus.Publish(eventIntf.EventCallExecuted, "other")

	require.NoError(t, bus.Close()) // Close等待在途异步投递

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []interface{}{"payload-1", "payload-2"}, got)
	assert.Equal(t, uint64(3), bus.PublishedCount())
}

// TestPublishAfterCloseDropped 测试关闭后的发布被静默丢弃
func TestPublishAfterCloseDropped(t *testing.T) {
	bus := New(nil)
	require.NoError(t, bus.Close())

	bus.Publish(eventIntf.EventCallExecuted, "late")
	assert.Equal(t, uint64(0), bus.PublishedCount())

	err := bus.Subscribe(eventIntf.EventCallExecuted, func(eventIntf.EventType, interface{}) {})
	assert.Error(t, err)
}

// TestUnsubscribeStopsDelivery 测试退订后不再投递
func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var mu sync.Mutex
	count := 0
	handler := eventIntf.Handler(func(eventIntf.EventType, interface{}) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	require.NoError(t, bus.Subscribe(eventIntf.EventOwnershipTransferred, handler))
	bus.Publish(eventIntf.EventOwnershipTransferred, nil)

	// 等待异步投递完成后退订
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, bus.Unsubscribe(eventIntf.EventOwnershipTransferred, handler))
	bus.Publish(eventIntf.EventOwnershipTransferred, nil)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}
