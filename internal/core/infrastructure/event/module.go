// Package event 提供事件总线的fx模块装配
package event

import (
	"context"

	"go.uber.org/fx"

	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
	logIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
)

// ModuleInput 定义事件模块的输入依赖
type ModuleInput struct {
	fx.In

	Logger logIntf.Logger `optional:"true"`
}

// ModuleOutput 定义事件模块的输出服务
type ModuleOutput struct {
	fx.Out

	Bus eventIntf.Bus
}

// Module 返回事件总线模块的 fx.Option
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideBus),
		fx.Invoke(RegisterLifecycle),
	)
}

// ProvideBus 提供事件总线实例
func ProvideBus(input ModuleInput) ModuleOutput {
	return ModuleOutput{
		Bus: New(input.Logger),
	}
}

// RegisterLifecycle 注册事件总线的生命周期管理
func RegisterLifecycle(lifecycle fx.Lifecycle, bus eventIntf.Bus) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Close()
		},
	})
}
