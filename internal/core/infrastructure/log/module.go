// Package log 提供日志基础设施的fx模块装配
package log

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	logconfig "github.com/ucskit/v1/internal/config/log"
	logInterface "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
)

// ModuleInput 定义日志模块的输入依赖
type ModuleInput struct {
	fx.In

	Config *logconfig.Config `optional:"true"` // 日志配置（可选，缺省使用默认配置）
}

// ModuleOutput 定义日志模块的输出服务
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger
	ZapLogger *zap.Logger
}

// Module 返回日志模块的 fx.Option
//
// 提供：
//   - log.Logger: 统一日志接口
//   - *zap.Logger: 原始zap实例（供直接使用zap字段API的模块）
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideLogger),
	)
}

// ProvideLogger 提供日志记录器实例
func ProvideLogger(input ModuleInput) (ModuleOutput, error) {
	config := input.Config
	if config == nil {
		config = logconfig.New(nil)
	}

	logger, err := New(config)
	if err != nil {
		return ModuleOutput{}, err
	}

	// 同步更新全局实例，保持包级GetLogger()可用
	SetLogger(logger)

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}
