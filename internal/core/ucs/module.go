// Package ucs 提供UCS运行时的fx模块装配
//
// 按引擎配置选择后备字存储（memory或badger），装配哈希服务、
// 槽推导器与执行引擎，并挂接存储的关停生命周期。
package ucs

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	engineconfig "github.com/ucskit/v1/internal/config/engine"
	hashimpl "github.com/ucskit/v1/internal/core/infrastructure/crypto/hash"
	badgerstore "github.com/ucskit/v1/internal/core/infrastructure/storage/badger"
	memorystore "github.com/ucskit/v1/internal/core/infrastructure/storage/memory"
	"github.com/ucskit/v1/internal/core/ucs/engine"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	cryptointf "github.com/ucskit/v1/pkg/interfaces/infrastructure/crypto"
	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
	logIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
	storageIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
)

// ModuleInput 定义UCS模块的输入依赖
type ModuleInput struct {
	fx.In

	Config *engineconfig.Config
	Logger logIntf.Logger `optional:"true"`
	Bus    eventIntf.Bus  `optional:"true"`
}

// ModuleOutput 定义UCS模块的输出服务
type ModuleOutput struct {
	fx.Out

	Store   storageIntf.WordStore
	Hasher  cryptointf.HashManager
	Deriver *slot.Deriver
	Engine  *engine.Engine
}

// Module 返回UCS运行时模块的 fx.Option
func Module() fx.Option {
	return fx.Module("ucs",
		fx.Provide(ProvideRuntime),
		fx.Invoke(RegisterLifecycle),
	)
}

// ProvideRuntime 提供UCS运行时的各项服务
func ProvideRuntime(input ModuleInput) (ModuleOutput, error) {
	store, err := newStore(input.Config, input.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	hasher := hashimpl.NewHashService()
	eng := engine.New(engine.Options{
		Store:  store,
		Hasher: hasher,
		Logger: input.Logger,
		Bus:    input.Bus,
		Config: input.Config,
	})

	return ModuleOutput{
		Store:   store,
		Hasher:  hasher,
		Deriver: eng.Deriver(),
		Engine:  eng,
	}, nil
}

// newStore 按配置选择后备字存储
func newStore(cfg *engineconfig.Config, logger logIntf.Logger) (storageIntf.WordStore, error) {
	switch backend := cfg.GetStorageBackend(); backend {
	case "memory":
		return memorystore.New(logger), nil
	case "badger":
		return badgerstore.New(cfg.GetBadgerDir(), logger)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", backend)
	}
}

// RegisterLifecycle 注册字存储的生命周期管理
func RegisterLifecycle(lifecycle fx.Lifecycle, store storageIntf.WordStore) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}
