package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	engineconfig "github.com/ucskit/v1/internal/config/engine"
	eventmodule "github.com/ucskit/v1/internal/core/infrastructure/event"
	logmodule "github.com/ucskit/v1/internal/core/infrastructure/log"
	"github.com/ucskit/v1/internal/core/ucs"
	"github.com/ucskit/v1/internal/core/ucs/dictionary"
	"github.com/ucskit/v1/internal/core/ucs/dispatch"
	"github.com/ucskit/v1/internal/core/ucs/engine"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/internal/core/ucs/proxy"
	"github.com/ucskit/v1/internal/core/ucs/schema"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	"github.com/ucskit/v1/pkg/types"
)

// demo固定地址
var (
	demoAdmin = mustAddr("0x1111111111111111111111111111111111111111")
	demoDict  = mustAddr("0x00000000000000000000000000000000000d1c7a")
	demoProxy = mustAddr("0x0000000000000000000000000000000000980c51")
	demoImpl  = mustAddr("0x00000000000000000000000000000000c0047e50")
)

func mustAddr(s string) types.Address {
	a, err := types.AddressFromHex(s)
	if err != nil {
		panic(err)
	}
	return a
}

// demoCmd 本地演示
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "在本地引擎上部署字典与代理并执行示例调用",
	Long: `在本地引擎上部署字典与代理并执行示例调用

流程: 注册字典/代理/计数器实现 → 初始化所有者与代理 → 经字典
注册计数器选择器 → 透过代理调用两次increment与一次current →
演示未注册选择器的失败路径。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := engineconfig.New(&engineconfig.UserEngineConfig{
			StorageBackend: &globalFlags.Backend,
			BadgerDir:      &globalFlags.BadgerDir,
		})

		var eng *engine.Engine
		var deriver *slot.Deriver
		app := fx.New(
			fx.NopLogger,
			fx.Supply(cfg),
			logmodule.Module(),
			eventmodule.Module(),
			ucs.Module(),
			fx.Populate(&eng, &deriver),
		)

		ctx := cmd.Context()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(context.Background())

		return runDemo(ctx, eng, deriver)
	},
}

// counterImpl 演示用计数器实现
//
// 上下文保持调用下其存储落在代理的作用域内，命名空间根槽保证
// 与字典、代理自身的槽互不冲突。
type counterImpl struct {
	layout *schema.Schema
	table  *dispatch.Table
}

var (
	sigIncrement = dispatch.NewSig("increment").WithReturns("uint256")
	sigCurrent   = dispatch.NewSig("current").WithReturns("uint256")
)

func newCounterImpl(deriver *slot.Deriver) *counterImpl {
	layout := schema.New("ucsd.demo.counter", deriver)
	_ = layout.AddValue("count", "uint256")
	layout.Seal()

	c := &counterImpl{layout: layout}
	c.table = dispatch.MustTable(
		dispatch.Bind(sigIncrement, c.increment),
		dispatch.Bind(sigCurrent, c.current),
	)
	return c
}

func (c *counterImpl) Run(env ifaces.CallContext, cap gateway.Capability) ([]byte, error) {
	return c.table.Dispatch(env, cap)
}

func (c *counterImpl) increment(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	w, err := c.layout.ReadValue(cap, "count")
	if err != nil {
		return nil, err
	}
	next := types.WordFromUint64(w.U256().Uint64() + 1)
	if err := c.layout.WriteValue(cap, "count", next); err != nil {
		return nil, err
	}
	return next[:], nil
}

func (c *counterImpl) current(env ifaces.CallContext, cap gateway.Capability, dec *dispatch.Decoder) ([]byte, error) {
	w, err := c.layout.ReadValue(cap, "count")
	if err != nil {
		return nil, err
	}
	return w[:], nil
}

// runDemo 执行演示流程
func runDemo(ctx context.Context, eng *engine.Engine, deriver *slot.Deriver) error {
	if err := eng.Register(demoDict, dictionary.New(deriver, nil)); err != nil {
		return err
	}
	if err := eng.Register(demoProxy, proxy.New(deriver, proxy.ModeResolve)); err != nil {
		return err
	}
	if err := eng.Register(demoImpl, newCounterImpl(deriver)); err != nil {
		return err
	}

	steps := []struct {
		name     string
		to       types.Address
		calldata []byte
	}{
		{"initializeOwner", demoDict, dispatch.EncodeCall(
			dispatch.DeriveSelector(dictionary.SigInitializeOwner), demoAdmin.Word())},
		{"setImplementation(increment)", demoDict, dispatch.EncodeCall(
			dispatch.DeriveSelector(dictionary.SigSetImplementation),
			dispatch.SelectorWord(dispatch.DeriveSelector(sigIncrement)), demoImpl.Word())},
		{"setImplementation(current)", demoDict, dispatch.EncodeCall(
			dispatch.DeriveSelector(dictionary.SigSetImplementation),
			dispatch.SelectorWord(dispatch.DeriveSelector(sigCurrent)), demoImpl.Word())},
		{"initializeProxy", demoProxy, dispatch.EncodeCall(
			dispatch.DeriveSelector(proxy.SigInitializeProxy), demoDict.Word())},
		{"increment", demoProxy, dispatch.EncodeCall(dispatch.DeriveSelector(sigIncrement))},
		{"increment", demoProxy, dispatch.EncodeCall(dispatch.DeriveSelector(sigIncrement))},
		{"current", demoProxy, dispatch.EncodeCall(dispatch.DeriveSelector(sigCurrent))},
	}

	for _, step := range steps {
		res := eng.Execute(ctx, types.ExternalCall{
			Caller:   demoAdmin,
			To:       step.to,
			Calldata: step.calldata,
		})
		if !res.Success {
			return fmt.Errorf("%s 失败: %v", step.name, res.Err)
		}
		if len(res.ReturnData) == types.WordSize {
			fmt.Printf("%-30s 返回 %s (预算消耗 %d)\n",
				step.name, types.WordFromBytes(res.ReturnData).Hex(), res.Consumed)
		} else {
			fmt.Printf("%-30s 成功 (预算消耗 %d)\n", step.name, res.Consumed)
		}
	}

	// 未注册选择器走失败路径：NoImplementation且无返回数据
	res := eng.Execute(ctx, types.ExternalCall{
		Caller:   demoAdmin,
		To:       demoProxy,
		Calldata: []byte{0xde, 0xad, 0xbe, 0xef},
	})
	fmt.Printf("%-30s 成功=%v 错误=%v 返回数据长度=%d\n",
		"0xdeadbeef", res.Success, res.Err, len(res.ReturnData))
	return nil
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
