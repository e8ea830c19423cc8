// Package engine 提供UCS运行时的调度执行引擎
//
// 引擎是能力令牌的唯一铸造方：每次外部调用入口铸造一枚存储能力，
// 穿透整个调用树，调用出口作废。存储写入经由日志层缓冲——外部调用
// 成功则整体提交到后备字存储，失败则整体丢弃；嵌套失败默认向上
// 冒泡并撤销其子树的全部写入。实现地址解析不跨调用缓存：每次调用
// 都重新经字典解析，升级即时生效。
package engine

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	engineconfig "github.com/ucskit/v1/internal/config/engine"
	hashimpl "github.com/ucskit/v1/internal/core/infrastructure/crypto/hash"
	"github.com/ucskit/v1/internal/core/ucs/clone"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	cryptointf "github.com/ucskit/v1/pkg/interfaces/infrastructure/crypto"
	eventIntf "github.com/ucskit/v1/pkg/interfaces/infrastructure/event"
	log "github.com/ucskit/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/ucskit/v1/pkg/interfaces/infrastructure/storage"
	"github.com/ucskit/v1/pkg/types"
)

// account 一个已部署账户：原生合约或原始代码，二者其一
type account struct {
	contract ifaces.Contract
	code     []byte
}

// CallEvent 外部调用完成事件的载荷
type CallEvent struct {
	Caller   types.Address
	To       types.Address
	Success  bool
	Consumed uint64
}

// Engine 调度执行引擎
type Engine struct {
	mu       sync.RWMutex
	accounts map[types.Address]*account
	nonces   map[types.Address]uint64

	store   storage.WordStore
	hasher  cryptointf.HashManager
	deriver *slot.Deriver
	logger  log.Logger
	bus     eventIntf.Bus
	cfg     *engineconfig.Config
}

// Options 引擎构造选项
type Options struct {
	Store  storage.WordStore        // 必填：后备字存储
	Hasher cryptointf.HashManager   // 可选：缺省Keccak-256服务
	Logger log.Logger               // 可选
	Bus    eventIntf.Bus            // 可选：事件总线
	Config *engineconfig.Config     // 可选：缺省配置
}

// New 创建执行引擎
func New(opts Options) *Engine {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = hashimpl.NewHashService()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = engineconfig.New(nil)
	}
	return &Engine{
		accounts: make(map[types.Address]*account),
		nonces:   make(map[types.Address]uint64),
		store:    opts.Store,
		hasher:   hasher,
		deriver:  slot.NewDeriver(hasher),
		logger:   opts.Logger,
		bus:      opts.Bus,
		cfg:      cfg,
	}
}

// Deriver 返回引擎使用的槽推导器
func (e *Engine) Deriver() *slot.Deriver {
	return e.deriver
}

// Register 在指定地址注册原生合约
func (e *Engine) Register(addr types.Address, contract ifaces.Contract) error {
	if contract == nil {
		return ErrNilContract
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.accounts[addr]; exists {
		return ErrAccountExists
	}
	e.accounts[addr] = &account{contract: contract}
	return nil
}

// CodeAt 返回地址上已提交的原始代码（原生合约与空账户返回nil）
func (e *Engine) CodeAt(addr types.Address) []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	acct, ok := e.accounts[addr]
	if !ok || acct.code == nil {
		return nil
	}
	out := make([]byte, len(acct.code))
	copy(out, acct.code)
	return out
}

// account 查询已提交账户
func (e *Engine) account(addr types.Address) *account {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.accounts[addr]
}

// nextAddress 为creator推导下一个部署地址: keccak(creator ‖ nonce)[12:]
func (e *Engine) nextAddress(creator types.Address) types.Address {
	e.mu.Lock()
	nonce := e.nonces[creator]
	e.nonces[creator] = nonce + 1
	e.mu.Unlock()

	buf := make([]byte, types.AddressSize+8)
	copy(buf, creator[:])
	for i := 0; i < 8; i++ {
		buf[types.AddressSize+i] = byte(nonce >> (56 - 8*i))
	}
	return types.WordFromBytes(e.hasher.Keccak256(buf)).Address()
}

// Execute 执行一次外部调用
//
// 调用是原子的：全部存储写入与账户创建要么在成功时一并可见，
// 要么在失败时一并丢弃，没有中间可见性。
func (e *Engine) Execute(ctx context.Context, call types.ExternalCall) types.ExecutionResult {
	budget := call.Budget
	if budget == 0 {
		budget = e.cfg.GetDefaultBudget()
	}
	value := call.Value
	if value == nil {
		value = uint256.NewInt(0)
	}

	st := newExecState(ctx, e, budget)
	session, cap := gateway.OpenSession(&stateAccessor{st: st}, e.deriver)
	st.cap = cap

	ret, err := st.call(&frame{
		caller:   call.Caller,
		self:     call.To,
		code:     call.To,
		value:    value,
		calldata: call.Calldata,
		static:   false,
	})

	// 调用结束即作废能力令牌：逃逸出调用作用域的令牌全部失效
	session.Close()

	consumed := budget - st.remaining
	budgetConsumedTotal.Add(float64(consumed))

	if err != nil {
		callsTotal.WithLabelValues("failed").Inc()
		if e.logger != nil {
			e.logger.Debugf("外部调用失败: to=%s consumed=%d err=%v", call.To.Hex(), consumed, err)
		}
		e.publishCall(call, false, consumed)
		return types.ExecutionResult{
			Success:    false,
			ReturnData: ret,
			Consumed:   consumed,
			Err:        err,
		}
	}

	// 提交：账户创建进注册表，存储写入整批落盘
	if err := e.commit(ctx, st); err != nil {
		callsTotal.WithLabelValues("failed").Inc()
		if e.logger != nil {
			e.logger.Errorf("外部调用提交失败: to=%s err=%v", call.To.Hex(), err)
		}
		e.publishCall(call, false, consumed)
		return types.ExecutionResult{
			Success:  false,
			Consumed: consumed,
			Err:      err,
		}
	}

	callsTotal.WithLabelValues("success").Inc()
	e.publishCall(call, true, consumed)
	return types.ExecutionResult{
		Success:    true,
		ReturnData: ret,
		Consumed:   consumed,
	}
}

// commit 提交一次成功调用的全部效果
func (e *Engine) commit(ctx context.Context, st *execState) error {
	writes := st.journal.writes()
	if len(writes) > 0 {
		if err := e.store.Batch(ctx, writes); err != nil {
			return err
		}
	}

	if len(st.created) > 0 {
		e.mu.Lock()
		for _, addr := range st.created {
			e.accounts[addr] = st.pending[addr]
		}
		e.mu.Unlock()

		if e.bus != nil {
			for _, addr := range st.created {
				if _, ok := clone.Parse(st.pending[addr].code); ok {
					e.bus.Publish(eventIntf.EventProxyDeployed, addr)
				}
			}
		}
	}
	return nil
}

// publishCall 发布调用完成事件
func (e *Engine) publishCall(call types.ExternalCall, success bool, consumed uint64) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventIntf.EventCallExecuted, CallEvent{
		Caller:   call.Caller,
		To:       call.To,
		Success:  success,
		Consumed: consumed,
	})
}
