package engine

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ucskit/v1/internal/core/ucs/clone"
	"github.com/ucskit/v1/internal/core/ucs/gateway"
	ifaces "github.com/ucskit/v1/internal/core/ucs/interfaces"
	"github.com/ucskit/v1/pkg/types"
)

// frame 一个调用帧
type frame struct {
	caller   types.Address // 调用者身份
	self     types.Address // 存储作用域
	code     types.Address // 执行代码的账户
	value    *uint256.Int
	calldata []byte
	static   bool
}

// execState 一次外部调用的执行状态
//
// 严格单线程：本系统内没有并行，嵌套远程调用阻塞调用方直到完成。
type execState struct {
	engine    *Engine
	ctx       context.Context
	journal   *journal
	cap       gateway.Capability
	remaining uint64
	depth     int
	frames    []*frame

	// 本次调用内创建的账户（与存储写入一起提交或回滚）
	pending map[types.Address]*account
	created []types.Address
}

// snapshotMark 覆盖存储写入与账户创建的组合回滚点
type snapshotMark struct {
	undo    int
	created int
}

func newExecState(ctx context.Context, e *Engine, budget uint64) *execState {
	return &execState{
		engine:    e,
		ctx:       ctx,
		journal:   newJournal(),
		remaining: budget,
		pending:   make(map[types.Address]*account),
	}
}

// charge 扣减计算预算；耗尽视同普通失败
func (st *execState) charge(cost uint64) error {
	if st.remaining < cost {
		st.remaining = 0
		return ErrBudgetExhausted
	}
	st.remaining -= cost
	return nil
}

// top 当前活动调用帧
func (st *execState) top() *frame {
	return st.frames[len(st.frames)-1]
}

// snapshot / revertTo 组合回滚点
func (st *execState) snapshot() snapshotMark {
	return snapshotMark{undo: st.journal.snapshot(), created: len(st.created)}
}

func (st *execState) revertTo(mark snapshotMark) {
	st.journal.revertTo(mark.undo)
	for i := len(st.created) - 1; i >= mark.created; i-- {
		delete(st.pending, st.created[i])
	}
	st.created = st.created[:mark.created]
}

// account 解析账户：本调用内新建的优先，再查引擎注册表
func (st *execState) account(addr types.Address) *account {
	if acct, ok := st.pending[addr]; ok {
		return acct
	}
	return st.engine.account(addr)
}

// call 执行一个调用帧
//
// 失败时回滚该帧子树的全部写入与创建；失败数据随第一个返回值
// 透明携带。
func (st *execState) call(fr *frame) ([]byte, error) {
	if st.depth >= st.engine.cfg.GetMaxCallDepth() {
		return nil, ErrCallDepthExceeded
	}
	st.depth++
	defer func() { st.depth-- }()

	if err := st.charge(costCallBase); err != nil {
		return nil, err
	}

	acct := st.account(fr.code)
	if acct == nil {
		// 无代码账户：空成功（与常见执行引擎语义一致）
		return nil, nil
	}

	if acct.contract != nil {
		mark := st.snapshot()
		st.frames = append(st.frames, fr)
		ret, err := acct.contract.Run(&env{st: st, fr: fr}, st.cap)
		st.frames = st.frames[:len(st.frames)-1]
		if err != nil {
			st.revertTo(mark)
			return ret, err
		}
		return ret, nil
	}

	// 原始代码账户：目前仅最小克隆布局可解释——
	// 对内嵌目标做一次尾部的上下文保持调用
	if target, ok := clone.Parse(acct.code); ok {
		inner := &frame{
			caller:   fr.caller,
			self:     fr.self,
			code:     target,
			value:    fr.value,
			calldata: fr.calldata,
			static:   fr.static,
		}
		return st.call(inner)
	}
	return nil, fmt.Errorf("%w: %d bytes at %s", ErrUnsupportedCode, len(acct.code), fr.code.Hex())
}

// create 在本调用作用域内部署可执行体
func (st *execState) create(creator types.Address, code []byte) (types.Address, error) {
	if st.top().static {
		return types.ZeroAddress, fmt.Errorf("%w: create", ErrStaticWrite)
	}
	if len(code) == 0 {
		return types.ZeroAddress, ErrEmptyCode
	}
	if err := st.charge(costCreate); err != nil {
		return types.ZeroAddress, err
	}

	addr := st.engine.nextAddress(creator)
	if st.account(addr) != nil {
		return types.ZeroAddress, fmt.Errorf("%w: %s", ErrAccountExists, addr.Hex())
	}

	deployed := make([]byte, len(code))
	copy(deployed, code)
	st.pending[addr] = &account{code: deployed}
	st.created = append(st.created, addr)

	executablesCreatedTotal.Inc()
	return addr, nil
}

// ==================== CallContext 实现 ====================

// env 暴露给合约代码的调用上下文视图
type env struct {
	st *execState
	fr *frame
}

// 编译时检查：确保env实现了CallContext接口
var _ ifaces.CallContext = (*env)(nil)

func (v *env) Caller() types.Address { return v.fr.caller }
func (v *env) Self() types.Address   { return v.fr.self }

func (v *env) Value() *uint256.Int {
	return new(uint256.Int).Set(v.fr.value)
}

func (v *env) Calldata() []byte {
	return v.fr.calldata
}

func (v *env) Remaining() uint64 {
	return v.st.remaining
}

// Call 普通远程调用
func (v *env) Call(to types.Address, value *uint256.Int, calldata []byte) ([]byte, error) {
	if value == nil {
		value = uint256.NewInt(0)
	}
	if v.fr.static && !value.IsZero() {
		return nil, fmt.Errorf("%w: value transfer", ErrStaticWrite)
	}
	ret, err := v.st.call(&frame{
		caller:   v.fr.self,
		self:     to,
		code:     to,
		value:    value,
		calldata: calldata,
		static:   v.fr.static,
	})
	if err != nil {
		return ret, WrapNested(err)
	}
	return ret, nil
}

// DelegateCall 上下文保持远程调用：调用者与存储作用域均不变
func (v *env) DelegateCall(to types.Address, calldata []byte) ([]byte, error) {
	ret, err := v.st.call(&frame{
		caller:   v.fr.caller,
		self:     v.fr.self,
		code:     to,
		value:    v.fr.value,
		calldata: calldata,
		static:   v.fr.static,
	})
	if err != nil {
		return ret, WrapNested(err)
	}
	return ret, nil
}

// StaticCall 只读远程调用
func (v *env) StaticCall(to types.Address, calldata []byte) ([]byte, error) {
	ret, err := v.st.call(&frame{
		caller:   v.fr.self,
		self:     to,
		code:     to,
		value:    uint256.NewInt(0),
		calldata: calldata,
		static:   true,
	})
	if err != nil {
		return ret, WrapNested(err)
	}
	return ret, nil
}

// Create 部署可执行体
func (v *env) Create(code []byte) (types.Address, error) {
	return v.st.create(v.fr.self, code)
}

// ==================== StateAccessor 实现 ====================

// stateAccessor 存储网关的状态访问点：作用于当前活动帧
type stateAccessor struct {
	st *execState
}

func (a *stateAccessor) StorageRead(slotAddr types.Word) (types.Word, error) {
	if err := a.st.charge(costStorageRead); err != nil {
		return types.ZeroWord, err
	}
	storageReadsTotal.Inc()

	key := storageKey{addr: a.st.top().self, slot: slotAddr}
	if v, ok := a.st.journal.get(key); ok {
		return v, nil
	}
	return a.st.engine.store.Get(a.st.ctx, key.addr, key.slot)
}

func (a *stateAccessor) StorageWrite(slotAddr types.Word, value types.Word) error {
	if a.st.top().static {
		return fmt.Errorf("%w: slot %s", ErrStaticWrite, slotAddr.Hex())
	}
	if err := a.st.charge(costStorageWrite); err != nil {
		return err
	}
	storageWritesTotal.Inc()

	a.st.journal.set(storageKey{addr: a.st.top().self, slot: slotAddr}, value)
	return nil
}

func (a *stateAccessor) HashKeccak(data []byte) (types.Word, error) {
	words := uint64(len(data)+types.WordSize-1) / types.WordSize
	if err := a.st.charge(costHashBase + words*costHashPerWord); err != nil {
		return types.ZeroWord, err
	}
	return types.WordFromBytes(a.st.engine.hasher.Keccak256(data)), nil
}
