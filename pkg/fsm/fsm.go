package fsm

import (
	"fmt"
	"time"

	"github.com/junbin-yang/go-actorkit/pkg/actor"
	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// FSM 可嵌入用户Actor的有限状态机内核。
// S 为状态名类型，D 为状态数据类型。
//
// 用法：在构造函数里用 When 注册各状态的处理函数并 StartWith 设定
// 初始状态，在 PreStart 里调用 Initialize 提交初始状态。处理函数
// 返回 Goto/Stay/Stop 构造的描述符指示内核下一步动作。
//
// 所有方法都只应在状态机自己的串行执行环境（Receive 调用栈）内使用
type FSM[S comparable, D any] struct {
	ctx actor.Context
	log logger.Logger

	stateFunctions map[S]StateFunction[S, D]
	stateTimeouts  map[S]time.Duration
	handleEvent    StateFunction[S, D]

	currentState *State[S, D]
	nextState    *State[S, D]

	timers   map[string]*timer
	timerGen int

	// generation 随每条用户消息递增，使在途的状态超时哨兵失效
	generation    uint64
	timeoutCancel *actor.Cancellable

	transitionHandlers []TransitionHandler[S]
	terminateHandler   func(StopEvent[S, D])

	listeners listeners

	debugEvent bool
}

// ensureInit 惰性初始化内部表，允许零值嵌入后直接调用注册方法
func (f *FSM[S, D]) ensureInit() {
	if f.stateFunctions == nil {
		f.stateFunctions = make(map[S]StateFunction[S, D])
		f.stateTimeouts = make(map[S]time.Duration)
		f.timers = make(map[string]*timer)
		f.handleEvent = f.defaultUnhandled
		f.log = logger.Default()
	}
}

// StartWith 设定初始状态与初始数据，可选携带首个状态超时。
// 在 Initialize 之前调用
func (f *FSM[S, D]) StartWith(name S, data D, timeout ...time.Duration) {
	f.ensureInit()
	f.currentState = &State[S, D]{StateName: name, StateData: data}
	if len(timeout) > 0 && timeout[0] != NoTimeout {
		d := timeout[0]
		f.currentState.timeout = &d
	}
}

// Initialize 绑定执行上下文并提交 StartWith 设定的初始状态，
// 同时武装首个状态超时。通常在 PreStart 中调用
func (f *FSM[S, D]) Initialize(ctx actor.Context) error {
	f.ensureInit()
	if f.currentState == nil {
		return ErrNoStartState
	}
	f.ctx = ctx
	f.log = ctx.Logger()

	if s := ctx.System().Settings(); s != nil && s.Actor.FSMDebugEvents {
		if _, ok := ctx.Self().Behavior().(LoggingFSM); ok {
			f.debugEvent = true
		}
	}

	f.makeTransition(f.currentState)
	return nil
}

// EnableDebugEvents 手动开启事件级调试日志
func (f *FSM[S, D]) EnableDebugEvents() {
	f.debugEvent = true
}

// OnTransition 注册状态变更钩子。
// 钩子在观察者收到通知之前同步执行，期间可读取 NextStateData
func (f *FSM[S, D]) OnTransition(fn TransitionHandler[S]) {
	f.transitionHandlers = append(f.transitionHandlers, fn)
}

// OnTermination 注册终止回调，终止时恰好调用一次
func (f *FSM[S, D]) OnTermination(fn func(StopEvent[S, D])) {
	f.terminateHandler = fn
}

// StateName 返回当前状态名
func (f *FSM[S, D]) StateName() S {
	if f.currentState == nil {
		panic("fsm: StateName called before StartWith")
	}
	return f.currentState.StateName
}

// StateData 返回当前状态数据
func (f *FSM[S, D]) StateData() D {
	if f.currentState == nil {
		panic("fsm: StateData called before StartWith")
	}
	return f.currentState.StateData
}

// NextStateData 返回即将进入的状态的数据。
// 仅在状态变更钩子执行期间可用，其余时刻调用会panic
func (f *FSM[S, D]) NextStateData() D {
	if f.nextState == nil {
		panic("fsm: NextStateData is only available during a state transition")
	}
	return f.nextState.StateData
}

// TransformHelper 将状态处理函数的结果交给后处理函数加工
type TransformHelper[S comparable, D any] struct {
	fn StateFunction[S, D]
}

// Transform 构造处理结果后处理器
func (f *FSM[S, D]) Transform(fn StateFunction[S, D]) TransformHelper[S, D] {
	return TransformHelper[S, D]{fn: fn}
}

// Using 返回组合后的处理函数：先执行原函数，命中时将描述符交给 andThen 加工
func (t TransformHelper[S, D]) Using(andThen func(*State[S, D]) *State[S, D]) StateFunction[S, D] {
	return func(e *Event[D]) *State[S, D] {
		if st := t.fn(e); st != nil {
			return andThen(st)
		}
		return nil
	}
}

// Receive 实现 actor.Behavior，按优先级分类每条邮箱消息
func (f *FSM[S, D]) Receive(ctx actor.Context, msg interface{}) {
	f.ensureInit()
	f.ctx = ctx

	// 终止流程已执行，当前状态已冻结，丢弃尚在邮箱里的消息
	if f.currentState != nil && f.currentState.stopReason != nil {
		return
	}

	switch m := msg.(type) {
	case timeoutMarker:
		// 代数不匹配说明超时期间已有用户消息进来，哨兵作废
		if f.currentState != nil && m.generation == f.generation {
			f.timeoutCancel = nil
			f.processMsg(StateTimeout{}, "state timeout")
		}

	case *timer:
		t, ok := f.timers[m.Name]
		if !ok || t.Generation != m.Generation {
			// 已取消或被同名新定时器替换，静默丢弃
			return
		}
		f.cancelStateTimeout()
		f.generation++
		if !m.Repeat {
			delete(f.timers, m.Name)
		}
		if f.debugEvent {
			f.log.Debug("timer fired", logger.String("name", m.Name))
		}
		f.processMsg(m.Message, fmt.Sprintf("timer '%s'", m.Name))

	case SubscribeTransitionCallback:
		f.addListener(m.Ref)
	case Listen:
		f.addListener(m.Ref)
	case UnsubscribeTransitionCallback:
		f.removeListener(m.Ref)
	case Deafen:
		f.removeListener(m.Ref)
	case actor.Terminated:
		f.listeners.remove(m.Ref)

	default:
		if f.currentState == nil {
			f.log.Error("fsm received message before Initialize", logger.Any("message", msg))
			return
		}
		f.cancelStateTimeout()
		f.generation++
		source := "unknown"
		if s := ctx.Sender(); s != nil {
			source = s.Name()
		}
		f.processMsg(msg, source)
	}
}

// PostStop 实现 actor.PostStopper。
// 宿主停止该Actor时以 Shutdown 原因兜底执行终止流程
func (f *FSM[S, D]) PostStop() {
	if f.currentState != nil {
		f.terminate(f.currentState.withStopReason(Shutdown))
	}
}

// processMsg 将消息包装为事件并交给当前状态的处理函数
func (f *FSM[S, D]) processMsg(message interface{}, source string) {
	if f.debugEvent {
		f.log.Debug("processing event",
			logger.Any("message", message),
			logger.String("source", source),
			logger.Any("state", f.currentState.StateName))
	}
	f.processEvent(&Event[D]{Message: message, StateData: f.currentState.StateData})
}

func (f *FSM[S, D]) processEvent(event *Event[D]) {
	var next *State[S, D]
	if fn, ok := f.stateFunctions[f.currentState.StateName]; ok {
		next = fn(event)
	}
	if next == nil {
		next = f.handleEvent(event)
	}
	f.applyState(next)
}

// applyState 应用处理函数返回的描述符
func (f *FSM[S, D]) applyState(next *State[S, D]) {
	if next.stopReason == nil {
		f.makeTransition(next)
		return
	}
	f.deliverReplies(next)
	f.terminate(next)
	f.ctx.Stop(f.ctx.Self())
}

// makeTransition 执行一次转移：校验目标状态、投递回复、
// 触发钩子与观察者通知、提交新状态并武装状态超时
func (f *FSM[S, D]) makeTransition(next *State[S, D]) {
	if _, ok := f.stateFunctions[next.StateName]; !ok {
		f.applyState(f.Stay().withStopReason(
			Failure(fmt.Sprintf("next state %v does not exist", next.StateName))))
		return
	}

	f.deliverReplies(next)

	from := f.currentState.StateName
	if next.StateName != from {
		f.nextState = next
		for _, h := range f.transitionHandlers {
			h(from, next.StateName)
		}
		f.notifyListeners(from, next.StateName)
		f.nextState = nil
	}

	if f.debugEvent && !f.currentState.Equals(next) {
		f.log.Debug("transition",
			logger.Any("from", from), logger.Any("to", next.StateName))
	}

	f.currentState = next
	f.scheduleStateTimeout()
}

// deliverReplies 按用户调用顺序投递累积的回复
func (f *FSM[S, D]) deliverReplies(next *State[S, D]) {
	if len(next.replies) == 0 {
		return
	}
	sender := f.ctx.Sender()
	if sender == nil {
		f.log.Warn("replies dropped, message has no sender",
			logger.Int("count", len(next.replies)))
		return
	}
	// 内部逆序存放，倒序遍历恢复调用顺序
	for i := len(next.replies) - 1; i >= 0; i-- {
		sender.Tell(next.replies[i], f.ctx.Self())
	}
}

// scheduleStateTimeout 为新状态武装空闲超时：
// 描述符指定的超时优先，否则用注册表里的状态默认超时
func (f *FSM[S, D]) scheduleStateTimeout() {
	var timeout *time.Duration
	if f.currentState.timeout != nil {
		timeout = f.currentState.timeout
	} else if d, ok := f.stateTimeouts[f.currentState.StateName]; ok {
		timeout = &d
	}
	if timeout == nil || *timeout <= 0 || *timeout >= NoTimeout {
		return
	}

	gen := f.generation
	self := f.ctx.Self()
	f.timeoutCancel = f.ctx.Scheduler().ScheduleOnce(*timeout, func() {
		self.Tell(timeoutMarker{generation: gen}, nil)
	})
}

// cancelStateTimeout 取消在途的状态超时调度
func (f *FSM[S, D]) cancelStateTimeout() {
	if f.timeoutCancel != nil {
		f.timeoutCancel.Cancel()
		f.timeoutCancel = nil
	}
}

// terminate 终止流程，至多执行一次：
// 记录原因、取消全部定时器、冻结当前状态、调用终止回调
func (f *FSM[S, D]) terminate(stopState *State[S, D]) {
	if f.currentState == nil || f.currentState.stopReason != nil {
		return
	}
	reason := *stopState.stopReason
	f.logTermination(reason)
	f.cancelStateTimeout()
	f.cancelAllTimers()
	f.currentState = stopState

	if f.terminateHandler != nil {
		f.terminateHandler(StopEvent[S, D]{
			Reason:          reason,
			TerminatedState: stopState.StateName,
			StateData:       stopState.StateData,
		})
	}
}

// logTermination 异常终止记录错误日志，其余原因默认不记录
func (f *FSM[S, D]) logTermination(reason Reason) {
	if !reason.IsFailure() {
		return
	}
	switch cause := reason.Cause().(type) {
	case error:
		f.log.Error("fsm terminating with failure", logger.GetError(cause))
	default:
		f.log.Error("fsm terminating with failure", logger.Any("cause", cause))
	}
}
