package fsm

import (
	"fmt"
	"math"
	"time"

	"github.com/junbin-yang/go-actorkit/pkg/actor"
)

// NoTimeout 无限超时哨兵值。
// SetStateTimeout 传入它表示清除该状态的默认超时；
// ForMax 传入它只清除本次覆盖，状态默认超时仍然生效。
const NoTimeout = time.Duration(math.MaxInt64)

// StateFunction 状态处理函数。
// 返回nil表示未处理该事件，内核将转交给链上的下一个处理函数，
// 最终回落到 WhenUnhandled 注册的兜底处理
type StateFunction[S comparable, D any] func(event *Event[D]) *State[S, D]

// TransitionHandler 状态变更钩子，仅在实际变更（from != to）时触发
type TransitionHandler[S comparable] func(from, to S)

// Event 将触发消息与当前状态数据一并交给状态处理函数
type Event[D any] struct {
	Message   interface{}
	StateData D
}

// StopEvent 终止时交给 OnTermination 回调
type StopEvent[S comparable, D any] struct {
	Reason          Reason
	TerminatedState S
	StateData       D
}

// StateTimeout 状态空闲超时到期时投递给当前状态处理函数的消息
type StateTimeout struct{}

// CurrentState 订阅成功后立即发送给观察者的基线消息
type CurrentState[S comparable] struct {
	FSMRef *actor.PID
	State  S
}

// Transition 每次实际状态变更时发送给所有观察者
type Transition[S comparable] struct {
	FSMRef *actor.PID
	From   S
	To     S
}

// SubscribeTransitionCallback 订阅状态变更通知
type SubscribeTransitionCallback struct {
	Ref *actor.PID
}

// UnsubscribeTransitionCallback 取消订阅
type UnsubscribeTransitionCallback struct {
	Ref *actor.PID
}

// Listen 与 SubscribeTransitionCallback 语义相同的备用订阅通道
type Listen struct {
	Ref *actor.PID
}

// Deafen 与 UnsubscribeTransitionCallback 语义相同的备用退订通道
type Deafen struct {
	Ref *actor.PID
}

// LoggingFSM 标记接口。
// Actor声明该能力后，若宿主配置开启 fsm_debug_events，
// 状态机会记录事件、转移与定时器的调试日志
type LoggingFSM interface {
	LoggingFSM()
}

// timeoutMarker 状态超时的内部哨兵消息，仅携带代数戳
type timeoutMarker struct {
	generation uint64
}

// reasonKind 终止原因类别
type reasonKind int

const (
	reasonNormal reasonKind = iota
	reasonShutdown
	reasonFailure
)

// Reason 状态机终止原因
type Reason struct {
	kind  reasonKind
	cause interface{}
}

// Normal 正常终止
var Normal = Reason{kind: reasonNormal}

// Shutdown 被宿主关停
var Shutdown = Reason{kind: reasonShutdown}

// Failure 构造携带失败原因的异常终止
func Failure(cause interface{}) Reason {
	return Reason{kind: reasonFailure, cause: cause}
}

// IsNormal 是否正常终止
func (r Reason) IsNormal() bool { return r.kind == reasonNormal }

// IsShutdown 是否被关停
func (r Reason) IsShutdown() bool { return r.kind == reasonShutdown }

// IsFailure 是否异常终止
func (r Reason) IsFailure() bool { return r.kind == reasonFailure }

// Cause 返回异常终止的原因载荷，非异常终止时为nil
func (r Reason) Cause() interface{} { return r.cause }

func (r Reason) String() string {
	switch r.kind {
	case reasonNormal:
		return "normal"
	case reasonShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("failure: %v", r.cause)
	}
}
