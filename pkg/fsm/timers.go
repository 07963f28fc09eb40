package fsm

import (
	"time"

	"github.com/junbin-yang/go-actorkit/pkg/actor"
	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// timer 一个命名定时器的登记信息。
// Generation 为创建时的单调计数，用于识别过期触发；
// 调度任务到期时把整条记录投回状态机自己的邮箱
type timer struct {
	Name       string
	Message    interface{}
	Repeat     bool
	Generation int

	cancel *actor.Cancellable
}

// SetTimer 创建命名定时器。
// 同名定时器已存在时先取消旧的。repeat 为真时按 delay 周期触发，
// 否则 delay 之后触发一次。定时器消息经过代数校验后才会交给状态处理函数
func (f *FSM[S, D]) SetTimer(name string, msg interface{}, delay time.Duration, repeat bool) error {
	f.ensureInit()
	if f.ctx == nil {
		return ErrNotInitialized
	}

	if old, ok := f.timers[name]; ok {
		old.cancel.Cancel()
		delete(f.timers, name)
	}

	f.timerGen++
	t := &timer{Name: name, Message: msg, Repeat: repeat, Generation: f.timerGen}

	self := f.ctx.Self()
	task := func() { self.Tell(t, nil) }
	if repeat {
		t.cancel = f.ctx.Scheduler().ScheduleRepeating(delay, delay, task)
	} else {
		t.cancel = f.ctx.Scheduler().ScheduleOnce(delay, task)
	}
	f.timers[name] = t

	if f.debugEvent {
		f.log.Debug("timer set",
			logger.String("name", name),
			logger.Duration("delay", delay),
			logger.Bool("repeat", repeat))
	}
	return nil
}

// CancelTimer 取消命名定时器，不存在时为空操作
func (f *FSM[S, D]) CancelTimer(name string) {
	t, ok := f.timers[name]
	if !ok {
		return
	}
	t.cancel.Cancel()
	delete(f.timers, name)

	if f.debugEvent {
		f.log.Debug("timer cancelled", logger.String("name", name))
	}
}

// IsTimerActive 返回命名定时器是否仍登记在册。
// 一次性定时器的消息已入队但尚未处理时仍返回真
func (f *FSM[S, D]) IsTimerActive(name string) bool {
	_, ok := f.timers[name]
	return ok
}

// cancelAllTimers 终止流程中取消并清空全部定时器
func (f *FSM[S, D]) cancelAllTimers() {
	for name, t := range f.timers {
		t.cancel.Cancel()
		delete(f.timers, name)
	}
}
