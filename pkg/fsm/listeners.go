package fsm

import (
	"github.com/junbin-yang/go-actorkit/pkg/actor"
	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// listeners 状态变更观察者集合，仅在状态机自己的串行执行环境内访问
type listeners struct {
	refs map[*actor.PID]struct{}
}

func (l *listeners) add(ref *actor.PID) {
	if l.refs == nil {
		l.refs = make(map[*actor.PID]struct{})
	}
	l.refs[ref] = struct{}{}
}

func (l *listeners) remove(ref *actor.PID) {
	delete(l.refs, ref)
}

func (l *listeners) forEach(fn func(*actor.PID)) {
	for ref := range l.refs {
		fn(ref)
	}
}

func (l *listeners) count() int {
	return len(l.refs)
}

// addListener 接纳观察者：监视其生命周期、加入集合，
// 并立即回发 CurrentState 作为基线
func (f *FSM[S, D]) addListener(ref *actor.PID) {
	if ref == nil {
		return
	}
	f.ctx.Watch(ref)
	f.listeners.add(ref)
	if f.currentState != nil {
		ref.Tell(CurrentState[S]{FSMRef: f.ctx.Self(), State: f.currentState.StateName}, f.ctx.Self())
	}
}

// removeListener 移除观察者并取消监视
func (f *FSM[S, D]) removeListener(ref *actor.PID) {
	if ref == nil {
		return
	}
	f.ctx.Unwatch(ref)
	f.listeners.remove(ref)
}

// notifyListeners 向所有观察者广播一次实际状态变更
func (f *FSM[S, D]) notifyListeners(from, to S) {
	if f.listeners.count() == 0 {
		return
	}
	self := f.ctx.Self()
	msg := Transition[S]{FSMRef: self, From: from, To: to}
	f.listeners.forEach(func(ref *actor.PID) {
		ref.Tell(msg, self)
	})
	if f.debugEvent {
		f.log.Debug("transition notified",
			logger.Any("from", from), logger.Any("to", to),
			logger.Int("listeners", f.listeners.count()))
	}
}
