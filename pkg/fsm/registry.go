package fsm

import (
	"time"

	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// When 注册指定状态的处理函数，可选携带该状态的默认空闲超时。
// 对同一状态重复注册时按注册顺序链式尝试：先注册的先执行，
// 返回nil才轮到后注册的。默认超时以首个生效，后续注册不覆盖
func (f *FSM[S, D]) When(name S, fn StateFunction[S, D], stateTimeout ...time.Duration) *FSM[S, D] {
	f.ensureInit()

	if prev, ok := f.stateFunctions[name]; ok {
		f.stateFunctions[name] = func(e *Event[D]) *State[S, D] {
			if st := prev(e); st != nil {
				return st
			}
			return fn(e)
		}
	} else {
		f.stateFunctions[name] = fn
	}

	if len(stateTimeout) > 0 {
		if _, ok := f.stateTimeouts[name]; !ok {
			f.stateTimeouts[name] = stateTimeout[0]
		}
	}
	return f
}

// WhenUnhandled 设置兜底处理函数。
// 兜底函数返回nil时回落到内置行为：记录告警并留在当前状态
func (f *FSM[S, D]) WhenUnhandled(fn StateFunction[S, D]) {
	f.ensureInit()
	f.handleEvent = func(e *Event[D]) *State[S, D] {
		if st := fn(e); st != nil {
			return st
		}
		return f.defaultUnhandled(e)
	}
}

// SetStateTimeout 设置（或覆盖）指定状态的默认空闲超时。
// 传入 NoTimeout 表示清除。可在处理函数内调用
func (f *FSM[S, D]) SetStateTimeout(name S, timeout time.Duration) {
	f.ensureInit()
	if timeout == NoTimeout {
		delete(f.stateTimeouts, name)
		return
	}
	f.stateTimeouts[name] = timeout
}

// defaultUnhandled 内置兜底：记录告警并留在当前状态
func (f *FSM[S, D]) defaultUnhandled(e *Event[D]) *State[S, D] {
	f.log.Warn("unhandled event",
		logger.Any("message", e.Message),
		logger.Any("state", f.currentState.StateName))
	return f.Stay()
}
