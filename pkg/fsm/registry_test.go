package fsm

import (
	"testing"
	"time"
)

// 同一状态重复注册时链式尝试：先注册的先执行
func TestWhenChaining(t *testing.T) {
	f := newBareFSM()
	f.currentState = &State[string, int]{StateName: "s", StateData: 0}

	h1 := func(e *Event[int]) *State[string, int] {
		if e.Message == "one" {
			return f.Goto("s").Using(1)
		}
		return nil
	}
	h2 := func(e *Event[int]) *State[string, int] {
		switch e.Message {
		case "one":
			// h1 已命中，这里不应被执行
			return f.Goto("s").Using(-1)
		case "two":
			return f.Goto("s").Using(2)
		}
		return nil
	}

	f.When("s", h1)
	f.When("s", h2)

	fn := f.stateFunctions["s"]
	if st := fn(&Event[int]{Message: "one"}); st == nil || st.StateData != 1 {
		t.Errorf("h1 应先命中: %#v", st)
	}
	if st := fn(&Event[int]{Message: "two"}); st == nil || st.StateData != 2 {
		t.Errorf("h1 未命中时应轮到 h2: %#v", st)
	}
	if st := fn(&Event[int]{Message: "three"}); st != nil {
		t.Errorf("两者都未命中时应返回nil: %#v", st)
	}
}

// 状态默认超时以首个注册生效
func TestWhenFirstTimeoutWins(t *testing.T) {
	f := newBareFSM()

	h := func(e *Event[int]) *State[string, int] { return nil }
	f.When("s", h, 100*time.Millisecond)
	f.When("s", h, 900*time.Millisecond)

	if d := f.stateTimeouts["s"]; d != 100*time.Millisecond {
		t.Errorf("后续注册不应覆盖默认超时: got %v, want 100ms", d)
	}
}

// 无超时的注册不会登记默认超时
func TestWhenNoTimeout(t *testing.T) {
	f := newBareFSM()

	f.When("s", func(e *Event[int]) *State[string, int] { return nil })
	if _, ok := f.stateTimeouts["s"]; ok {
		t.Error("未指定超时时不应登记")
	}
}

// SetStateTimeout 覆盖与清除
func TestSetStateTimeout(t *testing.T) {
	f := newBareFSM()

	f.When("s", func(e *Event[int]) *State[string, int] { return nil }, time.Second)

	f.SetStateTimeout("s", 2*time.Second)
	if d := f.stateTimeouts["s"]; d != 2*time.Second {
		t.Errorf("SetStateTimeout 应覆盖默认超时: %v", d)
	}

	f.SetStateTimeout("s", NoTimeout)
	if _, ok := f.stateTimeouts["s"]; ok {
		t.Error("SetStateTimeout(NoTimeout) 应清除登记")
	}
}

// Transform 后处理：命中时加工描述符，未命中时保持nil
func TestTransform(t *testing.T) {
	f := newBareFSM()

	base := func(e *Event[int]) *State[string, int] {
		if e.Message == "hit" {
			return f.Stay().Using(1)
		}
		return nil
	}
	wrapped := f.Transform(base).Using(func(st *State[string, int]) *State[string, int] {
		return st.Replying("post")
	})

	st := wrapped(&Event[int]{Message: "hit"})
	if st == nil || len(st.Replies()) != 1 || st.Replies()[0] != "post" {
		t.Errorf("后处理应追加回复: %#v", st)
	}

	if st := wrapped(&Event[int]{Message: "miss"}); st != nil {
		t.Errorf("未命中时不应执行后处理: %#v", st)
	}
}

// 兜底默认行为：告警并留在当前状态
func TestDefaultUnhandledStays(t *testing.T) {
	f := newBareFSM()

	st := f.handleEvent(&Event[int]{Message: "junk", StateData: 10})
	if st == nil || st.StateName != "idle" {
		t.Errorf("内置兜底应留在当前状态: %#v", st)
	}
	if _, ok := st.StopReason(); ok {
		t.Error("内置兜底不应终止")
	}
}
