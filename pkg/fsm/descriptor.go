package fsm

import (
	"reflect"
	"time"
)

// State 状态处理函数返回的转移描述符，指示内核下一步动作。
// 各构建方法均返回新副本，描述符本身不可变
type State[S comparable, D any] struct {
	StateName S
	StateData D

	timeout    *time.Duration
	stopReason *Reason
	replies    []interface{} // 逆序存放，投递时倒序遍历恢复用户调用顺序
}

func (s *State[S, D]) copy() *State[S, D] {
	c := *s
	return &c
}

// Using 替换描述符携带的状态数据
func (s *State[S, D]) Using(data D) *State[S, D] {
	c := s.copy()
	c.StateData = data
	return c
}

// ForMax 设置本次转移的状态超时，覆盖该状态的默认超时。
// 传入 NoTimeout 表示清除本次覆盖，回落到注册表里的状态默认超时；
// 要彻底关闭某状态的超时用 SetStateTimeout(name, NoTimeout)
func (s *State[S, D]) ForMax(d time.Duration) *State[S, D] {
	c := s.copy()
	if d == NoTimeout {
		c.timeout = nil
	} else {
		c.timeout = &d
	}
	return c
}

// Replying 追加一条回复。回复在转移生效前按调用顺序发给消息发送者
func (s *State[S, D]) Replying(v interface{}) *State[S, D] {
	c := s.copy()
	c.replies = append([]interface{}{v}, s.replies...)
	return c
}

// withStopReason 标记为终止描述符
func (s *State[S, D]) withStopReason(r Reason) *State[S, D] {
	c := s.copy()
	c.stopReason = &r
	return c
}

// Timeout 返回本次转移指定的超时
func (s *State[S, D]) Timeout() (time.Duration, bool) {
	if s.timeout == nil {
		return 0, false
	}
	return *s.timeout, true
}

// StopReason 返回终止原因
func (s *State[S, D]) StopReason() (Reason, bool) {
	if s.stopReason == nil {
		return Reason{}, false
	}
	return *s.stopReason, true
}

// Replies 按用户调用顺序返回累积的回复
func (s *State[S, D]) Replies() []interface{} {
	out := make([]interface{}, 0, len(s.replies))
	for i := len(s.replies) - 1; i >= 0; i-- {
		out = append(out, s.replies[i])
	}
	return out
}

// Equals 对描述符做全字段结构比较
func (s *State[S, D]) Equals(o *State[S, D]) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.StateName != o.StateName {
		return false
	}
	if !reflect.DeepEqual(s.StateData, o.StateData) {
		return false
	}
	if (s.timeout == nil) != (o.timeout == nil) {
		return false
	}
	if s.timeout != nil && *s.timeout != *o.timeout {
		return false
	}
	if (s.stopReason == nil) != (o.stopReason == nil) {
		return false
	}
	if s.stopReason != nil && !reflect.DeepEqual(*s.stopReason, *o.stopReason) {
		return false
	}
	return reflect.DeepEqual(s.replies, o.replies)
}

// Goto 构造转移到目标状态的描述符，携带当前状态数据
func (f *FSM[S, D]) Goto(name S) *State[S, D] {
	return &State[S, D]{StateName: name, StateData: f.currentState.StateData}
}

// Stay 留在当前状态
func (f *FSM[S, D]) Stay() *State[S, D] {
	return f.Goto(f.currentState.StateName)
}

// Stop 以 Normal 原因终止
func (f *FSM[S, D]) Stop() *State[S, D] {
	return f.StopWithReason(Normal)
}

// StopWithReason 以指定原因终止
func (f *FSM[S, D]) StopWithReason(reason Reason) *State[S, D] {
	return f.Stay().withStopReason(reason)
}

// StopWith 以指定原因与最终状态数据终止
func (f *FSM[S, D]) StopWith(reason Reason, data D) *State[S, D] {
	return f.Stay().Using(data).withStopReason(reason)
}
