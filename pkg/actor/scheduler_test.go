package actor

import (
	"sync/atomic"
	"testing"
	"time"
)

// 场景1：一次性任务按延时执行一次
func TestScheduler_Once(t *testing.T) {
	s := NewScheduler()

	var executed int32
	s.ScheduleOnce(100*time.Millisecond, func() {
		atomic.AddInt32(&executed, 1)
	})

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&executed) != 0 {
		t.Error("任务不应在延时前执行")
	}

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&executed) != 1 {
		t.Errorf("期望执行1次，实际 %d 次", atomic.LoadInt32(&executed))
	}

	time.Sleep(200 * time.Millisecond)
	if atomic.LoadInt32(&executed) != 1 {
		t.Error("一次性任务不应执行多次")
	}
}

// 场景2：取消一次性任务
func TestScheduler_OnceCancel(t *testing.T) {
	s := NewScheduler()

	var executed int32
	c := s.ScheduleOnce(100*time.Millisecond, func() {
		atomic.AddInt32(&executed, 1)
	})
	c.Cancel()

	if !c.IsCancelled() {
		t.Error("取消后 IsCancelled 应为真")
	}

	time.Sleep(200 * time.Millisecond)
	if atomic.LoadInt32(&executed) != 0 {
		t.Error("取消后任务不应执行")
	}
}

// 场景3：周期任务按间隔执行
func TestScheduler_Repeating(t *testing.T) {
	s := NewScheduler()

	var count int32
	c := s.ScheduleRepeating(50*time.Millisecond, 50*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})
	defer c.Cancel()

	time.Sleep(280 * time.Millisecond)

	final := atomic.LoadInt32(&count)
	if final < 3 || final > 6 {
		t.Errorf("期望执行4-5次左右，实际 %d 次", final)
	}
}

// 场景4：取消周期任务
func TestScheduler_RepeatingCancel(t *testing.T) {
	s := NewScheduler()

	var count int32
	c := s.ScheduleRepeating(30*time.Millisecond, 30*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	})

	time.Sleep(100 * time.Millisecond)
	c.Cancel()
	before := atomic.LoadInt32(&count)

	time.Sleep(150 * time.Millisecond)
	if after := atomic.LoadInt32(&count); after != before {
		t.Errorf("取消后不应继续执行: 取消前 %d 次，取消后 %d 次", before, after)
	}
}

// 场景5：重复取消无副作用
func TestScheduler_CancelIdempotent(t *testing.T) {
	s := NewScheduler()

	c := s.ScheduleRepeating(30*time.Millisecond, 30*time.Millisecond, func() {})
	c.Cancel()
	c.Cancel()

	c2 := s.ScheduleOnce(30*time.Millisecond, func() {})
	c2.Cancel()
	c2.Cancel()
}
