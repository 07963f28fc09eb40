package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cancellable 一次性取消令牌。
// Cancel 之后任务不再执行；对已触发的一次性任务调用 Cancel 无副作用。
type Cancellable struct {
	cancelled atomic.Bool
	once      sync.Once
	timer     *time.Timer
	stopCh    chan struct{}
}

// Cancel 取消任务，可重复调用
func (c *Cancellable) Cancel() {
	c.once.Do(func() {
		c.cancelled.Store(true)
		if c.timer != nil {
			c.timer.Stop()
		}
		if c.stopCh != nil {
			close(c.stopCh)
		}
	})
}

// IsCancelled 返回是否已取消
func (c *Cancellable) IsCancelled() bool {
	return c.cancelled.Load()
}

// Scheduler 延时与周期任务调度器。
// 回调在调度器协程上执行，只应向邮箱投递消息，不得直接修改Actor状态。
type Scheduler struct{}

// NewScheduler 创建调度器
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// ScheduleOnce 在 delay 之后执行一次 task
func (s *Scheduler) ScheduleOnce(delay time.Duration, task func()) *Cancellable {
	c := &Cancellable{}
	c.timer = time.AfterFunc(delay, func() {
		if c.cancelled.Load() {
			return
		}
		task()
	})
	return c
}

// ScheduleRepeating 在 initial 之后首次执行 task，此后每隔 interval 执行一次
func (s *Scheduler) ScheduleRepeating(initial, interval time.Duration, task func()) *Cancellable {
	c := &Cancellable{stopCh: make(chan struct{})}
	go func() {
		first := time.NewTimer(initial)
		defer first.Stop()

		select {
		case <-c.stopCh:
			return
		case <-first.C:
			task()
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stopCh:
				return
			case <-ticker.C:
				task()
			}
		}
	}()
	return c
}
