package actor

import "github.com/junbin-yang/go-actorkit/pkg/logger"

// Context 提供给 Receive 的执行上下文。
// 仅在Actor自己的串行执行环境内使用，不应逃逸到其他协程。
type Context interface {
	// Self 返回当前Actor自身引用
	Self() *PID
	// Sender 返回正在处理的消息的发送者，可能为nil
	Sender() *PID
	// System 返回所属Actor系统
	System() *System
	// Scheduler 返回系统调度器
	Scheduler() *Scheduler
	// Logger 返回该Actor的日志实例
	Logger() logger.Logger
	// Watch 监视目标Actor，其终止时收到 Terminated 消息
	Watch(target *PID)
	// Unwatch 取消监视
	Unwatch(target *PID)
	// Stop 请求停止目标Actor（含自身）
	Stop(target *PID)
}

type actorContext struct {
	self   *PID
	system *System
	sender *PID
}

func (c *actorContext) Self() *PID {
	return c.self
}

func (c *actorContext) Sender() *PID {
	return c.sender
}

func (c *actorContext) System() *System {
	return c.system
}

func (c *actorContext) Scheduler() *Scheduler {
	return c.system.scheduler
}

func (c *actorContext) Logger() logger.Logger {
	return c.self.log
}

func (c *actorContext) Watch(target *PID) {
	target.addWatcher(c.self)
}

func (c *actorContext) Unwatch(target *PID) {
	target.removeWatcher(c.self)
}

func (c *actorContext) Stop(target *PID) {
	target.stop()
}
