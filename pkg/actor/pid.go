package actor

import (
	"sync"

	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// PID Actor进程句柄，持有邮箱与监视者集合
type PID struct {
	name     string
	system   *System
	behavior Behavior
	mailbox  chan envelope

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	watchMu    sync.Mutex
	watchers   map[*PID]struct{}
	terminated bool

	log logger.Logger
}

// Name 返回Actor名称
func (p *PID) Name() string {
	return p.name
}

// Behavior 返回该Actor绑定的行为实现
func (p *PID) Behavior() Behavior {
	return p.behavior
}

// Tell 向该Actor的邮箱投递一条消息。
// 邮箱已满时丢弃并告警，不阻塞调用方。
func (p *PID) Tell(msg interface{}, sender *PID) {
	select {
	case <-p.stopCh:
		// 已停止，静默丢弃
		return
	default:
	}

	select {
	case p.mailbox <- envelope{message: msg, sender: sender}:
	default:
		p.log.Warn("mailbox full, dropping message", logger.String("actor", p.name))
	}
}

// Done 返回在Actor完全停止后关闭的通道
func (p *PID) Done() <-chan struct{} {
	return p.done
}

// stop 发出停止信号，可重复调用
func (p *PID) stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// run 邮箱循环，消息严格按FIFO串行交给Behavior处理
func (p *PID) run(ctx *actorContext) {
	defer func() {
		if ps, ok := p.behavior.(PostStopper); ok {
			ps.PostStop()
		}
		p.notifyWatchers()
		p.system.remove(p.name)
		close(p.done)
	}()

	if ps, ok := p.behavior.(PreStarter); ok {
		if err := ps.PreStart(ctx); err != nil {
			p.log.Error("actor prestart failed",
				logger.String("actor", p.name), logger.GetError(err))
			p.stop()
			return
		}
	}

	for {
		// 停止信号优先于积压消息
		select {
		case <-p.stopCh:
			return
		default:
		}
		select {
		case <-p.stopCh:
			return
		case env := <-p.mailbox:
			ctx.sender = env.sender
			p.invoke(ctx, env.message)
			ctx.sender = nil
		}
	}
}

// invoke 调用Behavior并拦截panic：记录后停止该Actor，不拖垮进程
func (p *PID) invoke(ctx Context, msg interface{}) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("actor receive panicked, stopping actor",
				logger.String("actor", p.name), logger.Any("panic", r))
			p.stop()
		}
	}()
	p.behavior.Receive(ctx, msg)
}

// addWatcher 注册监视者；若目标已终止则立即补发 Terminated
func (p *PID) addWatcher(w *PID) {
	p.watchMu.Lock()
	if p.terminated {
		p.watchMu.Unlock()
		w.Tell(Terminated{Ref: p}, nil)
		return
	}
	if p.watchers == nil {
		p.watchers = make(map[*PID]struct{})
	}
	p.watchers[w] = struct{}{}
	p.watchMu.Unlock()
}

// removeWatcher 注销监视者
func (p *PID) removeWatcher(w *PID) {
	p.watchMu.Lock()
	delete(p.watchers, w)
	p.watchMu.Unlock()
}

// notifyWatchers 向所有监视者投递 Terminated 并清空集合
func (p *PID) notifyWatchers() {
	p.watchMu.Lock()
	p.terminated = true
	watchers := p.watchers
	p.watchers = nil
	p.watchMu.Unlock()

	for w := range watchers {
		w.Tell(Terminated{Ref: p}, nil)
	}
}
