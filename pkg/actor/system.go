package actor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/junbin-yang/go-actorkit/pkg/config"
	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// System 管理一组Actor的生命周期
type System struct {
	mu         sync.RWMutex
	name       string
	actors     map[string]*PID
	spawnOrder []string
	stopping   bool

	settings        *config.Settings
	scheduler       *Scheduler
	log             logger.Logger
	signals         []os.Signal
	shutdownTimeout time.Duration

	onStartup  []HookFunc
	onShutdown []HookFunc

	wg sync.WaitGroup
}

// HookFunc 系统启动/退出钩子
type HookFunc func(ctx context.Context) error

// NewSystem 创建Actor系统
func NewSystem(name string, opts ...Option) *System {
	s := &System{
		name:            name,
		actors:          make(map[string]*PID),
		settings:        config.DefaultSettings(),
		scheduler:       NewScheduler(),
		log:             logger.Default(),
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}
	s.shutdownTimeout = s.settings.ShutdownTimeout()

	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// Settings 返回系统配置
func (s *System) Settings() *config.Settings {
	return s.settings
}

// Scheduler 返回系统调度器
func (s *System) Scheduler() *Scheduler {
	return s.scheduler
}

// Logger 返回系统日志实例
func (s *System) Logger() logger.Logger {
	return s.log
}

// OnStartup 注册启动钩子
func (s *System) OnStartup(fn HookFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStartup = append(s.onStartup, fn)
}

// OnShutdown 注册退出钩子
func (s *System) OnShutdown(fn HookFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShutdown = append(s.onShutdown, fn)
}

// Spawn 创建并启动一个Actor，名称在系统内唯一
func (s *System) Spawn(name string, b Behavior, opts ...SpawnOption) (*PID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return nil, ErrSystemStopped
	}
	if _, exists := s.actors[name]; exists {
		return nil, ErrActorExists
	}

	sc := spawnConfig{mailboxSize: s.settings.Actor.MailboxSize}
	for _, opt := range opts {
		opt(&sc)
	}
	if sc.mailboxSize <= 0 {
		sc.mailboxSize = 128
	}

	p := &PID{
		name:     name,
		system:   s,
		behavior: b,
		mailbox:  make(chan envelope, sc.mailboxSize),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		log:      s.log,
	}
	ctx := &actorContext{self: p, system: s}

	s.actors[name] = p
	s.spawnOrder = append(s.spawnOrder, name)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		p.run(ctx)
	}()

	s.log.Debug("actor spawned", logger.String("actor", name))
	return p, nil
}

// Get 按名称查找Actor
func (s *System) Get(name string) (*PID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.actors[name]
	return p, ok
}

// Count 返回存活Actor数量
func (s *System) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actors)
}

// Stop 请求停止指定Actor并等待其退出
func (s *System) Stop(p *PID) error {
	if p == nil {
		return ErrActorNotFound
	}
	p.stop()

	select {
	case <-p.Done():
		return nil
	case <-time.After(s.shutdownTimeout):
		return ErrShutdownTimeout
	}
}

// remove 从注册表摘除已退出的Actor
func (s *System) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, name)
	for i, n := range s.spawnOrder {
		if n == name {
			s.spawnOrder = append(s.spawnOrder[:i], s.spawnOrder[i+1:]...)
			break
		}
	}
}

// Run 执行启动钩子后阻塞等待退出信号，收到信号后优雅退出
func (s *System) Run() error {
	ctx := context.Background()
	s.mu.RLock()
	startup := make([]HookFunc, len(s.onStartup))
	copy(startup, s.onStartup)
	s.mu.RUnlock()

	for _, fn := range startup {
		if err := fn(ctx); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, s.signals...)
	defer signal.Stop(sigChan)

	<-sigChan
	s.log.Info("shutdown signal received", logger.String("system", s.name))

	return s.Shutdown()
}

// Shutdown 按与启动相反的顺序停止所有Actor并等待退出
func (s *System) Shutdown() error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true

	// LIFO顺序停止
	for i := len(s.spawnOrder) - 1; i >= 0; i-- {
		if p, ok := s.actors[s.spawnOrder[i]]; ok {
			p.stop()
		}
	}
	shutdown := make([]HookFunc, len(s.onShutdown))
	copy(shutdown, s.onShutdown)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		s.log.Error("actor system shutdown timeout", logger.String("system", s.name))
		return ErrShutdownTimeout
	}

	ctx := context.Background()
	for _, fn := range shutdown {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}
