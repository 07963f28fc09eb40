package actor

// Behavior 定义Actor的消息处理能力。
// Receive 始终在Actor自己的单协程循环中执行，实现内无需加锁。
type Behavior interface {
	// Receive 处理一条邮箱消息
	Receive(ctx Context, msg interface{})
}

// PreStarter 可选生命周期接口：Actor启动后、处理首条消息前调用
type PreStarter interface {
	PreStart(ctx Context) error
}

// PostStopper 可选生命周期接口：Actor停止后调用
type PostStopper interface {
	PostStop()
}

// Terminated 被监视的Actor终止时投递给所有监视者
type Terminated struct {
	Ref *PID
}

// envelope 邮箱中的消息信封，携带发送者引用
type envelope struct {
	message interface{}
	sender  *PID
}
