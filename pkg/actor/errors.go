package actor

import "fmt"

var (
	// ErrActorExists 当同名Actor已存在时返回
	ErrActorExists = fmt.Errorf("actor already exists")

	// ErrActorNotFound 当Actor不存在时返回
	ErrActorNotFound = fmt.Errorf("actor not found")

	// ErrSystemStopped 当系统已停止仍尝试操作时返回
	ErrSystemStopped = fmt.Errorf("actor system stopped")

	// ErrShutdownTimeout 当优雅退出超时时返回
	ErrShutdownTimeout = fmt.Errorf("shutdown timeout")
)
