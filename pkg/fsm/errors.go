package fsm

import "fmt"

var (
	// ErrNotInitialized 当状态机尚未绑定执行上下文时返回
	ErrNotInitialized = fmt.Errorf("fsm not initialized")

	// ErrNoStartState 当未调用 StartWith 就调用 Initialize 时返回
	ErrNoStartState = fmt.Errorf("start state not set, call StartWith first")
)
