package script

import "time"

type EngineOpt func(*Engine)

// WithCallTimeout bounds how long a single script invocation may run.
// Zero disables the bound.
func WithCallTimeout(d time.Duration) EngineOpt {
	return func(e *Engine) {
		e.timeout = d
	}
}
