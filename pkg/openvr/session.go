package openvr

import "sync/atomic"

// active guards the process-wide runtime: the C API allows one
// initialization per process.
var active atomic.Bool

// swapped out in tests
var (
	initRuntime     = vrInit
	shutdownRuntime = vrShutdown
)

// Context is an initialized OpenVR session. Interfaces obtained from it are
// only valid until Shutdown.
type Context struct {
	app    ApplicationType
	closed atomic.Bool
}

// Init starts the runtime as the given application type. A second Init
// while a session is live returns ErrAlreadyInitialized.
func Init(app ApplicationType) (*Context, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}
	if err := initRuntime(app); err != nil {
		active.Store(false)
		return nil, err
	}
	return &Context{app: app}, nil
}

func (c *Context) ApplicationType() ApplicationType {
	return c.app
}

// Shutdown ends the session. Calling it more than once is a no-op.
func (c *Context) Shutdown() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	shutdownRuntime()
	active.Store(false)
}

func (c *Context) check() error {
	if c == nil || c.closed.Load() {
		return ErrSessionClosed
	}
	return nil
}
