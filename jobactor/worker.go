package jobactor

import "sync"

// simpleWorkerHandle and simpleCoordinator are in-memory implementations of
// WorkerHandle/Coordinator for tests and the demo CLI. Production
// deployments observe the real worker/coordinator RPC handles instead.

type simpleWorkerHandle struct {
	id   string
	done chan struct{}
	once sync.Once
}

// NewWorkerHandle returns a WorkerHandle whose liveness is controlled by
// the caller via the returned terminate function.
func NewWorkerHandle(id string) (WorkerHandle, func()) {
	w := &simpleWorkerHandle{id: id, done: make(chan struct{})}
	return w, func() { w.once.Do(func() { close(w.done) }) }
}

func (w *simpleWorkerHandle) Id() string            { return w.id }
func (w *simpleWorkerHandle) Done() <-chan struct{} { return w.done }

type simpleCoordinator struct {
	done chan struct{}
	once sync.Once
}

// NewCoordinator returns a Coordinator whose lifetime is controlled by the
// caller via the returned terminate function.
func NewCoordinator() (Coordinator, func()) {
	c := &simpleCoordinator{done: make(chan struct{})}
	return c, func() { c.once.Do(func() { close(c.done) }) }
}

func (c *simpleCoordinator) Done() <-chan struct{} { return c.done }
