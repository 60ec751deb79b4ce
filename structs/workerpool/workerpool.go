package workerpool

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrStopped    = errors.New("worker pool is not accepting work")
	ErrRunning    = errors.New("worker pool is already running")
	ErrNotRunning = errors.New("worker pool is not running")
)

//
// WorkerPool is a fixed-size set of goroutines that execute submitted jobs in FIFO order. The
// queue in front of the workers is unbounded, so Submit never blocks. It is modeled after the
// ThreadPoolExecutor class from the Java standard library, minus futures: callers that want a
// result must send it out of the job themselves.
//
type WorkerPool struct {
	mu       *sync.Mutex
	cond     *sync.Cond
	wg       *sync.WaitGroup
	logger   *zap.Logger
	size     int
	queue    []func()
	running  bool
	stopping bool
}

//
// New instantiates a new worker pool with the specified number of workers. The pool does nothing
// until it is started.
//
func New(size int, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	mu := &sync.Mutex{}

	return &WorkerPool{
		mu:     mu,
		cond:   sync.NewCond(mu),
		wg:     &sync.WaitGroup{},
		logger: logger.Named("workerpool"),
		size:   size,
		queue:  make([]func(), 0),
	}
}

//
// Size returns the number of workers in the pool.
//
func (o *WorkerPool) Size() int {
	return o.size
}

//
// Pending returns the number of jobs that are queued but not yet picked up by a worker.
//
func (o *WorkerPool) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.queue)
}

//
// Start fires up the pool's workers. A pool can only be started once. A channel that can be
// blocked on for a "true" value – which indicates that start up is complete – is returned.
//
func (o *WorkerPool) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil, ErrRunning
	}

	if o.stopping {
		return nil, ErrStopped
	}

	//
	// Fire off the workers.
	//
	o.running = true

	o.wg.Add(o.size)

	for i := 0; i < o.size; i++ {
		go o.worker()
	}

	//
	// Return our "started" channel in case the caller wants to block on it and log some debug info.
	//
	chStarted := make(chan bool, 1)
	chStarted <- true

	o.logger.Debug("Started.", zap.Int("workers", o.size))

	return chStarted, nil
}

//
// Stop tells the pool to shut down. No further jobs are accepted, but every job that was already
// submitted still runs. A channel that can be blocked on for a "true" value – which indicates that
// every worker has exited – is returned.
//
func (o *WorkerPool) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return nil, ErrNotRunning
	}

	o.logger.Debug("Stopping...", zap.Int("pending", len(o.queue)))

	//
	// Wake every idle worker so that they notice the pool is stopping.
	//
	o.running = false
	o.stopping = true

	o.cond.Broadcast()

	//
	// Return the "stopped" channel that the caller can block on if they need to know that the pool
	// has completely drained.
	//
	chStopped := make(chan bool, 1)

	go func() {
		o.wg.Wait()

		o.logger.Debug("Stopped.")

		chStopped <- true
	}()

	return chStopped, nil
}

//
// Submit appends the provided job to the pool's queue.
//
func (o *WorkerPool) Submit(job func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return ErrStopped
	}

	o.queue = append(o.queue, job)

	o.cond.Signal()

	return nil
}

//
// worker pulls jobs off of the head of the queue until the pool is stopping and the queue is
// empty.
//
func (o *WorkerPool) worker() {
	defer o.wg.Done()

	for {
		o.mu.Lock()

		for len(o.queue) == 0 && !o.stopping {
			o.cond.Wait()
		}

		if len(o.queue) == 0 {
			o.mu.Unlock()

			return
		}

		job := o.queue[0]
		o.queue[0] = nil
		o.queue = o.queue[1:]

		o.mu.Unlock()

		job()
	}
}
