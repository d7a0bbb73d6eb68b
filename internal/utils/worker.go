package utils

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

type WorkerFunction = func(t *tomb.Tomb, task any) error

// WorkerPool fans queued tasks out to tomb-managed workers. Each worker
// actions a single task and exits, so the size given to NewWorkerPool is the
// number of tasks the pool handles, and the tomb's Wait returns once each
// worker has finished its task.
type WorkerPool struct {
	n     int            // number of workers
	tasks chan any       // queued tasks
	work  WorkerFunction // do work method
	log   zerolog.Logger
}

func NewWorkerPool(size int, log zerolog.Logger) WorkerPool {
	return WorkerPool{
		tasks: make(chan any, taskChanSize),
		n:     size,
		log:   log,
	}
}

// Setup starts the pool's workers on the tomb.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	pool.log.Debug().Int("workers", pool.n).Msg("adding workers")
	pool.work = work
	for i := 0; i < pool.n; i++ {
		t.Go(func() error {
			return pool.worker(t)
		})
	}
}

// AddTask queues a task for the next free worker.
func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// A worker waits for one task on the task channel and actions it.
func (pool *WorkerPool) worker(t *tomb.Tomb) error {
	select {
	case <-t.Dying():
		return nil
	case task := <-pool.tasks:
		if err := pool.work(t, task); err != nil {
			pool.log.Error().Err(err).Msg("worker exiting")
			return err
		}
	}
	return nil
}
