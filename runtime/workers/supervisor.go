package workers

import (
	"coin-chat/contract"
	"coin-chat/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Supervisor runs background workers and keeps them alive:
// a worker that panics or fails is restarted after restartDelay,
// a worker that returns nil is done for good.
// Canceling the parent context stops everything, Run returns once all workers exited.
type Supervisor struct {
	Cancel       context.CancelFunc
	wg           *sync.WaitGroup
	log          *slog.Logger
	workers      []contract.Worker
	restartDelay time.Duration
}

func NewSupervisor(log *slog.Logger, restartDelay time.Duration) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartDelay: restartDelay}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run blocks until every worker has exited.
// Stop cancels only the workers of this supervisor, not the parent context.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start runs one worker in its own goroutine under supervision.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := runGuarded(ctx, worker)
			if err == nil {
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}
			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartDelay):
			}
		}
	}()
}

// runGuarded turns a panic of the worker into ErrWorkerPanic.
func runGuarded(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}
