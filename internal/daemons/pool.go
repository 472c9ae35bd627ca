package daemons

import (
	"context"
	"sync"
)

// DaemonFunc is one worker loop. Workers receive their id and the pool size
// so they can shard their queries by id modulo.
type DaemonFunc func(ctx context.Context, workerID int, totalWorkers int)

type Pool struct {
	daemonFunc   DaemonFunc
	workersCount int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewPool(ctx context.Context, numWorkers int, daemon DaemonFunc) *Pool {
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		daemonFunc:   daemon,
		workersCount: numWorkers,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workersCount; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.daemonFunc(p.ctx, id, p.workersCount)
		}(i)
	}
}

func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}
