package worker

import (
	"context"
	"log/slog"
	"sync"
)

type ProcessFunc[J any] func(ctx context.Context, job J) error

// Pool runs jobs on a fixed set of goroutines. A failing job is logged and
// never stops its worker.
type Pool[J any] struct {
	name       string
	numWorkers int
	jobs       chan J
	processor  ProcessFunc[J]
	wg         sync.WaitGroup
}

func NewPool[J any](name string, numWorkers, bufferSize int, processor ProcessFunc[J]) *Pool[J] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool[J]{
		name:       name,
		numWorkers: numWorkers,
		jobs:       make(chan J, bufferSize),
		processor:  processor,
	}
}

func (p *Pool[J]) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool[J]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, job); err != nil {
				slog.Warn("job failed", "pool", p.name, "worker", id, "error", err)
			}
		}
	}
}

// Submit blocks while the buffer is full. It gives up once ctx is done,
// since workers stop receiving at that point.
func (p *Pool[J]) Submit(ctx context.Context, job J) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool[J]) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
