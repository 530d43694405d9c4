package scene

import (
	"context"
	"fmt"
	"sync"
)

// digest is a per-node work queue that preserves issue order.
//
// Each item is either parallel or exclusive. Consecutive parallel items run
// concurrently; an exclusive item starts only after every earlier item finished,
// and items after it wait for it to finish.
type digest struct {
	mu       sync.Mutex
	items    []digestItem
	draining bool

	// owned by the drain goroutine
	inflight     sync.WaitGroup
	lastParallel bool
}

type digestItem struct {
	ctx      context.Context
	parallel bool
	fn       func(context.Context) error
	fail     func(error)
	done     chan struct{}
}

// enqueue adds fn to the queue and returns a channel closed once fn has returned.
// Errors and panics raised by fn are handed to fail.
func (d *digest) enqueue(ctx context.Context, parallel bool, fn func(context.Context) error, fail func(error)) <-chan struct{} {
	done := make(chan struct{})
	d.mu.Lock()
	d.items = append(d.items, digestItem{ctx: ctx, parallel: parallel, fn: fn, fail: fail, done: done})
	start := !d.draining
	d.draining = true
	d.mu.Unlock()

	if start {
		go d.drain()
	}
	return done
}

func (d *digest) drain() {
	for {
		d.mu.Lock()
		if len(d.items) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		item := d.items[0]
		d.items[0] = digestItem{}
		d.items = d.items[1:]
		d.mu.Unlock()

		if !item.parallel || !d.lastParallel {
			d.inflight.Wait()
		}
		d.lastParallel = item.parallel

		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			defer close(item.done)
			d.run(item)
		}()
	}
}

func (d *digest) run(item digestItem) {
	defer func() {
		if r := recover(); r != nil && item.fail != nil {
			item.fail(fmt.Errorf("panic: %v", r))
		}
	}()
	if err := item.fn(item.ctx); err != nil && item.fail != nil {
		item.fail(err)
	}
}
