package data

import (
	"sync"
)

type prefetched[T any] struct {
	v   T
	err error
}

// prefetchIterator runs its source on one background goroutine so that the
// next element is computed while the caller works on the current one. The
// hand-off channel is unbuffered: the worker holds at most one finished
// element it has not delivered yet.
type prefetchIterator[T any] struct {
	src Iterator[T]
	out chan prefetched[T]

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup

	err      error
	closeErr error
}

func newPrefetchIterator[T any](src Iterator[T]) *prefetchIterator[T] {
	return &prefetchIterator[T]{
		src:  src,
		out:  make(chan prefetched[T]),
		done: make(chan struct{}),
	}
}

func (p *prefetchIterator[T]) run() {
	defer p.wg.Done()
	for {
		v, err := p.src.Next()
		select {
		case p.out <- prefetched[T]{v: v, err: err}:
		case <-p.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (p *prefetchIterator[T]) Next() (T, error) {
	var zero T
	if p.err != nil {
		return zero, p.err
	}

	// The worker starts on first use so an iterator that is never read
	// leaves nothing running.
	p.startOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		p.wg.Add(1)
		go p.run()
	})

	select {
	case r := <-p.out:
		if r.err != nil {
			p.err = r.err
			return zero, r.err
		}
		return r.v, nil
	case <-p.done:
		p.err = ErrClosed
		return zero, ErrClosed
	}
}

// Close stops the worker, waits for it to exit and then closes the source.
func (p *prefetchIterator[T]) Close() error {
	p.closeOnce.Do(func() {
		p.startOnce.Do(func() {})
		close(p.done)
		p.wg.Wait()
		p.closeErr = p.src.Close()
	})
	return p.closeErr
}
