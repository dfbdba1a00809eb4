package data

import (
	"errors"
	"io"
	"math/rand"
)

// shuffleIterator draws elements out of a window of at most size upstream
// elements: fill the buffer, emit a random slot, refill it. Output element i
// always comes from upstream positions 0..i+size-1.
type shuffleIterator[T any] struct {
	src  Iterator[T]
	buf  []T
	size int
	rng  *rand.Rand
	eof  bool
}

func newShuffleIterator[T any](src Iterator[T], size int, rng *rand.Rand) *shuffleIterator[T] {
	if size < 1 {
		size = 1
	}
	return &shuffleIterator[T]{
		src:  src,
		buf:  make([]T, 0, size),
		size: size,
		rng:  rng,
	}
}

func (s *shuffleIterator[T]) Next() (T, error) {
	var zero T
	for !s.eof && len(s.buf) < s.size {
		v, err := s.src.Next()
		if errors.Is(err, io.EOF) {
			s.eof = true
			break
		}
		if err != nil {
			return zero, err
		}
		s.buf = append(s.buf, v)
	}
	if len(s.buf) == 0 {
		return zero, io.EOF
	}

	i := s.rng.Intn(len(s.buf))
	v := s.buf[i]
	last := len(s.buf) - 1
	s.buf[i] = s.buf[last]
	s.buf[last] = zero
	s.buf = s.buf[:last]
	return v, nil
}

func (s *shuffleIterator[T]) Close() error {
	s.buf = nil
	return s.src.Close()
}

// repeatIterator restarts its source by calling open whenever the current
// pass ends. A pass that yields nothing ends the repetition.
type repeatIterator[T any] struct {
	open    func() Iterator[T]
	cur     Iterator[T]
	emitted bool
	done    bool
}

func newRepeatIterator[T any](open func() Iterator[T]) *repeatIterator[T] {
	return &repeatIterator[T]{open: open}
}

func (r *repeatIterator[T]) Next() (T, error) {
	var zero T
	for !r.done {
		if r.cur == nil {
			r.cur = r.open()
			r.emitted = false
		}
		v, err := r.cur.Next()
		if err == nil {
			r.emitted = true
			return v, nil
		}
		if !errors.Is(err, io.EOF) {
			return zero, err
		}
		if cerr := r.cur.Close(); cerr != nil {
			return zero, cerr
		}
		r.cur = nil
		if !r.emitted {
			r.done = true
		}
	}
	return zero, io.EOF
}

func (r *repeatIterator[T]) Close() error {
	r.done = true
	if r.cur == nil {
		return nil
	}
	err := r.cur.Close()
	r.cur = nil
	return err
}
