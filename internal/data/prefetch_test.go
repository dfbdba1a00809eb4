package data

import (
	"errors"
	"io"
	"math/rand"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingIterator yields 0..n-1 and records how far ahead of the consumer
// it has been pulled.
type countingIterator struct {
	n      int
	pulled atomic.Int64
	closed atomic.Bool
	failAt int
}

func (c *countingIterator) Next() (int, error) {
	i := int(c.pulled.Load())
	if c.failAt > 0 && i == c.failAt {
		return 0, errors.New("boom")
	}
	if i >= c.n {
		return 0, io.EOF
	}
	c.pulled.Add(1)
	return i, nil
}

func (c *countingIterator) Close() error {
	c.closed.Store(true)
	return nil
}

func TestPrefetchYieldsInOrder(t *testing.T) {
	src := &countingIterator{n: 50}
	got, err := Collect[int](newPrefetchIterator[int](src))
	require.NoError(t, err)
	require.Len(t, got, 50)
	for i, v := range got {
		require.Equal(t, i, v)
	}
	require.True(t, src.closed.Load())
}

func TestPrefetchStaysOneAhead(t *testing.T) {
	src := &countingIterator{n: 100}
	it := newPrefetchIterator[int](src)
	defer it.Close()

	for consumed := 1; consumed <= 5; consumed++ {
		_, err := it.Next()
		require.NoError(t, err)

		// Give the worker time to run ahead as far as it can.
		time.Sleep(20 * time.Millisecond)
		ahead := int(src.pulled.Load()) - consumed
		require.GreaterOrEqual(t, ahead, 0)
		require.LessOrEqual(t, ahead, 1)
	}
}

func TestPrefetchDoesNotStartUntilFirstNext(t *testing.T) {
	src := &countingIterator{n: 10}
	it := newPrefetchIterator[int](src)

	time.Sleep(10 * time.Millisecond)
	require.Equal(t, int64(0), src.pulled.Load())

	require.NoError(t, it.Close())
	require.True(t, src.closed.Load())
	_, err := it.Next()
	require.ErrorIs(t, err, ErrClosed)
}

func TestPrefetchCloseJoinsWorker(t *testing.T) {
	src := &countingIterator{n: 1000}
	it := newPrefetchIterator[int](src)

	_, err := it.Next()
	require.NoError(t, err)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())

	pulled := src.pulled.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, pulled, src.pulled.Load(), "worker kept running after Close")
	require.True(t, src.closed.Load())

	_, err = it.Next()
	require.ErrorIs(t, err, ErrClosed)
}

func TestPrefetchPropagatesErrors(t *testing.T) {
	src := &countingIterator{n: 10, failAt: 3}
	it := newPrefetchIterator[int](src)
	defer it.Close()

	for i := 0; i < 3; i++ {
		v, err := it.Next()
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
	_, err := it.Next()
	require.EqualError(t, err, "boom")
	_, err = it.Next()
	require.EqualError(t, err, "boom")
}

type sliceIterator[T any] struct {
	items  []T
	pos    int
	closed bool
}

func (s *sliceIterator[T]) Next() (T, error) {
	var zero T
	if s.pos >= len(s.items) {
		return zero, io.EOF
	}
	v := s.items[s.pos]
	s.pos++
	return v, nil
}

func (s *sliceIterator[T]) Close() error {
	s.closed = true
	return nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestShuffleWindow(t *testing.T) {
	for _, size := range []int{1, 2, 3, 8} {
		src := &sliceIterator[int]{items: seq(40)}
		got, err := Collect[int](newShuffleIterator[int](src, size, rand.New(rand.NewSource(int64(size)))))
		require.NoError(t, err)
		require.Len(t, got, 40)
		require.True(t, src.closed)

		for i, v := range got {
			require.LessOrEqual(t, v, i+size-1, "size %d: element %d emitted at %d", size, v, i)
		}
		sort.Ints(got)
		require.Equal(t, seq(40), got)
	}
}

func TestShuffleSizeOneIsIdentity(t *testing.T) {
	got, err := Collect[int](newShuffleIterator[int](&sliceIterator[int]{items: seq(10)}, 1, rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	require.Equal(t, seq(10), got)
}

func TestRepeatRestartsSource(t *testing.T) {
	opened := 0
	it := newRepeatIterator(func() Iterator[int] {
		opened++
		return &sliceIterator[int]{items: []int{1, 2, 3}}
	})

	got, err := Collect(Take[int](it, 8))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 1, 2, 3, 1, 2}, got)
	require.Equal(t, 3, opened)
}

func TestRepeatStopsOnEmptyPass(t *testing.T) {
	it := newRepeatIterator(func() Iterator[int] {
		return &sliceIterator[int]{}
	})
	_, err := it.Next()
	require.True(t, errors.Is(err, io.EOF))
}

func TestTakeAndForEach(t *testing.T) {
	src := &sliceIterator[int]{items: seq(10)}
	var steps []int
	err := ForEach[int](Take[int](src, 4), func(step int, v int) error {
		steps = append(steps, step*100+v)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{0, 101, 202, 303}, steps)
	require.True(t, src.closed)

	err = ForEach[int](&sliceIterator[int]{items: seq(3)}, func(step int, v int) error {
		if v == 1 {
			return errors.New("stop")
		}
		return nil
	})
	require.ErrorContains(t, err, "batch 1")
}
