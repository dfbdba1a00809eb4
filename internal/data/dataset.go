package data

import (
	"errors"
	"fmt"
	"io"
)

// Iterator is a pull-based cursor over a lazy sequence. Next returns io.EOF
// once the sequence is exhausted. Close releases files and background work;
// it is safe to call more than once.
type Iterator[T any] interface {
	Next() (T, error)
	Close() error
}

// Dataset produces a fresh Iterator on every call. A live iterator is never
// rewound; iterate again by asking the dataset for a new one.
type Dataset[T any] interface {
	Iterator() Iterator[T]
}

type takeIterator[T any] struct {
	it          Iterator[T]
	count, take int
}

// Take wraps it so that it yields at most n elements.
func Take[T any](it Iterator[T], n int) Iterator[T] {
	return &takeIterator[T]{it: it, take: n}
}

func (t *takeIterator[T]) Next() (T, error) {
	if t.count >= t.take {
		var zero T
		return zero, io.EOF
	}
	v, err := t.it.Next()
	if err != nil {
		return v, err
	}
	t.count++
	return v, nil
}

func (t *takeIterator[T]) Close() error {
	return t.it.Close()
}

// Collect drains it and closes it. An infinite iterator must be wrapped with
// Take first.
func Collect[T any](it Iterator[T]) ([]T, error) {
	defer it.Close()

	var out []T
	for {
		v, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("element %d: %w", len(out), err)
		}
		out = append(out, v)
	}
}

// ForEach calls fn for every element until the iterator ends or fn fails.
func ForEach[T any](it Iterator[T], fn func(step int, v T) error) error {
	defer it.Close()

	for step := 0; ; step++ {
		v, err := it.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading batch %d: %w", step, err)
		}
		if err := fn(step, v); err != nil {
			return fmt.Errorf("error processing batch %d: %w", step, err)
		}
	}
}
