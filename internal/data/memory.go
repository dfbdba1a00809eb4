package data

import (
	"fmt"
	"io"
)

// MemoryDataset repeats a pair of in-memory vectors for a number of epochs
// and cuts the result into equal batches. A trailing short batch is dropped.
type MemoryDataset struct {
	x, y      []float64
	epochs    int
	batchSize int
}

func NewMemoryDataset(X, Y []float64, epochs, batchSize int) (*MemoryDataset, error) {
	if len(X) != len(Y) {
		return nil, fmt.Errorf("%w: feature and label vectors have different lengths: %d vs %d", ErrConfiguration, len(X), len(Y))
	}
	if epochs <= 0 {
		return nil, fmt.Errorf("%w: epochs must be positive, got %d", ErrConfiguration, epochs)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrConfiguration, batchSize)
	}

	return &MemoryDataset{
		x:         append([]float64(nil), X...),
		y:         append([]float64(nil), Y...),
		epochs:    epochs,
		batchSize: batchSize,
	}, nil
}

// Len is the number of batches one iterator yields.
func (md *MemoryDataset) Len() int {
	return len(md.x) * md.epochs / md.batchSize
}

func (md *MemoryDataset) BatchSize() int {
	return md.batchSize
}

func (md *MemoryDataset) Iterator() Iterator[XYBatch] {
	return &memoryIterator{ds: md, total: md.Len()}
}

type memoryIterator struct {
	ds     *MemoryDataset
	batch  int
	total  int
	closed bool
}

func (it *memoryIterator) Next() (XYBatch, error) {
	if it.closed {
		return XYBatch{}, ErrClosed
	}
	if it.batch >= it.total {
		return XYBatch{}, io.EOF
	}

	n := len(it.ds.x)
	size := it.ds.batchSize
	b := XYBatch{
		X: make([]float64, size),
		Y: make([]float64, size),
	}
	start := it.batch * size
	for j := 0; j < size; j++ {
		i := (start + j) % n
		b.X[j] = it.ds.x[i]
		b.Y[j] = it.ds.y[i]
	}
	it.batch++
	return b, nil
}

func (it *memoryIterator) Close() error {
	it.closed = true
	return nil
}
