package data

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Tensor is one column of a batch, aligned row for row with the label.
type Tensor struct {
	Kind    Kind
	Floats  []float64
	Strings []string
}

func newTensor(kind Kind, capacity int) Tensor {
	if kind == KindFloat {
		return Tensor{Kind: kind, Floats: make([]float64, 0, capacity)}
	}
	return Tensor{Kind: kind, Strings: make([]string, 0, capacity)}
}

func (t Tensor) Len() int {
	if t.Kind == KindFloat {
		return len(t.Floats)
	}
	return len(t.Strings)
}

func (t *Tensor) append(v Value) {
	if t.Kind == KindFloat {
		t.Floats = append(t.Floats, v.Num)
		return
	}
	t.Strings = append(t.Strings, v.Str)
}

func (t Tensor) String() string {
	if t.Kind == KindFloat {
		return fmt.Sprint(t.Floats)
	}
	return fmt.Sprintf("%q", t.Strings)
}

// Batch is a group of rows with the label split off the features.
type Batch struct {
	Features map[string]Tensor
	Label    Tensor
}

func (b Batch) Size() int {
	return b.Label.Len()
}

func (b Batch) FeatureNames() []string {
	names := make([]string, 0, len(b.Features))
	for name := range b.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b Batch) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, name := range b.FeatureNames() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", name, b.Features[name])
	}
	fmt.Fprintf(&sb, "} label=%s", b.Label)
	return sb.String()
}

// XYBatch is one batch of the in-memory source.
type XYBatch struct {
	X []float64
	Y []float64
}

type recordSource interface {
	Next() (Record, error)
	Close() error
}

// batchIterator groups parsed records into batches of batchSize and splits
// each into features and label. The last batch of the input may be short.
type batchIterator struct {
	records   recordSource
	schema    Schema
	batchSize int
	label     string
	unwanted  []string
	done      bool
}

func newBatchIterator(records recordSource, schema Schema, batchSize int, label string, unwanted []string) *batchIterator {
	return &batchIterator{
		records:   records,
		schema:    schema,
		batchSize: batchSize,
		label:     label,
		unwanted:  unwanted,
	}
}

func (bi *batchIterator) Next() (Batch, error) {
	if bi.done {
		return Batch{}, io.EOF
	}

	columns := make(map[string]Tensor, bi.schema.Len())
	for i := 0; i < bi.schema.Len(); i++ {
		c := bi.schema.Column(i)
		columns[c.Name] = newTensor(c.Kind, bi.batchSize)
	}

	rows := 0
	for rows < bi.batchSize {
		rec, err := bi.records.Next()
		if errors.Is(err, io.EOF) {
			bi.done = true
			break
		}
		if err != nil {
			bi.done = true
			return Batch{}, err
		}
		for i, v := range rec.Values {
			name := bi.schema.Column(i).Name
			t := columns[name]
			t.append(v)
			columns[name] = t
		}
		rows++
	}

	if rows == 0 {
		return Batch{}, io.EOF
	}

	features, label, err := ExtractLabel(columns, bi.label, bi.unwanted)
	if err != nil {
		bi.done = true
		return Batch{}, err
	}
	return Batch{Features: features, Label: label}, nil
}

func (bi *batchIterator) Close() error {
	return bi.records.Close()
}
