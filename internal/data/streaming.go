package data

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type Mode string

const (
	ModeTrain Mode = "train"
	ModeEval  Mode = "eval"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeEval:
		return ModeEval, nil
	case ModeTrain:
		return ModeTrain, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want train or eval)", ErrConfiguration, s)
	}
}

type CSVOptions struct {
	BatchSize    int
	Mode         Mode
	Label        string
	Unwanted     []string
	Delimiter    string
	MaxLineBytes int
	OnParseError RowPolicy
	OnSkip       func(*ParseError)
	// Seed drives the train-mode shuffle. Zero picks a time-based seed.
	Seed   int64
	Logger *slog.Logger
}

// DefaultCSVOptions matches the taxi fare layout: batches of one row, eval
// mode, fare_amount as label, pickup_datetime and key dropped.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		BatchSize:    1,
		Mode:         ModeEval,
		Label:        TaxiLabelColumn,
		Unwanted:     TaxiUnwantedColumns(),
		Delimiter:    ",",
		OnParseError: SkipRow,
	}
}

// CSVDataset reads delimited files into feature/label batches.
//
// In eval mode an iterator makes a single deterministic pass over the files.
// In train mode each pass goes through a shuffle buffer holding BatchSize
// batches and passes repeat forever, so the caller must bound the iteration
// (for example with Take). Every iterator prefetches one batch ahead.
type CSVDataset struct {
	files  []string
	schema Schema
	opts   CSVOptions

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCSVDataset(pattern string, schema Schema, opts CSVOptions) (*CSVDataset, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrConfiguration, opts.BatchSize)
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	policy, err := ParseRowPolicy(string(opts.OnParseError))
	if err != nil {
		return nil, err
	}
	opts.OnParseError = policy
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if schema.Len() == 0 {
		return nil, fmt.Errorf("%w: schema has no columns", ErrSchema)
	}
	if err := validateColumns(schema, opts.Label, opts.Unwanted); err != nil {
		return nil, err
	}

	files, err := matchFiles(pattern)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts.Unwanted = append([]string(nil), opts.Unwanted...)

	return &CSVDataset{
		files:  files,
		schema: schema,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

func (ds *CSVDataset) Files() []string {
	return append([]string(nil), ds.files...)
}

func (ds *CSVDataset) Schema() Schema {
	return ds.schema
}

func (ds *CSVDataset) Options() CSVOptions {
	return ds.opts
}

// Iterator starts a new pass over the files. Iterators are independent of
// each other; in train mode each gets its own shuffle stream derived from
// the dataset seed.
func (ds *CSVDataset) Iterator() Iterator[Batch] {
	var it Iterator[Batch]
	if ds.opts.Mode == ModeTrain {
		ds.mu.Lock()
		rng := rand.New(rand.NewSource(ds.rng.Int63()))
		ds.mu.Unlock()
		it = newRepeatIterator(func() Iterator[Batch] {
			return newShuffleIterator[Batch](ds.pass(), ds.opts.BatchSize, rng)
		})
	} else {
		it = ds.pass()
	}
	return newPrefetchIterator(it)
}

func (ds *CSVDataset) pass() Iterator[Batch] {
	records := newRecordReader(ds.files, ds.schema, ParseOptions{
		Delimiter:    ds.opts.Delimiter,
		MaxLineBytes: ds.opts.MaxLineBytes,
		OnParseError: ds.opts.OnParseError,
		OnSkip:       ds.opts.OnSkip,
		Logger:       ds.opts.Logger,
	})
	return newBatchIterator(records, ds.schema, ds.opts.BatchSize, ds.opts.Label, ds.opts.Unwanted)
}
