package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RowPolicy decides what a reader does with a row it cannot parse.
type RowPolicy string

const (
	// SkipRow logs the bad row and continues with the next one.
	SkipRow RowPolicy = "skip"
	// FailFast returns the *ParseError to the caller.
	FailFast RowPolicy = "fail"
)

func ParseRowPolicy(s string) (RowPolicy, error) {
	switch RowPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SkipRow:
		return SkipRow, nil
	case FailFast:
		return FailFast, nil
	default:
		return "", fmt.Errorf("%w: unknown parse error policy %q", ErrConfiguration, s)
	}
}

// Record is one parsed row, positionally aligned with the schema.
type Record struct {
	Values []Value
	File   string
	Line   int
}

// Get returns the value of the named column.
func (r Record) Get(schema Schema, name string) (Value, bool) {
	i := schema.Index(name)
	if i < 0 || i >= len(r.Values) {
		return Value{}, false
	}
	return r.Values[i], true
}

// DefaultMaxLineBytes bounds a single row. Longer rows are row errors.
const DefaultMaxLineBytes = 1 << 20

type ParseOptions struct {
	Delimiter    string
	MaxLineBytes int
	OnParseError RowPolicy
	// OnSkip is called for every row dropped under SkipRow.
	OnSkip func(*ParseError)
	Logger *slog.Logger
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.Delimiter == "" {
		o.Delimiter = ","
	}
	if o.OnParseError == "" {
		o.OnParseError = SkipRow
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// matchFiles resolves a glob to a sorted list of regular files.
func matchFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrConfiguration, pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, pattern)
	}
	sort.Strings(files)
	return files, nil
}

// RecordReader streams records out of a list of headerless delimited files.
// Fields are split on a plain delimiter; quotes are ordinary characters.
// Files are read one after another in lexical order.
type RecordReader struct {
	files   []string
	schema  Schema
	opts    ParseOptions
	next    int
	file    *os.File
	reader  *bufio.Reader
	name    string
	line    int
	skipped int
}

// ParseFiles resolves pattern and returns a reader over the matching files.
func ParseFiles(pattern string, schema Schema, opts ParseOptions) (*RecordReader, error) {
	if schema.Len() == 0 {
		return nil, fmt.Errorf("%w: schema has no columns", ErrSchema)
	}
	opts = opts.withDefaults()
	if _, err := ParseRowPolicy(string(opts.OnParseError)); err != nil {
		return nil, err
	}
	files, err := matchFiles(pattern)
	if err != nil {
		return nil, err
	}
	return newRecordReader(files, schema, opts), nil
}

func newRecordReader(files []string, schema Schema, opts ParseOptions) *RecordReader {
	return &RecordReader{
		files:  files,
		schema: schema,
		opts:   opts.withDefaults(),
	}
}

func (rr *RecordReader) Files() []string {
	return append([]string(nil), rr.files...)
}

// Skipped reports how many rows were dropped under SkipRow.
func (rr *RecordReader) Skipped() int {
	return rr.skipped
}

func (rr *RecordReader) Next() (Record, error) {
	for {
		if rr.reader == nil {
			if rr.next >= len(rr.files) {
				return Record{}, io.EOF
			}
			if err := rr.open(rr.files[rr.next]); err != nil {
				return Record{}, err
			}
			rr.next++
		}

		text, tooLong, err := rr.readLine()
		if errors.Is(err, io.EOF) {
			rr.closeFile()
			continue
		}
		if err != nil {
			rr.closeFile()
			return Record{}, fmt.Errorf("error reading %s: %w", rr.name, err)
		}
		rr.line++

		var rec Record
		var perr *ParseError
		if tooLong {
			perr = &ParseError{
				File: rr.name,
				Line: rr.line,
				Err:  fmt.Errorf("row longer than %d bytes", rr.opts.MaxLineBytes),
			}
		} else {
			text = strings.TrimSuffix(text, "\r")
			if strings.TrimSpace(text) == "" {
				continue
			}
			rec, perr = rr.parseLine(text)
		}
		if perr == nil {
			return rec, nil
		}
		if rr.opts.OnParseError == FailFast {
			return Record{}, perr
		}
		rr.skipped++
		rr.opts.Logger.Warn("skipping malformed row",
			slog.String("file", perr.File),
			slog.Int("line", perr.Line),
			slog.String("column", perr.Column),
			slog.String("error", perr.Err.Error()))
		if rr.opts.OnSkip != nil {
			rr.opts.OnSkip(perr)
		}
	}
}

func (rr *RecordReader) parseLine(text string) (Record, *ParseError) {
	fields := strings.Split(text, rr.opts.Delimiter)
	if len(fields) > rr.schema.Len() {
		return Record{}, &ParseError{
			File: rr.name,
			Line: rr.line,
			Err:  fmt.Errorf("%d fields, schema has %d columns", len(fields), rr.schema.Len()),
		}
	}

	values := make([]Value, rr.schema.Len())
	for i := 0; i < rr.schema.Len(); i++ {
		col := rr.schema.Column(i)
		raw := ""
		if i < len(fields) {
			raw = fields[i]
		}
		v, err := col.parse(raw)
		if err != nil {
			return Record{}, &ParseError{
				File:   rr.name,
				Line:   rr.line,
				Column: col.Name,
				Value:  raw,
				Err:    err,
			}
		}
		values[i] = v
	}
	return Record{Values: values, File: rr.name, Line: rr.line}, nil
}

func (rr *RecordReader) open(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	rr.file = file
	rr.reader = bufio.NewReaderSize(file, 64*1024)
	rr.name = name
	rr.line = 0
	return nil
}

// readLine returns the next line without its newline. A line over
// MaxLineBytes is consumed up to its newline and reported as tooLong with
// its content discarded. io.EOF means the file has no more lines.
func (rr *RecordReader) readLine() (string, bool, error) {
	var buf []byte
	read := 0
	tooLong := false
	for {
		chunk, err := rr.reader.ReadSlice('\n')
		read += len(chunk)
		if !tooLong {
			if len(buf)+len(chunk) > rr.opts.MaxLineBytes+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if read == 0 {
				return "", false, io.EOF
			}
			break
		}
		if err != nil {
			return "", false, err
		}
		break
	}
	return strings.TrimSuffix(string(buf), "\n"), tooLong, nil
}

func (rr *RecordReader) closeFile() error {
	rr.reader = nil
	if rr.file == nil {
		return nil
	}
	err := rr.file.Close()
	rr.file = nil
	return err
}

func (rr *RecordReader) Close() error {
	rr.next = len(rr.files)
	err := rr.closeFile()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}
