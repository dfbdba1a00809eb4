package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindFloat  Kind = "float"
	KindString Kind = "string"
)

// ParseKind accepts the spellings used in config files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "float32", "float64", "number":
		return KindFloat, nil
	case "string", "str", "text":
		return KindString, nil
	default:
		return "", fmt.Errorf("%w: unknown column type %q", ErrSchema, s)
	}
}

type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

func FloatValue(v float64) Value { return Value{Kind: KindFloat, Num: v} }

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

func (v Value) String() string {
	if v.Kind == KindFloat {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

type Column struct {
	Name    string
	Kind    Kind
	Default Value
}

func FloatColumn(name string, def float64) Column {
	return Column{Name: name, Kind: KindFloat, Default: FloatValue(def)}
}

func StringColumn(name, def string) Column {
	return Column{Name: name, Kind: KindString, Default: StringValue(def)}
}

// parse converts one raw text field. Empty fields take the column default.
func (c Column) parse(raw string) (Value, error) {
	if raw == "" {
		return c.Default, nil
	}
	if c.Kind == KindString {
		return StringValue(raw), nil
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return c.Default, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Value{}, err
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, fmt.Errorf("value %s overflows float64", trimmed)
	}
	return FloatValue(f), nil
}

// Schema is the ordered list of columns a delimited file is parsed against.
type Schema struct {
	columns []Column
	index   map[string]int
}

func NewSchema(columns ...Column) (Schema, error) {
	if len(columns) == 0 {
		return Schema{}, fmt.Errorf("%w: schema has no columns", ErrSchema)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return Schema{}, fmt.Errorf("%w: column %d has no name", ErrSchema, i)
		}
		if c.Kind != KindFloat && c.Kind != KindString {
			return Schema{}, fmt.Errorf("%w: column %q has unknown type %q", ErrSchema, c.Name, c.Kind)
		}
		if c.Default.Kind != c.Kind {
			return Schema{}, fmt.Errorf("%w: default for column %q is %s, want %s", ErrSchema, c.Name, c.Default.Kind, c.Kind)
		}
		names[i] = c.Name
	}
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return Schema{}, fmt.Errorf("%w: duplicate columns %v", ErrSchema, dups)
	}

	s := Schema{
		columns: append([]Column(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range names {
		s.index[name] = i
	}
	return s, nil
}

func (s Schema) Len() int { return len(s.columns) }

func (s Schema) Column(i int) Column { return s.columns[i] }

func (s Schema) Names() []string {
	return lo.Map(s.columns, func(c Column, _ int) string { return c.Name })
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

const TaxiLabelColumn = "fare_amount"

// TaxiUnwantedColumns returns the columns dropped from the taxi fare features.
func TaxiUnwantedColumns() []string {
	return []string{"pickup_datetime", "key"}
}

// TaxiFareSchema is the column layout of the taxi fare CSV shards.
func TaxiFareSchema() Schema {
	s, err := NewSchema(
		FloatColumn("fare_amount", 0),
		StringColumn("pickup_datetime", "na"),
		FloatColumn("pickup_longitude", 0),
		FloatColumn("pickup_latitude", 0),
		FloatColumn("dropoff_longitude", 0),
		FloatColumn("dropoff_latitude", 0),
		FloatColumn("passenger_count", 0),
		StringColumn("key", "na"),
	)
	if err != nil {
		panic(err)
	}
	return s
}
