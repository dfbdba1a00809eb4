package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tabpipe/internal/data"
)

type Config struct {
	Disk struct {
		Pattern      string         `yaml:"pattern"`
		BatchSize    int            `yaml:"batch_size"`
		Mode         string         `yaml:"mode"`
		Label        string         `yaml:"label"`
		Unwanted     []string       `yaml:"unwanted"`
		Delimiter    string         `yaml:"delimiter"`
		MaxLineBytes int            `yaml:"max_line_bytes"`
		OnParseError string         `yaml:"on_parse_error"`
		Seed         int64          `yaml:"seed"`
		Columns      []ColumnConfig `yaml:"columns"`
	} `yaml:"disk"`
	Memory struct {
		Points    int     `yaml:"points"`
		Slope     float64 `yaml:"slope"`
		Intercept float64 `yaml:"intercept"`
		Epochs    int     `yaml:"epochs"`
		BatchSize int     `yaml:"batch_size"`
	} `yaml:"memory"`
}

type ColumnConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default"`
}

// Default returns the taxi fare layout and the y = 2x + 10 synthetic data.
func Default() *Config {
	cfg := &Config{}
	cfg.Disk.BatchSize = 1
	cfg.Disk.Mode = string(data.ModeEval)
	cfg.Disk.Label = data.TaxiLabelColumn
	cfg.Disk.Unwanted = data.TaxiUnwantedColumns()
	cfg.Disk.Delimiter = ","
	cfg.Disk.OnParseError = string(data.SkipRow)

	cfg.Memory.Points = 10
	cfg.Memory.Slope = 2
	cfg.Memory.Intercept = 10
	cfg.Memory.Epochs = 2
	cfg.Memory.BatchSize = 3
	return cfg
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", data.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Disk.BatchSize <= 0 {
		return fmt.Errorf("%w: disk.batch_size must be positive, got %d", data.ErrConfiguration, c.Disk.BatchSize)
	}
	if _, err := data.ParseMode(c.Disk.Mode); err != nil {
		return err
	}
	if _, err := data.ParseRowPolicy(c.Disk.OnParseError); err != nil {
		return err
	}
	if c.Disk.MaxLineBytes < 0 {
		return fmt.Errorf("%w: disk.max_line_bytes must not be negative, got %d", data.ErrConfiguration, c.Disk.MaxLineBytes)
	}
	if c.Memory.Points < 0 {
		return fmt.Errorf("%w: memory.points must not be negative, got %d", data.ErrConfiguration, c.Memory.Points)
	}
	if c.Memory.Epochs <= 0 {
		return fmt.Errorf("%w: memory.epochs must be positive, got %d", data.ErrConfiguration, c.Memory.Epochs)
	}
	if c.Memory.BatchSize <= 0 {
		return fmt.Errorf("%w: memory.batch_size must be positive, got %d", data.ErrConfiguration, c.Memory.BatchSize)
	}
	if _, err := c.Schema(); err != nil {
		return err
	}
	return nil
}

// Schema builds the column schema. With no columns configured it falls back
// to the taxi fare schema.
func (c *Config) Schema() (data.Schema, error) {
	if len(c.Disk.Columns) == 0 {
		return data.TaxiFareSchema(), nil
	}

	cols := make([]data.Column, 0, len(c.Disk.Columns))
	for _, cc := range c.Disk.Columns {
		kind, err := data.ParseKind(cc.Type)
		if err != nil {
			return data.Schema{}, fmt.Errorf("column %q: %w", cc.Name, err)
		}
		if kind == data.KindString {
			cols = append(cols, data.StringColumn(cc.Name, cc.Default))
			continue
		}
		def := 0.0
		if cc.Default != "" {
			def, err = strconv.ParseFloat(cc.Default, 64)
			if err != nil {
				return data.Schema{}, fmt.Errorf("%w: column %q: bad default %q", data.ErrSchema, cc.Name, cc.Default)
			}
		}
		cols = append(cols, data.FloatColumn(cc.Name, def))
	}
	return data.NewSchema(cols...)
}

func (c *Config) CSVOptions() data.CSVOptions {
	return data.CSVOptions{
		BatchSize:    c.Disk.BatchSize,
		Mode:         data.Mode(c.Disk.Mode),
		Label:        c.Disk.Label,
		Unwanted:     append([]string(nil), c.Disk.Unwanted...),
		Delimiter:    c.Disk.Delimiter,
		MaxLineBytes: c.Disk.MaxLineBytes,
		OnParseError: data.RowPolicy(c.Disk.OnParseError),
		Seed:         c.Disk.Seed,
	}
}

// SyntheticXY generates X = 0..points-1 and Y = slope*X + intercept.
func (c *Config) SyntheticXY() ([]float64, []float64) {
	X := make([]float64, c.Memory.Points)
	Y := make([]float64, c.Memory.Points)
	for i := range X {
		X[i] = float64(i)
		Y[i] = c.Memory.Slope*X[i] + c.Memory.Intercept
	}
	return X, Y
}
