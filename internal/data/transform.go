package data

import (
	"fmt"

	"github.com/samber/lo"
)

// ExtractLabel splits a batch of named columns into features and label.
// The label column and every unwanted column are removed from the returned
// feature map; the input map is left untouched.
func ExtractLabel(columns map[string]Tensor, label string, unwanted []string) (map[string]Tensor, Tensor, error) {
	labelTensor, ok := columns[label]
	if !ok {
		return nil, Tensor{}, fmt.Errorf("%w: label column %q not in batch", ErrSchema, label)
	}
	for _, name := range unwanted {
		if _, ok := columns[name]; !ok {
			return nil, Tensor{}, fmt.Errorf("%w: unwanted column %q not in batch", ErrSchema, name)
		}
	}

	features := make(map[string]Tensor, len(columns))
	for name, t := range columns {
		if name == label || lo.Contains(unwanted, name) {
			continue
		}
		features[name] = t
	}
	return features, labelTensor, nil
}

// validateColumns checks label and unwanted columns against the schema so that
// a bad configuration fails before the first batch is read.
func validateColumns(schema Schema, label string, unwanted []string) error {
	if !schema.Has(label) {
		return fmt.Errorf("%w: label column %q not in schema %v", ErrSchema, label, schema.Names())
	}
	if lo.Contains(unwanted, label) {
		return fmt.Errorf("%w: label column %q is also listed as unwanted", ErrSchema, label)
	}
	for _, name := range unwanted {
		if !schema.Has(name) {
			return fmt.Errorf("%w: unwanted column %q not in schema %v", ErrSchema, name, schema.Names())
		}
	}
	return nil
}
