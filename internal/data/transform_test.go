package data

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleColumns() map[string]Tensor {
	return map[string]Tensor{
		"fare_amount":      {Kind: KindFloat, Floats: []float64{12, 7.5}},
		"pickup_datetime":  {Kind: KindString, Strings: []string{"2015-01-01", "2015-01-02"}},
		"pickup_longitude": {Kind: KindFloat, Floats: []float64{-73.99, -73.95}},
		"passenger_count":  {Kind: KindFloat, Floats: []float64{1, 2}},
		"key":              {Kind: KindString, Strings: []string{"k1", "k2"}},
	}
}

func TestExtractLabel(t *testing.T) {
	columns := sampleColumns()
	features, label, err := ExtractLabel(columns, "fare_amount", []string{"pickup_datetime", "key"})
	require.NoError(t, err)

	require.Equal(t, []float64{12, 7.5}, label.Floats)
	require.Len(t, features, 2)
	require.Contains(t, features, "pickup_longitude")
	require.Contains(t, features, "passenger_count")
	require.NotContains(t, features, "fare_amount")
	require.NotContains(t, features, "key")

	// The caller's map is not modified.
	require.Len(t, columns, 5)
}

func TestExtractLabelMissingColumns(t *testing.T) {
	_, _, err := ExtractLabel(sampleColumns(), "tip", nil)
	require.ErrorIs(t, err, ErrSchema)

	_, _, err = ExtractLabel(sampleColumns(), "fare_amount", []string{"vendor"})
	require.ErrorIs(t, err, ErrSchema)
}

func TestValidateBatch(t *testing.T) {
	features, label, err := ExtractLabel(sampleColumns(), "fare_amount", []string{"pickup_datetime", "key"})
	require.NoError(t, err)
	b := Batch{Features: features, Label: label}
	require.NoError(t, ValidateBatch(b, "fare_amount", []string{"pickup_datetime", "key"}))

	leaked := Batch{Features: sampleColumns(), Label: label}
	require.Error(t, ValidateBatch(leaked, "fare_amount", nil))
	delete(leaked.Features, "fare_amount")
	require.Error(t, ValidateBatch(leaked, "fare_amount", []string{"key"}))

	ragged := Batch{
		Features: map[string]Tensor{"x": {Kind: KindFloat, Floats: []float64{1}}},
		Label:    label,
	}
	require.Error(t, ValidateBatch(ragged, "fare_amount", nil))

	require.Error(t, ValidateBatch(Batch{Label: Tensor{Kind: KindFloat}}, "fare_amount", nil))
}

func TestDescribe(t *testing.T) {
	batches := []Batch{
		{
			Features: map[string]Tensor{
				"passenger_count": {Kind: KindFloat, Floats: []float64{1, 2}},
				"vendor":          {Kind: KindString, Strings: []string{"a", "b"}},
			},
			Label: Tensor{Kind: KindFloat, Floats: []float64{0.1, 0.2}},
		},
		{
			Features: map[string]Tensor{
				"passenger_count": {Kind: KindFloat, Floats: []float64{3}},
				"vendor":          {Kind: KindString, Strings: []string{"a"}},
			},
			Label: Tensor{Kind: KindFloat, Floats: []float64{0.3}},
		},
	}

	s := Describe(batches)
	require.Equal(t, 2, s.Batches)
	require.Equal(t, 3, s.Rows)

	require.Equal(t, 3, s.Label.Count)
	require.Equal(t, "0.1", s.Label.Min.String())
	require.Equal(t, "0.3", s.Label.Max.String())
	require.Equal(t, "0.2", s.Label.Mean.String())

	require.Len(t, s.Features, 2)
	require.Equal(t, "passenger_count", s.Features[0].Name)
	require.Equal(t, "2", s.Features[0].Mean.String())
	require.Equal(t, "vendor", s.Features[1].Name)
	require.Equal(t, KindString, s.Features[1].Kind)
	require.Equal(t, 2, s.Features[1].Distinct)

	require.Equal(t, 0, Describe(nil).Rows)
}

func TestDescribeNumericExtremes(t *testing.T) {
	batches := []Batch{
		{Label: Tensor{Kind: KindFloat, Floats: []float64{5, -73.99, 12.5}}},
		{Label: Tensor{Kind: KindFloat, Floats: []float64{40.75, -73.99}}},
	}

	s := Describe(batches)
	require.Equal(t, 5, s.Label.Count)
	require.Equal(t, "-73.99", s.Label.Min.String())
	require.Equal(t, "40.75", s.Label.Max.String())
	require.Equal(t, "-17.946", s.Label.Mean.String())
	require.Equal(t, 4, s.Label.Distinct)
	require.Empty(t, s.Features)
}

func TestBatchString(t *testing.T) {
	b := Batch{
		Features: map[string]Tensor{
			"b": {Kind: KindFloat, Floats: []float64{1.5}},
			"a": {Kind: KindString, Strings: []string{"x"}},
		},
		Label: Tensor{Kind: KindFloat, Floats: []float64{3}},
	}
	require.Equal(t, `{a: ["x"], b: [1.5]} label=[3]`, b.String())
}
