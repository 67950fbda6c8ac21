package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFoodName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"food101_huevos_rancheros", "Huevos Rancheros"},
		{"uec256_fried_rice", "Fried Rice"},
		{"RED_VELVET_cake", "Red Velvet Cake"},
		{"pizza", "Pizza"},
		{"food101_mac'n_cheese", "Mac'N Cheese"},
		{"Unknown (Class 7)", "Unknown (Class 7)"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanFoodName(tt.in))
		})
	}
}

func TestSoftmax(t *testing.T) {
	p := Softmax([]float32{1, 2, 3})
	require.Len(t, p, 3)
	var sum float64
	for _, v := range p {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.6652409557748219, p[2], 1e-6)

	// large logits must not overflow
	p = Softmax([]float32{1000, 1001})
	assert.False(t, math.IsNaN(p[0]))
	assert.InDelta(t, 0.7310585786300049, p[1], 1e-6)

	assert.Nil(t, Softmax(nil))
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, -1, Argmax(nil))
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.2, 0.7}))
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}), "ties go to the first index")
}

func TestParseClassIndex(t *testing.T) {
	idx, err := ParseClassIndex([]byte(`{"food101_pizza": 0, "uec256_ramen": 2}`))
	require.NoError(t, err)
	assert.Equal(t, "food101_pizza", idx.Label(0))
	assert.Equal(t, "uec256_ramen", idx.Label(2))
	assert.Equal(t, "Unknown (Class 1)", idx.Label(1))
	assert.Equal(t, 3, idx.Size())

	_, err = ParseClassIndex([]byte(`{}`))
	assert.Error(t, err)

	_, err = ParseClassIndex([]byte(`{"a": 0, "b": 0}`))
	assert.ErrorContains(t, err, "share index 0")

	_, err = ParseClassIndex([]byte(`{"a": -1}`))
	assert.Error(t, err)

	_, err = ParseClassIndex([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadClassIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class_to_idx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"food101_tacos": 0, "food101_nachos": 1}`), 0o644))

	idx, err := LoadClassIndex(path)
	require.NoError(t, err)
	assert.Len(t, idx, 2)

	_, err = LoadClassIndex(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPredictFromLogits(t *testing.T) {
	idx := ClassIndex{0: "food101_tacos", 1: "food101_nachos", 2: "food101_paella"}

	pred, err := PredictFromLogits([]float32{0.5, 4, 1}, idx)
	require.NoError(t, err)
	assert.Equal(t, 1, pred.Index)
	assert.Equal(t, "food101_nachos", pred.Label)
	assert.Greater(t, pred.Confidence, 0.9)

	pred, err = PredictFromLogits([]float32{0, 0, 0, 9}, idx)
	require.NoError(t, err)
	assert.Equal(t, "Unknown (Class 3)", pred.Label)

	_, err = PredictFromLogits(nil, idx)
	assert.Error(t, err)
}
