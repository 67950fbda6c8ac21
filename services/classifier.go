package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"
)

// Prediction is the top class for one image. Confidence is in [0,1].
type Prediction struct {
	Index      int
	Label      string
	Confidence float64
}

// Classifier maps a decoded photo to a food class.
type Classifier interface {
	Classify(ctx context.Context, img *DecodedImage) (Prediction, error)
	NumClasses() int
	Device() string
	Name() string
	Close() error
}

// ClassIndex maps model output positions to class names.
type ClassIndex map[int]string

// LoadClassIndex reads a JSON class_to_idx object, e.g. {"food101_pizza": 0}.
func LoadClassIndex(path string) (ClassIndex, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class index: %w", err)
	}
	return ParseClassIndex(b)
}

func ParseClassIndex(b []byte) (ClassIndex, error) {
	var classToIdx map[string]int
	if err := json.Unmarshal(b, &classToIdx); err != nil {
		return nil, fmt.Errorf("failed to parse class index JSON: %w", err)
	}
	if len(classToIdx) == 0 {
		return nil, fmt.Errorf("class index is empty")
	}
	idx := make(ClassIndex, len(classToIdx))
	for name, i := range classToIdx {
		if prev, dup := idx[i]; dup {
			return nil, fmt.Errorf("classes %q and %q share index %d", prev, name, i)
		}
		if i < 0 {
			return nil, fmt.Errorf("class %q has negative index %d", name, i)
		}
		idx[i] = name
	}
	return idx, nil
}

// Label returns the class name, or "Unknown (Class N)" for a gap.
func (c ClassIndex) Label(i int) string {
	if name, ok := c[i]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (Class %d)", i)
}

// Size is the number of model outputs needed to cover every index.
func (c ClassIndex) Size() int {
	n := 0
	for i := range c {
		if i+1 > n {
			n = i + 1
		}
	}
	return n
}

// Softmax is computed relative to the max logit to stay finite.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxV := logits[0]
	for _, v := range logits[1:] {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v - maxV))
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Argmax returns the first index holding the largest value, or -1.
func Argmax(p []float64) int {
	best := -1
	for i, v := range p {
		if best < 0 || v > p[best] {
			best = i
		}
	}
	return best
}

// PredictFromLogits applies softmax over one row of logits and names the winner.
func PredictFromLogits(logits []float32, classes ClassIndex) (Prediction, error) {
	probs := Softmax(logits)
	i := Argmax(probs)
	if i < 0 {
		return Prediction{}, fmt.Errorf("model returned no scores")
	}
	return Prediction{Index: i, Label: classes.Label(i), Confidence: probs[i]}, nil
}

var datasetPrefixes = []string{"food101_", "uec256_"}

// CleanFoodName turns "food101_huevos_rancheros" into "Huevos Rancheros".
func CleanFoodName(label string) string {
	for _, p := range datasetPrefixes {
		label = strings.ReplaceAll(label, p, "")
	}
	label = strings.ReplaceAll(label, "_", " ")
	return titleCase(label)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest, so "mac'n" becomes "Mac'N".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
