package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/Reubentwj/VIBUSAPP/models"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h, c)))
	return buf.Bytes()
}

func pngBase64(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(pngBytes(t, w, h, c))
}

type fakeClassifier struct {
	pred Prediction
	err  error
	seen *DecodedImage
}

func (f *fakeClassifier) Classify(_ context.Context, img *DecodedImage) (Prediction, error) {
	f.seen = img
	return f.pred, f.err
}
func (f *fakeClassifier) NumClasses() int { return 101 }
func (f *fakeClassifier) Device() string  { return "test" }
func (f *fakeClassifier) Name() string    { return "fake" }
func (f *fakeClassifier) Close() error    { return nil }

type fakeProvider struct {
	name   string
	macros Macros
	err    error
	calls  []string
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Lookup(_ context.Context, food string) (Macros, error) {
	f.calls = append(f.calls, food)
	return f.macros, f.err
}

type memoryStore struct {
	mu      sync.Mutex
	records []models.FoodAnalysis
	err     error
}

func (m *memoryStore) Record(_ context.Context, a *models.FoodAnalysis) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *a)
	return nil
}

func (m *memoryStore) Recent(_ context.Context, limit int) ([]models.FoodAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FoodAnalysis, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
