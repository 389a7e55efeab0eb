package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	neg := []float32{-0.3, 1.2, -4.5, -0.01}

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", v, v, 1.0},
		{"opposite", v, neg, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero on left", []float32{0, 0, 0, 0}, v, 0},
		{"zero on right", v, []float32{0, 0, 0, 0}, 0},
		{"nil", nil, v, 0},
		{"empty", []float32{}, []float32{}, 0},
		{"length mismatch", []float32{1, 2, 3}, v, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero([]float32{0, 0}))
	assert.False(t, IsZero([]float32{0, 1e-9}))
}
