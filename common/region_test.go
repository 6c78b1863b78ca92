package common

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIoU verifies the Intersection over Union geometry used by NMS.
func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a        Region
		b        Region
		expected float64
	}{
		{
			name:     "identical regions",
			a:        Region{X: 10, Y: 10, Width: 100, Height: 100},
			b:        Region{X: 10, Y: 10, Width: 100, Height: 100},
			expected: 1.0,
		},
		{
			name:     "disjoint regions",
			a:        Region{X: 0, Y: 0, Width: 50, Height: 50},
			b:        Region{X: 100, Y: 100, Width: 50, Height: 50},
			expected: 0.0,
		},
		{
			name:     "touching edges do not overlap",
			a:        Region{X: 0, Y: 0, Width: 50, Height: 50},
			b:        Region{X: 50, Y: 0, Width: 50, Height: 50},
			expected: 0.0,
		},
		{
			name: "quarter overlap",
			// 50x50 intersection over 20000-2500 union.
			a:        Region{X: 0, Y: 0, Width: 100, Height: 100},
			b:        Region{X: 50, Y: 50, Width: 100, Height: 100},
			expected: 2500.0 / 17500.0,
		},
		{
			name: "three quarters vertical overlap",
			// 100x75 intersection, union 12500: IoU 0.6.
			a:        Region{X: 0, Y: 0, Width: 100, Height: 100},
			b:        Region{X: 0, Y: 25, Width: 100, Height: 100},
			expected: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, IoU(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.expected, IoU(tt.b, tt.a), 1e-12, "IoU should be symmetric")
		})
	}
}

func TestRegionRect(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 30, Height: 40, Score: 0.5}
	assert.Equal(t, image.Rect(10, 20, 40, 60), r.Rect())
	assert.Equal(t, 1200, r.Area())
}
