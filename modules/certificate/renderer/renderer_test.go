package renderer

import (
	"testing"

	"clubops/modules/certificate/entity"

	"github.com/stretchr/testify/assert"
)

func TestAnchorPoint(t *testing.T) {
	tests := []struct {
		name          string
		anchor        entity.Anchor
		width, height float64
		wantX, wantY  float64
	}{
		{"center of 600x800", entity.Anchor{X: 0.5, Y: 0.5}, 600, 800, 300, 400},
		{"bottom left", entity.Anchor{X: 0, Y: 0}, 600, 800, 0, 800},
		{"top right", entity.Anchor{X: 1, Y: 1}, 600, 800, 600, 0},
		{"default name anchor on A4 landscape", entity.Anchor{X: 0.4, Y: 0.6}, 842, 595, 336.8, 238},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := AnchorPoint(tt.anchor, tt.width, tt.height)
			assert.InDelta(t, tt.wantX, x, 1e-9)
			assert.InDelta(t, tt.wantY, y, 1e-9)
		})
	}
}
