package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsOutOfRangeAnchors(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"default layout", DefaultLayout(), false},
		{"corners", Layout{Name: Anchor{0, 0}, Event: Anchor{1, 1}}, false},
		{"x above one", Layout{Name: Anchor{1.2, 0.5}, Event: Anchor{0.4, 0.55}}, true},
		{"negative y", Layout{Name: Anchor{0.4, -0.1}, Event: Anchor{0.4, 0.55}}, true},
		{"event anchor out of range", Layout{Name: Anchor{0.4, 0.6}, Event: Anchor{0.4, 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveLayout(t *testing.T) {
	t.Run("empty falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultLayout(), ResolveLayout(nil))
	})

	t.Run("garbage falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultLayout(), ResolveLayout([]byte("not json")))
	})

	t.Run("stored layout wins", func(t *testing.T) {
		raw := []byte(`{"name":{"x":0.5,"y":0.7},"event":{"x":0.5,"y":0.3}}`)
		got := ResolveLayout(raw)
		assert.Equal(t, Layout{Name: Anchor{0.5, 0.7}, Event: Anchor{0.5, 0.3}}, got)
	})
}
