package entity

import (
	"encoding/json"
	"fmt"
)

// Anchor is a fractional position on the certificate page: X from the
// left edge, Y from the top. Both coordinates live in [0, 1].
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout places the two text overlays on the certificate template.
type Layout struct {
	Name  Anchor `json:"name"`
	Event Anchor `json:"event"`
}

func DefaultLayout() Layout {
	return Layout{
		Name:  Anchor{X: 0.4, Y: 0.6},
		Event: Anchor{X: 0.4, Y: 0.55},
	}
}

func (a Anchor) valid() bool {
	return a.X >= 0 && a.X <= 1 && a.Y >= 0 && a.Y <= 1
}

// Validate rejects out-of-range anchors before a layout is stored.
// Stored layouts are trusted at render time.
func (l Layout) Validate() error {
	if !l.Name.valid() || !l.Event.valid() {
		return fmt.Errorf("layout anchors must be fractions in [0, 1]")
	}
	return nil
}

// ResolveLayout parses a stored layout, falling back to the default
// when nothing has been saved for the event.
func ResolveLayout(raw []byte) Layout {
	if len(raw) == 0 {
		return DefaultLayout()
	}
	var layout Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return DefaultLayout()
	}
	return layout
}
