package renderer

import (
	"bytes"
	"errors"
	"fmt"

	"clubops/modules/certificate/entity"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrNoPages is returned for a template that contains no pages.
var ErrNoPages = errors.New("certificate template has no pages")

const (
	nameFontSize  = 28
	eventFontSize = 16
)

// Renderer produces a finished certificate from a template and the
// participant/event names. Implementations must be safe for
// concurrent use against the same template bytes.
type Renderer interface {
	Render(template []byte, layout entity.Layout, participantName, eventName string) ([]byte, error)
}

// PDFRenderer overlays text on the first page of a PDF template.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// AnchorPoint converts a fractional anchor to absolute page
// coordinates with a bottom-left origin.
func AnchorPoint(a entity.Anchor, pageWidth, pageHeight float64) (x, y float64) {
	return a.X * pageWidth, pageHeight - a.Y*pageHeight
}

func (r *PDFRenderer) Render(template []byte, layout entity.Layout, participantName, eventName string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()

	dims, err := api.PageDims(bytes.NewReader(template), conf)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if len(dims) == 0 {
		return nil, ErrNoPages
	}
	pageWidth, pageHeight := dims[0].Width, dims[0].Height

	overlays := []struct {
		text   string
		anchor entity.Anchor
		points int
	}{
		{participantName, layout.Name, nameFontSize},
		{eventName, layout.Event, eventFontSize},
	}

	out := template
	for _, o := range overlays {
		x, y := AnchorPoint(o.anchor, pageWidth, pageHeight)
		desc := fmt.Sprintf(
			"font:Helvetica-Bold, points:%d, scale:1 abs, pos:bl, off:%.2f %.2f, fillc:#000000, rot:0",
			o.points, x, y,
		)
		wm, err := api.TextWatermark(o.text, desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("build overlay: %w", err)
		}

		var buf bytes.Buffer
		if err := api.AddWatermarks(bytes.NewReader(out), &buf, nil, wm, conf); err != nil {
			return nil, fmt.Errorf("apply overlay: %w", err)
		}
		out = buf.Bytes()
	}
	return out, nil
}
