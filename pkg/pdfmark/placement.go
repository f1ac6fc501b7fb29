package pdfmark

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/JaimeStill/attest/pkg/coords"
)

// Style selects how a placement is drawn.
type Style int

const (
	// StyleSignature draws the image fitted inside the rect with text lines stacked below it.
	StyleSignature Style = iota
	// StyleMarker draws the first text line as a highlighted label inside the rect.
	StyleMarker
)

const (
	textPoints    = 9
	lineGap       = 2
	textColor     = "#1F2937"
	markerColor   = "#92400E"
	markerFill    = "#FEF3C7"
	minMarkerFont = 6
	maxMarkerFont = 14
)

// Placement is one mark to draw. Rect is in document space (points, origin at
// the bottom-left of the page) and Page is 1-indexed.
type Placement struct {
	Page  int
	Rect  coords.Rect
	Image []byte
	Lines []string
	Style Style
}

type stamp struct {
	page int
	wm   *model.Watermark
}

func (p Placement) stamps() ([]stamp, error) {
	var stamps []stamp

	if p.Style == StyleMarker {
		if len(p.Lines) == 0 || strings.TrimSpace(p.Lines[0]) == "" {
			return nil, nil
		}
		wm, err := api.TextWatermark(p.Lines[0], markerDesc(p.Rect), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("marker label: %w", err)
		}
		return []stamp{{page: p.Page, wm: wm}}, nil
	}

	if len(p.Image) > 0 {
		cfg, err := decodeImageConfig(p.Image)
		if err != nil {
			return nil, err
		}

		wm, err := api.ImageWatermarkForReader(
			bytes.NewReader(p.Image),
			imageDesc(p.Rect, cfg.Width, cfg.Height),
			true, false, types.POINTS,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignatureImage, err)
		}
		stamps = append(stamps, stamp{page: p.Page, wm: wm})
	}

	for i, line := range p.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		wm, err := api.TextWatermark(line, lineDesc(p.Rect, i, len(p.Lines)), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("text line %d: %w", i+1, err)
		}
		stamps = append(stamps, stamp{page: p.Page, wm: wm})
	}

	return stamps, nil
}

func decodeImageConfig(data []byte) (image.Config, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrInvalidSignatureImage, err)
	}
	if format != "png" && format != "jpeg" {
		return image.Config{}, fmt.Errorf("%w: unsupported format %s", ErrInvalidSignatureImage, format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return image.Config{}, fmt.Errorf("%w: empty image", ErrInvalidSignatureImage)
	}
	return cfg, nil
}

// imageDesc fits a w x h pixel image inside r, preserving aspect ratio and
// centering it.
func imageDesc(r coords.Rect, w, h int) string {
	iw, ih := float64(w), float64(h)
	scale := math.Min(r.Width/iw, r.Height/ih)
	dx := r.X + (r.Width-iw*scale)/2
	dy := r.Y + (r.Height-ih*scale)/2

	return fmt.Sprintf(
		"pos:bl, off:%.2f %.2f, scale:%.4f abs, rot:0, op:1",
		dx, dy, scale,
	)
}

// lineDesc stacks text lines below r. When the lines would fall off the
// bottom of the page they are stacked above r instead.
func lineDesc(r coords.Rect, index, total int) string {
	step := float64(textPoints + lineGap)
	y := r.Y - float64(index+1)*step
	if r.Y-float64(total)*step < 0 {
		y = r.Y + r.Height + lineGap + float64(total-1-index)*step
	}

	return fmt.Sprintf(
		"font:Helvetica, points:%d, pos:bl, off:%.2f %.2f, scale:1 abs, rot:0, op:1, fillc:%s",
		textPoints, r.X, y, textColor,
	)
}

func markerDesc(r coords.Rect) string {
	points := math.Round(math.Max(minMarkerFont, math.Min(maxMarkerFont, r.Height*0.4)))
	dy := r.Y + (r.Height-points)/2

	return fmt.Sprintf(
		"font:Helvetica-Bold, points:%.0f, pos:bl, off:%.2f %.2f, scale:1 abs, rot:0, op:1, ma:4, fillc:%s, bgcol:%s",
		points, r.X+4, dy, markerColor, markerFill,
	)
}
