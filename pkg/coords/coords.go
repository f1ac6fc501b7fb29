// Package coords converts marker rectangles between UI space (rendered pixels,
// origin at the top-left of the viewing container) and document space (PDF
// points, origin at the bottom-left of the page).
package coords

import (
	"errors"
	"math"
)

// ErrLayoutNotReady indicates the rendering container or page has no measured
// size yet. Callers retry once the container reports real dimensions.
var ErrLayoutNotReady = errors.New("layout not ready: container or page has no measured size")

// Rect is an axis-aligned rectangle. Units depend on the space it lives in.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportMetrics describes a rendered page: the container it is drawn into
// (pixels) and the natural size of the page (points).
type ViewportMetrics struct {
	ContainerWidthPx  float64 `json:"container_width_px"`
	ContainerHeightPx float64 `json:"container_height_px"`
	PageWidthPt       float64 `json:"page_width_pt"`
	PageHeightPt      float64 `json:"page_height_pt"`
}

// NewViewportMetrics pairs a measured container with a page size.
func NewViewportMetrics(container, page Size) ViewportMetrics {
	return ViewportMetrics{
		ContainerWidthPx:  container.Width,
		ContainerHeightPx: container.Height,
		PageWidthPt:       page.Width,
		PageHeightPt:      page.Height,
	}
}

// Ready reports whether all four dimensions are positive and finite.
func (m ViewportMetrics) Ready() bool {
	for _, v := range []float64{
		m.ContainerWidthPx,
		m.ContainerHeightPx,
		m.PageWidthPt,
		m.PageHeightPt,
	} {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Scale returns the points-per-pixel factors on each axis.
func (m ViewportMetrics) Scale() (sx, sy float64, err error) {
	if !m.Ready() {
		return 0, 0, ErrLayoutNotReady
	}
	return m.PageWidthPt / m.ContainerWidthPx, m.PageHeightPt / m.ContainerHeightPx, nil
}

// UIToDoc maps a UI-space rectangle onto the page. The Y axis is flipped and
// compensated by the box height so the visual top-left of the box lands on the
// matching point of a bottom-left origin system.
func UIToDoc(r Rect, m ViewportMetrics) (Rect, error) {
	sx, sy, err := m.Scale()
	if err != nil {
		return Rect{}, err
	}

	return Rect{
		X:      r.X * sx,
		Y:      m.PageHeightPt - (r.Y * sy) - (r.Height * sy),
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}, nil
}

// DocToUI is the inverse of UIToDoc, used to re-render a stored marker.
func DocToUI(r Rect, m ViewportMetrics) (Rect, error) {
	sx, sy, err := m.Scale()
	if err != nil {
		return Rect{}, err
	}

	return Rect{
		X:      r.X / sx,
		Y:      (m.PageHeightPt - r.Y - r.Height) / sy,
		Width:  r.Width / sx,
		Height: r.Height / sy,
	}, nil
}

// Clamp keeps r inside a width x height container. Boxes larger than the
// container shrink to fit; negative sizes collapse to zero.
func Clamp(r Rect, width, height float64) Rect {
	r.Width = clamp(r.Width, 0, math.Max(width, 0))
	r.Height = clamp(r.Height, 0, math.Max(height, 0))
	r.X = clamp(r.X, 0, width-r.Width)
	r.Y = clamp(r.Y, 0, height-r.Height)
	return r
}

// Within reports whether r lies entirely inside a width x height area,
// allowing for floating point error.
func Within(r Rect, width, height float64) bool {
	const eps = 1e-9
	return r.X >= -eps &&
		r.Y >= -eps &&
		r.Width >= 0 &&
		r.Height >= 0 &&
		r.X+r.Width <= width+eps &&
		r.Y+r.Height <= height+eps
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(v, lo), hi)
}
