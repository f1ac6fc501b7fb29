package signing

import (
	"fmt"
	"time"

	"github.com/JaimeStill/attest/pkg/coords"
	"github.com/JaimeStill/attest/pkg/pdfmark"
)

// DefaultPlacement is where a signature lands on page 1 when a session was
// sent without client markers: one inch from the bottom-left corner.
var DefaultPlacement = coords.Rect{X: 72, Y: 72, Width: 180, Height: 54}

// SignHereLabel is burned into preview copies at each client marker.
const SignHereLabel = "SIGN HERE"

const dateLayout = "2006-01-02"

// SignatureLines returns the text drawn under a signature: the signer's name
// and the signing date.
func SignatureLines(signer string, at time.Time) []string {
	return []string{signer, at.Format(dateLayout)}
}

// ClientPlacements returns one signature placement per marker, in marker
// order, each with the same image and text lines. With no markers it returns
// a single placement at DefaultPlacement on page 1.
func ClientPlacements(markers []Marker, image []byte, signer string, at time.Time) []pdfmark.Placement {
	lines := SignatureLines(signer, at)

	if len(markers) == 0 {
		return []pdfmark.Placement{{
			Page:  1,
			Rect:  DefaultPlacement,
			Image: image,
			Lines: lines,
		}}
	}

	placements := make([]pdfmark.Placement, len(markers))
	for i, m := range markers {
		placements[i] = pdfmark.Placement{
			Page:  m.Page,
			Rect:  m.Rect(),
			Image: image,
			Lines: lines,
		}
	}
	return placements
}

// MarkerPlacements returns "sign here" labels for every marker.
func MarkerPlacements(markers []Marker) []pdfmark.Placement {
	placements := make([]pdfmark.Placement, len(markers))
	for i, m := range markers {
		placements[i] = pdfmark.Placement{
			Page:  m.Page,
			Rect:  m.Rect(),
			Lines: []string{SignHereLabel},
			Style: pdfmark.StyleMarker,
		}
	}
	return placements
}

// Role identifies whose signature a marker collects.
type Role string

const (
	RolePreparer Role = "preparer"
	RoleClient   Role = "client"
)

// UIMarker is a marker as placed in the preparer's viewer: a rectangle in
// container pixels plus the container's measured size.
type UIMarker struct {
	ID        string      `json:"id"`
	Page      int         `json:"page"`
	Role      Role        `json:"role"`
	Rect      coords.Rect `json:"rect"`
	Container coords.Size `json:"container"`
}

// ToDocument clamps the marker to its container and converts it onto page,
// whose natural sizes are given by pages (index 0 is page 1).
func (m UIMarker) ToDocument(pages []coords.Size) (Marker, error) {
	if m.Page < 1 || m.Page > len(pages) {
		return Marker{}, fmt.Errorf(
			"%w: marker %q targets page %d of %d",
			ErrInvalidMarker, m.ID, m.Page, len(pages),
		)
	}

	metrics := coords.NewViewportMetrics(m.Container, pages[m.Page-1])
	if !metrics.Ready() {
		return Marker{}, coords.ErrLayoutNotReady
	}

	clamped := coords.Clamp(m.Rect, m.Container.Width, m.Container.Height)
	if clamped.Width <= 0 || clamped.Height <= 0 {
		return Marker{}, fmt.Errorf("%w: marker %q has no area", ErrInvalidMarker, m.ID)
	}

	r, err := coords.UIToDoc(clamped, metrics)
	if err != nil {
		return Marker{}, err
	}

	return Marker{
		ID:     m.ID,
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Page:   m.Page,
	}, nil
}
