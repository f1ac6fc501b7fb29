// Package pdfmark burns signature images, text and "sign here" markers into
// PDF documents. Every operation is a pure transform over byte slices: the
// source is never modified and nothing is written to storage.
package pdfmark

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/attest/pkg/coords"
)

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// EmbedMarks returns a new document with every placement drawn on top of its
// target page. Placements are applied in order.
func EmbedMarks(src []byte, placements []Placement) ([]byte, error) {
	if len(placements) == 0 {
		return nil, ErrNoPlacements
	}

	pages, err := pageCount(src)
	if err != nil {
		return nil, err
	}

	var stamps []stamp
	for i, p := range placements {
		if p.Page < 1 || p.Page > pages {
			return nil, fmt.Errorf(
				"%w: placement %d targets page %d of %d",
				ErrPageOutOfRange, i+1, p.Page, pages,
			)
		}

		s, err := p.stamps()
		if err != nil {
			return nil, fmt.Errorf("placement %d: %w", i+1, err)
		}
		stamps = append(stamps, s...)
	}

	return applyStamps(src, stamps)
}

func applyStamps(src []byte, stamps []stamp) ([]byte, error) {
	out := src
	for _, s := range stamps {
		var buf bytes.Buffer
		if err := api.AddWatermarks(
			bytes.NewReader(out),
			&buf,
			[]string{strconv.Itoa(s.page)},
			s.wm,
			configuration(),
		); err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrStampFailed, s.page, err)
		}
		out = buf.Bytes()
	}

	return out, nil
}

// CountPages returns the number of pages in src. Unparseable input is logged
// and reported as a single page so page navigation keeps working.
func CountPages(src []byte, logger *slog.Logger) int {
	n, err := pageCount(src)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to count PDF pages, assuming 1", "error", err)
		}
		return 1
	}
	return n
}

// PageDims returns the natural size of every page in points.
func PageDims(src []byte) ([]coords.Size, error) {
	dims, err := api.PageDims(bytes.NewReader(src), configuration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}

	sizes := make([]coords.Size, len(dims))
	for i, d := range dims {
		sizes[i] = coords.Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

func pageCount(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrUnreadableDocument)
	}

	n, err := api.PageCount(bytes.NewReader(src), configuration())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnreadableDocument, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrUnreadableDocument)
	}
	return n, nil
}
