package pdfmark

import (
	"errors"
	"testing"

	"github.com/JaimeStill/attest/pkg/pdfmark/pdfmarktest"
)

func TestApplyStampsFailureOnReadableDocument(t *testing.T) {
	src := pdfmarktest.SamplePDF(1)

	_, err := applyStamps(src, []stamp{{page: 1, wm: nil}})
	if !errors.Is(err, ErrStampFailed) {
		t.Fatalf("applyStamps() error = %v, want %v", err, ErrStampFailed)
	}
	if errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("applyStamps() error = %v, must not report the document as unreadable", err)
	}
}

func TestApplyStampsNone(t *testing.T) {
	src := pdfmarktest.SamplePDF(1)

	out, err := applyStamps(src, nil)
	if err != nil {
		t.Fatalf("applyStamps() error = %v", err)
	}
	if len(out) != len(src) {
		t.Errorf("applyStamps() changed the document without stamps")
	}
}
