package pdfmark

import "errors"

var (
	// ErrUnreadableDocument indicates the source bytes are not a readable PDF.
	ErrUnreadableDocument = errors.New("unreadable document")
	// ErrStampFailed indicates a readable document could not be stamped.
	ErrStampFailed = errors.New("stamp failed")
	// ErrInvalidSignatureImage indicates a placement image is not a decodable PNG or JPEG.
	ErrInvalidSignatureImage = errors.New("invalid signature image")
	// ErrPageOutOfRange indicates a placement targets a page the document does not have.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrNoPlacements indicates EmbedMarks was called with nothing to draw.
	ErrNoPlacements = errors.New("no placements")
)
