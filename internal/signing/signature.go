package signing

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const maxSignatureBytes = 2 << 20

// DecodeSignature decodes a "data:image/png;base64,..." URL as produced by a
// canvas. JPEG data URLs are accepted too; the PDF layer validates the image.
func DecodeSignature(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(dataURL), ",")
	if !ok {
		return nil, fmt.Errorf("%w: not a data URL", ErrInvalidSignature)
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: data URL must be base64", ErrInvalidSignature)
	}
	switch mediaType {
	case "data:image/png", "data:image/jpeg":
	default:
		return nil, fmt.Errorf("%w: unsupported media type %q", ErrInvalidSignature, strings.TrimPrefix(mediaType, "data:"))
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxSignatureBytes {
		return nil, fmt.Errorf("%w: image too large", ErrInvalidSignature)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidSignature)
	}
	return data, nil
}
