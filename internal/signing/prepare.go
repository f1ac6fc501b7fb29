package signing

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/coords"
	"github.com/JaimeStill/attest/pkg/pdfmark"
)

func (s *system) PageLayout(ctx context.Context, documentID uuid.UUID) (*Layout, error) {
	_, _, pages, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &Layout{
		DocumentID: documentID,
		PageCount:  len(pages),
		Pages:      pages,
	}, nil
}

func (s *system) SignAsPreparer(ctx context.Context, documentID uuid.UUID, cmd SignCommand) (*documents.Document, error) {
	signer := strings.TrimSpace(cmd.SignerName)
	if signer == "" {
		return nil, fmt.Errorf("%w: signer_name required", ErrInvalidRequest)
	}
	if cmd.Marker.Role != "" && cmd.Marker.Role != RolePreparer {
		return nil, fmt.Errorf("%w: expected a %s marker, got %s", ErrInvalidMarker, RolePreparer, cmd.Marker.Role)
	}

	image, err := DecodeSignature(cmd.Signature)
	if err != nil {
		return nil, err
	}

	doc, src, pages, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}

	marker, err := cmd.Marker.ToDocument(pages)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	signed, err := pdfmark.EmbedMarks(src, []pdfmark.Placement{{
		Page:  marker.Page,
		Rect:  marker.Rect(),
		Image: image,
		Lines: SignatureLines(signer, now),
	}})
	if err != nil {
		return nil, fmt.Errorf("embed preparer signature: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.docs.Create(ctx, documents.CreateCommand{
		Data:       signed,
		Name:       documents.SignedPrefix + doc.Name,
		ClientID:   doc.ClientID,
		ClientName: doc.ClientName,
		SignedBy:   &signer,
		SignedAt:   &now,
	})
	if err != nil {
		return nil, fmt.Errorf("record signed document: %w", err)
	}

	s.logger.Info("preparer signed document", "source_id", doc.ID, "signed_id", out.ID, "page", marker.Page)
	return out, nil
}

func (s *system) SendForSignature(ctx context.Context, documentID uuid.UUID, cmd SendCommand) (*SendResult, error) {
	if err := checkClientMarkers(cmd.Markers); err != nil {
		return nil, err
	}

	doc, src, pages, err := s.open(ctx, documentID)
	if err != nil {
		return nil, err
	}

	markers := make([]Marker, len(cmd.Markers))
	for i, m := range cmd.Markers {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if markers[i], err = m.ToDocument(pages); err != nil {
			return nil, err
		}
	}

	var previewKey, previewURL string
	if len(markers) > 0 {
		preview, err := pdfmark.EmbedMarks(src, MarkerPlacements(markers))
		if err != nil {
			return nil, fmt.Errorf("burn client markers: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		previewKey = documents.BuildStorageKey("previews", uuid.New(), doc.Name)
		if err := s.storage.Upload(ctx, previewKey, bytes.NewReader(preview), "application/pdf"); err != nil {
			return nil, fmt.Errorf("upload preview: %w", err)
		}
		previewURL = s.downloadURL + "/" + previewKey
	}

	sess, err := s.sessions.Create(ctx, CreateCommand{
		Document:   *doc,
		ClientID:   firstNonEmpty(cmd.ClientID, doc.ClientID),
		ClientName: firstNonEmpty(cmd.ClientName, doc.ClientName),
		Markers:    markers,
		PreviewURL: previewURL,
	})
	if err != nil {
		if previewKey != "" {
			if delErr := s.storage.Delete(context.WithoutCancel(ctx), previewKey); delErr != nil {
				s.logger.Warn("compensating preview delete failed", "key", previewKey, "error", delErr)
			}
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &SendResult{
		Session: sess,
		Link:    s.sessions.Link(sess.ID),
	}, nil
}

func (s *system) open(ctx context.Context, documentID uuid.UUID) (*documents.Document, []byte, []coords.Size, error) {
	doc, src, err := s.docs.Open(ctx, documentID)
	if err != nil {
		return nil, nil, nil, err
	}

	pages, err := pdfmark.PageDims(src)
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, src, pages, nil
}

func checkClientMarkers(markers []UIMarker) error {
	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		if m.Role != "" && m.Role != RoleClient {
			return fmt.Errorf("%w: expected %s markers, got %s", ErrInvalidMarker, RoleClient, m.Role)
		}
		if m.ID == "" {
			continue
		}
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate marker id %q", ErrInvalidMarker, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
