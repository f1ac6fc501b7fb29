package signing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/cache"
	"github.com/JaimeStill/attest/pkg/pdfmark"
)

func (s *system) Sign(ctx context.Context, id string, cmd SubmitCommand) (*SignResult, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	image, err := DecodeSignature(cmd.Signature)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, sid)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.sessions.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	signer := firstNonEmpty(strings.TrimSpace(cmd.SignerName), sess.ClientName)

	doc, src, err := s.docs.Open(ctx, sess.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("load source document: %w", err)
	}

	now := s.clock.Now().UTC()
	signed, err := pdfmark.EmbedMarks(src, ClientPlacements(sess.Markers, image, signer, now))
	if err != nil {
		return nil, fmt.Errorf("embed client signature: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.docs.Create(ctx, documents.CreateCommand{
		Data:             signed,
		Name:             documents.SignedPrefix + doc.Name,
		ClientID:         sess.ClientID,
		ClientName:       sess.ClientName,
		SignedBy:         &signer,
		SignedAt:         &now,
		SignedViaSession: &sess.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("record signed document: %w", err)
	}

	completed, err := s.sessions.Complete(ctx, sess.ID, CompleteCommand{
		SignedDocumentID:  out.ID,
		SignedDocumentURL: out.URL,
	})
	if err != nil {
		if delErr := s.docs.Delete(context.WithoutCancel(ctx), out.ID); delErr != nil {
			s.logger.Error(
				"compensating signed document delete failed",
				"session_id", sess.ID,
				"document_id", out.ID,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Info(
		"session signed",
		"session_id", sess.ID,
		"signed_document_id", out.ID,
		"placements", max(len(sess.Markers), 1),
	)
	return &SignResult{Session: completed, Document: out}, nil
}

// lock takes the per-session submit lock. When the lock service itself is
// unavailable the submission proceeds and relies on the completion check.
func (s *system) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	l, err := s.locks.Acquire(ctx, "submit:"+id.String())
	if errors.Is(err, cache.ErrLocked) {
		return nil, ErrSubmissionInProgress
	}
	if err != nil {
		s.logger.Warn("submit lock unavailable, continuing without it", "session_id", id, "error", err)
		return func() {}, nil
	}

	return func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("submit lock release failed", "session_id", id, "error", err)
		}
	}, nil
}
