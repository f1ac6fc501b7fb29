package signing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/query"
	"github.com/JaimeStill/attest/pkg/repository"
)

// Store persists signing sessions. Expiry is evaluated lazily against the
// store's clock whenever a session is resolved or completed.
type Store interface {
	Create(ctx context.Context, cmd CreateCommand) (*Session, error)
	// Resolve loads a session for the external signer. Expired and completed
	// sessions are returned alongside ErrExpired or ErrAlreadyCompleted so
	// the caller can describe the document.
	Resolve(ctx context.Context, id string) (*Session, error)
	// Complete moves a pending, unexpired session to completed. Every other
	// case fails with ErrInvalidState and writes nothing.
	Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Session, error)
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Session], error)
	// Link returns the shareable signing URL for a session.
	Link(id uuid.UUID) string
}

type store struct {
	db         *sql.DB
	clock      clockwork.Clock
	logger     *slog.Logger
	pagination pagination.Config
	ttl        time.Duration
	linkBase   string
}

// NewStore creates a PostgreSQL-backed Store. linkBase is the public origin
// plus the signing page path, e.g. https://sign.example.com/sign.
func NewStore(
	db *sql.DB,
	clock clockwork.Clock,
	logger *slog.Logger,
	pagination pagination.Config,
	ttl time.Duration,
	linkBase string,
) Store {
	return &store{
		db:         db,
		clock:      clock,
		logger:     logger.With("system", "signing_sessions"),
		pagination: pagination,
		ttl:        ttl,
		linkBase:   strings.TrimRight(linkBase, "/"),
	}
}

func (s *store) Link(id uuid.UUID) string {
	return s.linkBase + "/" + id.String()
}

func (s *store) Create(ctx context.Context, cmd CreateCommand) (*Session, error) {
	if cmd.Document.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: document required", ErrInvalidRequest)
	}

	markers, err := encodeMarkers(cmd.Markers)
	if err != nil {
		return nil, fmt.Errorf("encode markers: %w", err)
	}

	documentURL := cmd.Document.URL
	var originalURL *string
	if cmd.PreviewURL != "" && cmd.PreviewURL != cmd.Document.URL {
		documentURL = cmd.PreviewURL
		originalURL = &cmd.Document.URL
	}

	now := s.clock.Now().UTC()

	q := `
		INSERT INTO signing_sessions(id, document_id, document_name, document_url, original_url,
			client_id, client_name, status, markers, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + returning

	args := []any{
		uuid.New(),
		cmd.Document.ID,
		cmd.Document.Name,
		documentURL,
		originalURL,
		cmd.ClientID,
		cmd.ClientName,
		string(StatusPending),
		markers,
		now,
		now.Add(s.ttl),
	}

	sess, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSession)
	})
	if repository.IsForeignKeyViolation(err) {
		return nil, fmt.Errorf("%w: %s", documents.ErrNotFound, cmd.Document.ID)
	}
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidState)
	}

	s.logger.Info(
		"session created",
		"id", sess.ID,
		"document_id", sess.DocumentID,
		"markers", len(sess.Markers),
		"expires_at", sess.ExpiresAt,
	)
	return &sess, nil
}

func (s *store) Resolve(ctx context.Context, id string) (*Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	sess, err := s.Find(ctx, sid)
	if err != nil {
		return nil, err
	}

	if sess.Expired(s.clock.Now()) {
		return sess, ErrExpired
	}
	if sess.Status == StatusCompleted {
		return sess, ErrAlreadyCompleted
	}
	return sess, nil
}

func (s *store) Complete(ctx context.Context, id uuid.UUID, cmd CompleteCommand) (*Session, error) {
	if cmd.SignedDocumentURL == "" || cmd.SignedDocumentID == uuid.Nil {
		return nil, fmt.Errorf("%w: signed document required", ErrInvalidState)
	}

	lockSQL, lockArgs := query.NewBuilder(projection).BuildSingle("ID", id)
	lockSQL += " FOR UPDATE"

	sess, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Session, error) {
		current, err := repository.QueryOne(ctx, tx, lockSQL, lockArgs, scanSession)
		if err != nil {
			return Session{}, err
		}

		now := s.clock.Now().UTC()
		switch {
		case current.Status != StatusPending:
			return Session{}, fmt.Errorf("%w: %w", ErrInvalidState, ErrAlreadyCompleted)
		case current.Expired(now):
			return Session{}, fmt.Errorf("%w: %w", ErrInvalidState, ErrExpired)
		}

		err = repository.ExecExpectOne(
			ctx, tx,
			`UPDATE signing_sessions
			SET status = $2, signed_at = $3, signed_document_url = $4, signed_document_id = $5
			WHERE id = $1 AND status = $6`,
			id, string(StatusCompleted), now, cmd.SignedDocumentURL, cmd.SignedDocumentID, string(StatusPending),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, fmt.Errorf("%w: status changed concurrently", ErrInvalidState)
		}
		if err != nil {
			return Session{}, err
		}

		current.Status = StatusCompleted
		current.SignedAt = &now
		current.SignedDocumentURL = &cmd.SignedDocumentURL
		current.SignedDocumentID = &cmd.SignedDocumentID
		return current, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidState)
	}

	s.logger.Info("session completed", "id", id, "signed_document_id", cmd.SignedDocumentID)
	return &sess, nil
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	sess, err := repository.QueryOne(ctx, s.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidState)
	}
	return &sess, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Session], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentName", "ClientName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	sessions, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	result := pagination.NewPageResult(sessions, total, page.Page, page.PageSize)
	return &result, nil
}
