package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/pdfmark"
	"github.com/JaimeStill/attest/pkg/query"
	"github.com/JaimeStill/attest/pkg/repository"
	"github.com/JaimeStill/attest/pkg/storage"
)

const contentTypePDF = "application/pdf"

type repo struct {
	db          *sql.DB
	storage     storage.System
	logger      *slog.Logger
	pagination  pagination.Config
	downloadURL string
}

// New creates a document repository implementing the System interface.
// downloadURL is the path prefix under which blob keys are served, e.g.
// /api/storage/download.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	downloadURL string,
) System {
	return &repo{
		db:          db,
		storage:     store,
		logger:      logger.With("system", "documents"),
		pagination:  pagination,
		downloadURL: strings.TrimRight(downloadURL, "/"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "ClientName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, r.scan)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, r.scan)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Open(ctx context.Context, id uuid.UUID) (*Document, []byte, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	blob, err := r.storage.Download(ctx, doc.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: content missing for %s", ErrNotFound, doc.ID)
		}
		return nil, nil, fmt.Errorf("download document: %w", err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read document: %w", err)
	}
	return doc, data, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := BuildStorageKey("documents", id, cmd.Name)
	pages := pdfmark.CountPages(cmd.Data, r.logger)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), contentTypePDF); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	q := `
		INSERT INTO documents(id, name, path, client_id, client_name, size, type, page_count,
			signed_by, signed_at, signed_via_session)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + returning

	insertArgs := []any{
		id,
		cmd.Name,
		key,
		cmd.ClientID,
		cmd.ClientName,
		int64(len(cmd.Data)),
		TypePDF,
		pages,
		cmd.SignedBy,
		cmd.SignedAt,
		cmd.SignedViaSession,
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, r.scan)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "name", d.Name, "signed", d.Signed())
	return &d, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM documents WHERE id = $1",
			id,
		)
	})
	if repository.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", ErrInUse, id)
	}
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, doc.Path); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", doc.Path,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func (r *repo) scan(s repository.Scanner) (Document, error) {
	d, err := scanDocument(s)
	if err != nil {
		return d, err
	}
	d.URL = r.downloadURL + "/" + d.Path
	return d, nil
}

func validate(cmd CreateCommand) error {
	if len(cmd.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidFile)
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidFile)
	}
	if strings.TrimSpace(cmd.ClientID) == "" {
		return fmt.Errorf("%w: client_id required", ErrInvalidFile)
	}
	if http.DetectContentType(cmd.Data) != contentTypePDF {
		return ErrNotPDF
	}
	return nil
}

// BuildStorageKey returns "{prefix}/{id}/{name}" with name reduced to a
// URL-safe file name.
func BuildStorageKey(prefix string, id uuid.UUID, name string) string {
	return fmt.Sprintf("%s/%s/%s", prefix, id, sanitizeFilename(name))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "document.pdf"
	}

	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}

	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		return "document.pdf"
	}
	return clean
}
