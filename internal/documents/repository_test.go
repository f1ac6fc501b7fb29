package documents_test

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/storage/storagetest"
)

var columns = []string{
	"id", "name", "path", "client_id", "client_name", "size", "type", "page_count",
	"uploaded_at", "signed_by", "signed_at", "signed_via_session",
}

var (
	docID      = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	uploadedAt = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	pdfBytes   = []byte("%PDF-1.4\n%test fixture\n")
)

func newRepo(t *testing.T) (documents.System, sqlmock.Sqlmock, *storagetest.Memory) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	store := storagetest.NewMemory()
	sys := documents.New(
		db,
		store,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		"/api/storage/download/",
	)
	return sys, mock, store
}

func docRow(key string) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		docID.String(), "contract.pdf", key, "c-1", "Jordan Client",
		int64(len(pdfBytes)), "pdf", int64(3), uploadedAt, nil, nil, nil,
	)
}

func TestCreate(t *testing.T) {
	sys, mock, store := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(
			sqlmock.AnyArg(), "contract.pdf", sqlmock.AnyArg(), "c-1", "Jordan Client",
			int64(len(pdfBytes)), "pdf", 1, nil, nil, nil,
		).
		WillReturnRows(docRow("documents/" + docID.String() + "/contract.pdf"))
	mock.ExpectCommit()

	doc, err := sys.Create(t.Context(), documents.CreateCommand{
		Data:       pdfBytes,
		Name:       "contract.pdf",
		ClientID:   "c-1",
		ClientName: "Jordan Client",
	})
	require.NoError(t, err)

	assert.Equal(t, docID, doc.ID)
	assert.Equal(t, "pdf", doc.Type)
	assert.Equal(t, "/api/storage/download/documents/"+docID.String()+"/contract.pdf", doc.URL)
	assert.False(t, doc.Signed())

	keys := store.Keys()
	require.Len(t, keys, 1)
	assert.Regexp(t, `^documents/[0-9a-f-]{36}/contract\.pdf$`, keys[0])
	assert.Equal(t, pdfBytes, store.Bytes(keys[0]))
}

func TestCreateSignedCopy(t *testing.T) {
	sys, mock, _ := newRepo(t)

	signedAt := time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)
	session := uuid.New()
	signer := "Jordan Client"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WithArgs(
			sqlmock.AnyArg(), "Signed - contract.pdf", sqlmock.AnyArg(), "c-1", "Jordan Client",
			sqlmock.AnyArg(), "pdf", sqlmock.AnyArg(), signer, signedAt, session.String(),
		).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			docID.String(), "Signed - contract.pdf", "documents/x/Signed_-_contract.pdf", "c-1", "Jordan Client",
			int64(len(pdfBytes)), "pdf", int64(1), uploadedAt, signer, signedAt, session.String(),
		))
	mock.ExpectCommit()

	doc, err := sys.Create(t.Context(), documents.CreateCommand{
		Data:             pdfBytes,
		Name:             "Signed - contract.pdf",
		ClientID:         "c-1",
		ClientName:       "Jordan Client",
		SignedBy:         &signer,
		SignedAt:         &signedAt,
		SignedViaSession: &session,
	})
	require.NoError(t, err)

	assert.True(t, doc.Signed())
	require.NotNil(t, doc.SignedViaSession)
	assert.Equal(t, session, *doc.SignedViaSession)
}

func TestCreateCompensatesBlobOnInsertFailure(t *testing.T) {
	sys, mock, store := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := sys.Create(t.Context(), documents.CreateCommand{
		Data: pdfBytes, Name: "contract.pdf", ClientID: "c-1", ClientName: "Jordan",
	})
	require.ErrorIs(t, err, sql.ErrConnDone)
	assert.Empty(t, store.Keys(), "uploaded blob should be removed")
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  documents.CreateCommand
		want error
	}{
		{"empty data", documents.CreateCommand{Name: "a.pdf", ClientID: "c"}, documents.ErrInvalidFile},
		{"missing name", documents.CreateCommand{Data: pdfBytes, ClientID: "c"}, documents.ErrInvalidFile},
		{"missing client", documents.CreateCommand{Data: pdfBytes, Name: "a.pdf"}, documents.ErrInvalidFile},
		{"not a pdf", documents.CreateCommand{Data: []byte("hello"), Name: "a.pdf", ClientID: "c"}, documents.ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, _, store := newRepo(t)
			_, err := sys.Create(t.Context(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestFindNotFound(t *testing.T) {
	sys, mock, _ := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnError(sql.ErrNoRows)

	_, err := sys.Find(t.Context(), docID)
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestOpen(t *testing.T) {
	sys, mock, store := newRepo(t)
	key := "documents/" + docID.String() + "/contract.pdf"
	require.NoError(t, store.Upload(t.Context(), key, bytesReader(pdfBytes), "application/pdf"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnRows(docRow(key))

	doc, data, err := sys.Open(t.Context(), docID)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", doc.Name)
	assert.Equal(t, pdfBytes, data)
}

func TestOpenMissingBlob(t *testing.T) {
	sys, mock, _ := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnRows(docRow("documents/gone.pdf"))

	_, _, err := sys.Open(t.Context(), docID)
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestDelete(t *testing.T) {
	sys, mock, store := newRepo(t)
	key := "documents/" + docID.String() + "/contract.pdf"
	require.NoError(t, store.Upload(t.Context(), key, bytesReader(pdfBytes), "application/pdf"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnRows(docRow(key))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(docID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sys.Delete(t.Context(), docID))
	assert.Empty(t, store.Keys())
}

func TestDeleteRowVanished(t *testing.T) {
	sys, mock, store := newRepo(t)
	key := "documents/" + docID.String() + "/contract.pdf"
	require.NoError(t, store.Upload(t.Context(), key, bytesReader(pdfBytes), "application/pdf"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnRows(docRow(key))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(docID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, sys.Delete(t.Context(), docID), documents.ErrNotFound)
	assert.Len(t, store.Keys(), 1, "blob kept when row delete fails")
}

func TestDeleteReferencedBySessions(t *testing.T) {
	sys, mock, store := newRepo(t)
	key := "documents/" + docID.String() + "/contract.pdf"
	require.NoError(t, store.Upload(t.Context(), key, bytesReader(pdfBytes), "application/pdf"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM public.documents d WHERE d.id = $1")).
		WithArgs(docID).
		WillReturnRows(docRow(key))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs(docID).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "signing_sessions_document_id_fkey"})
	mock.ExpectRollback()

	err := sys.Delete(t.Context(), docID)
	assert.ErrorIs(t, err, documents.ErrInUse)
	assert.Equal(t, http.StatusConflict, documents.MapHTTPStatus(err))
	assert.Equal(t, []string{key}, store.Keys(), "blob kept while sessions reference the document")
}

func TestList(t *testing.T) {
	sys, mock, _ := newRepo(t)
	client := "c-1"

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM public.documents d WHERE d.client_id = $1")).
		WithArgs(client).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE d.client_id = $1 ORDER BY d.uploaded_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(client).
		WillReturnRows(docRow("documents/a/contract.pdf"))

	result, err := sys.List(t.Context(), pagination.PageRequest{}, documents.Filters{ClientID: &client})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "/api/storage/download/documents/a/contract.pdf", result.Data[0].URL)
	require.NotNil(t, result.Data[0].PageCount)
	assert.Equal(t, 3, *result.Data[0].PageCount)
}
