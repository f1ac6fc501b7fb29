package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/pkg/pagination"
)

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	// Open returns the document with its full content.
	Open(ctx context.Context, id uuid.UUID) (*Document, []byte, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	// Delete removes the row and then the blob.
	Delete(ctx context.Context, id uuid.UUID) error
}
