package signing_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/cache"
	"github.com/JaimeStill/attest/pkg/lifecycle"
	"github.com/JaimeStill/attest/pkg/pagination"
)

// memStore is an in-memory signing.Store with the same expiry and
// completion rules as the database store.
type memStore struct {
	mu           sync.Mutex
	clock        clockwork.Clock
	ttl          time.Duration
	sessions     map[uuid.UUID]signing.Session
	failComplete error
}

func newMemStore(clock clockwork.Clock) *memStore {
	return &memStore{clock: clock, ttl: ttl, sessions: make(map[uuid.UUID]signing.Session)}
}

func (m *memStore) Create(_ context.Context, cmd signing.CreateCommand) (*signing.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UTC()
	sess := signing.Session{
		ID:           uuid.New(),
		DocumentID:   cmd.Document.ID,
		DocumentName: cmd.Document.Name,
		DocumentURL:  cmd.Document.URL,
		ClientID:     cmd.ClientID,
		ClientName:   cmd.ClientName,
		Status:       signing.StatusPending,
		Markers:      cmd.Markers,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.ttl),
	}
	if cmd.PreviewURL != "" && cmd.PreviewURL != cmd.Document.URL {
		original := cmd.Document.URL
		sess.DocumentURL = cmd.PreviewURL
		sess.OriginalURL = &original
	}
	m.sessions[sess.ID] = sess
	return &sess, nil
}

func (m *memStore) Resolve(ctx context.Context, id string) (*signing.Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, signing.ErrNotFound
	}
	sess, err := m.Find(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess.Expired(m.clock.Now()) {
		return sess, signing.ErrExpired
	}
	if sess.Status == signing.StatusCompleted {
		return sess, signing.ErrAlreadyCompleted
	}
	return sess, nil
}

func (m *memStore) Complete(_ context.Context, id uuid.UUID, cmd signing.CompleteCommand) (*signing.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failComplete != nil {
		return nil, m.failComplete
	}

	sess, ok := m.sessions[id]
	if !ok {
		return nil, signing.ErrNotFound
	}
	now := m.clock.Now().UTC()
	if sess.Status != signing.StatusPending {
		return nil, errors.Join(signing.ErrInvalidState, signing.ErrAlreadyCompleted)
	}
	if sess.Expired(now) {
		return nil, errors.Join(signing.ErrInvalidState, signing.ErrExpired)
	}

	sess.Status = signing.StatusCompleted
	sess.SignedAt = &now
	sess.SignedDocumentID = &cmd.SignedDocumentID
	sess.SignedDocumentURL = &cmd.SignedDocumentURL
	m.sessions[id] = sess
	return &sess, nil
}

func (m *memStore) Find(_ context.Context, id uuid.UUID) (*signing.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, signing.ErrNotFound
	}
	return &sess, nil
}

func (m *memStore) List(context.Context, pagination.PageRequest, signing.Filters) (*pagination.PageResult[signing.Session], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]signing.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		data = append(data, s)
	}
	result := pagination.NewPageResult(data, len(data), 1, max(len(data), 1))
	return &result, nil
}

func (m *memStore) Link(id uuid.UUID) string {
	return "https://sign.example.com/sign/" + id.String()
}

// memDocs is an in-memory documents.System.
type memDocs struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]documents.Document
	content map[uuid.UUID][]byte
	deleted []uuid.UUID
}

func newMemDocs() *memDocs {
	return &memDocs{
		docs:    make(map[uuid.UUID]documents.Document),
		content: make(map[uuid.UUID][]byte),
	}
}

func (m *memDocs) Handler(int64) *documents.Handler { return nil }

func (m *memDocs) List(context.Context, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Document], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]documents.Document, 0, len(m.docs))
	for _, d := range m.docs {
		data = append(data, d)
	}
	result := pagination.NewPageResult(data, len(data), 1, max(len(data), 1))
	return &result, nil
}

func (m *memDocs) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return &d, nil
}

func (m *memDocs) Open(ctx context.Context, id uuid.UUID) (*documents.Document, []byte, error) {
	d, err := m.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return d, m.content[id], nil
}

func (m *memDocs) Create(_ context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	key := documents.BuildStorageKey("documents", id, cmd.Name)
	d := documents.Document{
		ID:               id,
		Name:             cmd.Name,
		Path:             key,
		URL:              "/api/storage/download/" + key,
		ClientID:         cmd.ClientID,
		ClientName:       cmd.ClientName,
		Size:             int64(len(cmd.Data)),
		Type:             documents.TypePDF,
		UploadedAt:       time.Now().UTC(),
		SignedBy:         cmd.SignedBy,
		SignedAt:         cmd.SignedAt,
		SignedViaSession: cmd.SignedViaSession,
	}
	m.docs[id] = d
	m.content[id] = cmd.Data
	return &d, nil
}

func (m *memDocs) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return documents.ErrNotFound
	}
	delete(m.docs, id)
	delete(m.content, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memDocs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// fakeLocks is a cache.System whose locks live in a map. Setting down makes
// every Acquire fail as if the backend were unreachable.
type fakeLocks struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired []string
	down     bool
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{held: make(map[string]bool)}
}

func (f *fakeLocks) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeLocks) Acquire(_ context.Context, key string) (cache.Lock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	if f.held[key] {
		return nil, cache.ErrLocked
	}
	f.held[key] = true
	f.acquired = append(f.acquired, key)
	return &fakeLock{owner: f, key: key}, nil
}

func (f *fakeLocks) isHeld(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held[key]
}

type fakeLock struct {
	owner *fakeLocks
	key   string
}

func (l *fakeLock) Release(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	delete(l.owner.held, l.key)
	return nil
}
