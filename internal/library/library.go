package library

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfshelf/internal/factory"
	"pdfshelf/internal/model"
	"pdfshelf/internal/store"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNameRequired  = errors.New("name is required")
	ErrTitleRequired = errors.New("title is required")
	ErrDataRequired  = errors.New("document data is required")
	ErrInvalidCover  = errors.New("cover image must be a base64 image data URL")
	ErrHandleExpired = errors.New("open handle expired or unknown")
)

// Service is the library controller: it orchestrates the store and the
// factory and maintains an in-memory cached view of all documents, sorted
// most recent first. The view is refreshed by a full re-list after every
// successful mutation rather than patched incrementally, so it can never
// diverge from the store's actual contents.
type Service interface {
	// Documents returns the cached, sorted view.
	Documents() []model.Document

	// Refresh re-lists the store and rebuilds the cached view.
	Refresh(ctx context.Context) error

	// Upload stores an existing PDF. The data slice is transferred to the
	// library; the caller must not mutate it afterwards.
	Upload(ctx context.Context, data []byte, name, description, coverImage string) (*model.Document, error)

	// Create synthesizes a new PDF from title and body text and stores it.
	Create(ctx context.Context, title, body, coverImage string) (*model.Document, error)

	// Get returns a single stored document by id.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document. Deleting an absent id succeeds.
	Delete(ctx context.Context, id string) error

	// Open materializes a temporary viewable handle for a stored document.
	Open(ctx context.Context, id string) (*OpenHandle, error)

	// Opened resolves a live handle token back to its document.
	Opened(token string) (*model.Document, error)

	// Close releases all outstanding open handles.
	Close()
}

type libraryService struct {
	store   store.DocumentStore
	gen     factory.Generator
	handles *HandleRegistry
	log     *slog.Logger

	mu        sync.RWMutex
	view      []model.Document
	lastAdded int64
}

// NewService constructs the library controller. Call Refresh once before
// serving so the cached view reflects the store.
func NewService(st store.DocumentStore, gen factory.Generator, handleTTL time.Duration, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &libraryService{
		store:   st,
		gen:     gen,
		handles: NewHandleRegistry(handleTTL),
		log:     log,
	}
}

func (s *libraryService) Documents() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Document, len(s.view))
	copy(out, s.view)
	return out
}

func (s *libraryService) Refresh(ctx context.Context) error {
	docs, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh view: %w", err)
	}
	// Stable sort on top of the store's insertion order: equal timestamps
	// keep their insertion order.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].AddedAt > docs[j].AddedAt
	})

	s.mu.Lock()
	s.view = docs
	s.mu.Unlock()
	return nil
}

func (s *libraryService) Upload(ctx context.Context, data []byte, name, description, coverImage string) (*model.Document, error) {
	if len(data) == 0 {
		return nil, ErrDataRequired
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if coverImage != "" && !validCoverImage(coverImage) {
		return nil, ErrInvalidCover
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		MimeType:    model.MimeTypePDF,
		Data:        data,
		CoverImage:  coverImage,
		AddedAt:     s.nextAddedAt(),
	}
	stored, err := s.store.Put(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	s.log.Info("document stored", "id", stored.ID, "name", stored.Name, "size", stored.Size)
	return stored, nil
}

func (s *libraryService) Create(ctx context.Context, title, body, coverImage string) (*model.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrTitleRequired
	}
	data, err := s.gen.Generate(title, body)
	if err != nil {
		return nil, fmt.Errorf("generate document: %w", err)
	}
	return s.Upload(ctx, data, title, "", coverImage)
}

func (s *libraryService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.store.Get(ctx, id)
}

func (s *libraryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	// No handle may outlive its record.
	s.handles.ReleaseDocument(id)
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.log.Info("document deleted", "id", id)
	return nil
}

func (s *libraryService) Open(ctx context.Context, id string) (*OpenHandle, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	handle := s.handles.Issue(doc)
	return &handle, nil
}

func (s *libraryService) Opened(token string) (*model.Document, error) {
	doc, ok := s.handles.Resolve(token)
	if !ok {
		return nil, ErrHandleExpired
	}
	return doc, nil
}

func (s *libraryService) Close() {
	s.handles.Close()
}

// nextAddedAt issues a creation timestamp that never decreases within this
// process, so a wall-clock regression cannot reorder the view.
func (s *libraryService) nextAddedAt() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixMilli()
	if now < s.lastAdded {
		now = s.lastAdded
	}
	s.lastAdded = now
	return now
}

// validCoverImage accepts small encoded previews of the form
// data:image/<subtype>;base64,<payload>.
func validCoverImage(s string) bool {
	if !strings.HasPrefix(s, "data:image/") {
		return false
	}
	i := strings.Index(s, ";base64,")
	if i < 0 {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s[i+len(";base64,"):])
	return err == nil
}
