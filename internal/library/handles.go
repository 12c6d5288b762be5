package library

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfshelf/internal/model"
)

// OpenHandle is a temporary viewable reference to a stored document,
// materialized when the user opens it. A handle stays resolvable until its
// TTL elapses or it is released; release is guaranteed, never a
// fire-and-forget timer leak.
type OpenHandle struct {
	Token      string    `json:"token"`
	DocumentID string    `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type handleEntry struct {
	doc   *model.Document
	timer *time.Timer
}

// HandleRegistry tracks outstanding open handles. Safe for concurrent use.
type HandleRegistry struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*handleEntry
	closed  bool
}

func NewHandleRegistry(ttl time.Duration) *HandleRegistry {
	return &HandleRegistry{
		ttl:     ttl,
		entries: make(map[string]*handleEntry),
	}
}

// Issue registers a new handle for the document and schedules its release.
func (r *HandleRegistry) Issue(doc *model.Document) OpenHandle {
	token := uuid.NewString()
	expires := time.Now().Add(r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return OpenHandle{}
	}
	entry := &handleEntry{doc: doc}
	entry.timer = time.AfterFunc(r.ttl, func() { r.Release(token) })
	r.entries[token] = entry

	return OpenHandle{
		Token:      token,
		DocumentID: doc.ID,
		URL:        "/open/" + token,
		ExpiresAt:  expires,
	}
}

// Resolve returns the document behind a live handle.
func (r *HandleRegistry) Resolve(token string) (*model.Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	return entry.doc, true
}

// Release drops a handle. Releasing an unknown or already-released token is
// a no-op.
func (r *HandleRegistry) Release(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[token]; ok {
		entry.timer.Stop()
		delete(r.entries, token)
	}
}

// ReleaseDocument drops every handle for the given document id. Called when
// the document is deleted so no handle can outlive its record.
func (r *HandleRegistry) ReleaseDocument(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, entry := range r.entries {
		if entry.doc.ID == docID {
			entry.timer.Stop()
			delete(r.entries, token)
		}
	}
}

// Len reports how many handles are currently outstanding.
func (r *HandleRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close releases every outstanding handle and rejects further issuance.
func (r *HandleRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, entry := range r.entries {
		entry.timer.Stop()
		delete(r.entries, token)
	}
	r.closed = true
}
