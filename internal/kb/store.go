package kb

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/model"
)

// Store is the in-memory document index the retrieval pipeline runs against.
// It is rebuilt from the upload directory at startup and holds no other
// persistent state. Reads vastly outnumber writes, so a single RWMutex over
// an insertion-ordered slice is enough.
type Store struct {
	mu   sync.RWMutex
	docs []*model.Document
}

func NewStore() *Store {
	return &Store{}
}

// Add sanitizes the raw extracted text and registers the document. Text that
// fails the readability check is kept listed with empty content so the user
// can still see and delete it, but it never reaches the scorer.
func (s *Store) Add(ctx context.Context, name, rawContent, mimeType string, size int64) *model.Document {
	content := Sanitize(rawContent)
	readable := IsReadable(content)
	if !readable {
		logutil.GetLogger(ctx).Warn("document text not readable, stored without content",
			zap.String("name", name),
			zap.Int("sanitized_len", len(content)),
		)
		content = ""
	}
	doc := &model.Document{
		ID:         newDocID(),
		Name:       name,
		Content:    content,
		Size:       size,
		MimeType:   mimeType,
		UploadedAt: time.Now().UnixMilli(),
		Readable:   readable,
	}
	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()
	return doc
}

func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.docs {
		if doc.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.docs = nil
	s.mu.Unlock()
}

func (s *Store) Get(id string) (*model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return nil, false
}

// List returns documents in insertion order. The returned slice is a copy;
// the documents themselves are never mutated after Add.
func (s *Store) List() []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// HasName reports whether a document with this name is already indexed.
// Directory reloads dedup by name only, not by content.
func (s *Store) HasName(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.docs {
		if doc.Name == name {
			return true
		}
	}
	return false
}

func newDocID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
