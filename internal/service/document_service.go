package service

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/extract"
	"github.com/xxxsen/docchat/internal/filestore"
	"github.com/xxxsen/docchat/internal/kb"
	"github.com/xxxsen/docchat/internal/model"
	appErr "github.com/xxxsen/docchat/internal/pkg/errors"
)

const maxUploadBytes = 20 << 20

// DocumentService ingests uploads into the knowledge base and keeps the raw
// files around so the index can be rebuilt after a restart.
type DocumentService struct {
	store     *kb.Store
	files     filestore.Store
	uploadDir string
}

func NewDocumentService(store *kb.Store, files filestore.Store, uploadDir string) *DocumentService {
	return &DocumentService{store: store, files: files, uploadDir: uploadDir}
}

// Ingest persists the raw upload, extracts its text and indexes it. A file
// that extracts but fails the readability check is still accepted: it shows
// up in listings with a readable=false flag.
func (s *DocumentService) Ingest(ctx context.Context, name string, r io.Reader, size int64) (*model.Document, error) {
	if !extract.Supported(name) {
		return nil, appErr.ErrUnsupportedFile
	}
	if size > maxUploadBytes {
		return nil, appErr.ErrInvalid
	}
	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data) > maxUploadBytes {
		return nil, appErr.ErrInvalid
	}

	key := filepath.Base(name)
	if err := s.files.Save(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	text, err := extract.Text(bytes.NewReader(data), name)
	if err != nil {
		logutil.GetLogger(ctx).Warn("text extraction failed", zap.String("name", name), zap.Error(err))
		text = ""
	}
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	doc := s.store.Add(ctx, key, text, mimeType, int64(len(data)))
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("id", doc.ID),
		zap.String("name", doc.Name),
		zap.Bool("readable", doc.Readable),
	)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context) []*model.Document {
	_ = ctx
	return s.store.List()
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, ok := s.store.Get(id)
	if !ok {
		return appErr.ErrNotFound
	}
	if !s.store.Remove(id) {
		return appErr.ErrNotFound
	}
	if err := s.files.Delete(ctx, doc.Name); err != nil {
		logutil.GetLogger(ctx).Warn("delete upload failed", zap.String("name", doc.Name), zap.Error(err))
	}
	return nil
}

func (s *DocumentService) Clear(ctx context.Context) error {
	for _, doc := range s.store.List() {
		if err := s.files.Delete(ctx, doc.Name); err != nil {
			logutil.GetLogger(ctx).Warn("delete upload failed", zap.String("name", doc.Name), zap.Error(err))
		}
	}
	s.store.Clear()
	return nil
}

// Rebuild repopulates the in-memory index from persisted uploads. Local
// stores scan their directory directly; remote stores stream each object
// through the extractor. Already-indexed names are skipped.
func (s *DocumentService) Rebuild(ctx context.Context) error {
	if s.uploadDir != "" {
		return s.store.LoadFromDirectory(ctx, s.uploadDir)
	}
	keys, err := s.files.List(ctx)
	if err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx)
	for _, key := range keys {
		if !extract.Supported(key) || s.store.HasName(key) {
			continue
		}
		rc, err := s.files.Open(ctx, key)
		if err != nil {
			logger.Warn("open upload failed, skipping", zap.String("name", key), zap.Error(err))
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			logger.Warn("read upload failed, skipping", zap.String("name", key), zap.Error(err))
			continue
		}
		text, err := extract.Text(bytes.NewReader(data), key)
		if err != nil {
			logger.Warn("extract upload failed, skipping", zap.String("name", key), zap.Error(err))
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(key))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		s.store.Add(ctx, key, text, mimeType, int64(len(data)))
	}
	return nil
}
