package kb

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/extract"
)

// LoadFromDirectory rebuilds the index from previously persisted uploads.
// Files already indexed under the same name are skipped; unreadable or
// broken files are logged and skipped so one bad upload cannot abort the
// whole scan.
func (s *Store) LoadFromDirectory(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read upload dir: %w", err)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("dir", dir))
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !extract.Supported(name) {
			continue
		}
		if s.HasName(name) {
			continue
		}
		path := filepath.Join(dir, name)
		file, err := os.Open(path)
		if err != nil {
			logger.Warn("open upload failed, skipping", zap.String("name", name), zap.Error(err))
			continue
		}
		text, err := extract.Text(file, name)
		file.Close()
		if err != nil {
			logger.Warn("extract upload failed, skipping", zap.String("name", name), zap.Error(err))
			continue
		}
		info, err := entry.Info()
		var size int64
		if err == nil {
			size = info.Size()
		}
		mimeType := mime.TypeByExtension(filepath.Ext(name))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		s.Add(ctx, name, text, mimeType, size)
		loaded++
	}
	logger.Info("knowledge base loaded", zap.Int("documents", loaded), zap.Int("total", s.Len()))
	return nil
}
