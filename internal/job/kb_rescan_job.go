package job

import (
	"context"

	"github.com/xxxsen/docchat/internal/service"
)

// KBRescanJob periodically re-scans persisted uploads so files dropped into
// the upload directory out of band still make it into the index.
type KBRescanJob struct {
	documents *service.DocumentService
}

func NewKBRescanJob(documents *service.DocumentService) *KBRescanJob {
	return &KBRescanJob{documents: documents}
}

func (j *KBRescanJob) Name() string {
	return "kb_rescan"
}

func (j *KBRescanJob) Run(ctx context.Context) error {
	if j.documents == nil {
		return nil
	}
	return j.documents.Rebuild(ctx)
}
