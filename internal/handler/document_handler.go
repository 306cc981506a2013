package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docchat/internal/model"
	"github.com/xxxsen/docchat/internal/pkg/errcode"
	"github.com/xxxsen/docchat/internal/pkg/response"
	"github.com/xxxsen/docchat/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type documentItem struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	UploadedAt int64  `json:"uploaded_at"`
	Readable   bool   `json:"readable"`
}

func toDocumentItem(doc *model.Document) documentItem {
	return documentItem{
		ID:         doc.ID,
		Name:       doc.Name,
		Size:       doc.Size,
		MimeType:   doc.MimeType,
		UploadedAt: doc.UploadedAt,
		Readable:   doc.Readable,
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()

	doc, err := h.documents.Ingest(c.Request.Context(), file.Filename, opened, file.Size)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, toDocumentItem(doc))
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs := h.documents.List(c.Request.Context())
	items := make([]documentItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDocumentItem(doc))
	}
	response.Success(c, gin.H{"documents": items})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{})
}

func (h *DocumentHandler) Clear(c *gin.Context) {
	if err := h.documents.Clear(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{})
}
