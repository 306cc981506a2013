package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docchat/internal/ai"
	"github.com/xxxsen/docchat/internal/model"
	"github.com/xxxsen/docchat/internal/pkg/response"
)

type ProviderHandler struct {
	manager *ai.Manager
}

func NewProviderHandler(manager *ai.Manager) *ProviderHandler {
	return &ProviderHandler{manager: manager}
}

func (h *ProviderHandler) Status(c *gin.Context) {
	response.Success(c, model.ProviderStatus{
		Name:      h.manager.Name(),
		Model:     h.manager.Model(),
		Reachable: h.manager.Reachable(),
	})
}
