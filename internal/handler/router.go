package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat      *ChatHandler
	Documents *DocumentHandler
	Providers *ProviderHandler
	Reports   *ReportHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/chat", deps.Chat.Chat)
	api.GET("/chat/sessions", deps.Chat.ListSessions)
	api.GET("/chat/sessions/:id", deps.Chat.History)

	api.POST("/documents", deps.Documents.Upload)
	api.GET("/documents", deps.Documents.List)
	api.DELETE("/documents/:id", deps.Documents.Delete)
	api.DELETE("/documents", deps.Documents.Clear)

	api.GET("/providers/status", deps.Providers.Status)
	api.GET("/reports/performance", deps.Reports.Performance)
}
