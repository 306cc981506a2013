package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/docchat/internal/ai"
	"github.com/xxxsen/docchat/internal/filestore"
	"github.com/xxxsen/docchat/internal/handler"
	"github.com/xxxsen/docchat/internal/kb"
	"github.com/xxxsen/docchat/internal/middleware"
	"github.com/xxxsen/docchat/internal/pkg/errcode"
	"github.com/xxxsen/docchat/internal/rag"
	"github.com/xxxsen/docchat/internal/repo"
	"github.com/xxxsen/docchat/internal/service"
)

type stubProvider struct {
	response string
}

func (p *stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Generate(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	return p.response, nil
}

func (p *stubProvider) Endpoint() string {
	return ""
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repo.ApplyMigrations(db, "../../migrations"))

	store := kb.NewStore()
	files, err := filestore.New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	manager := ai.NewManager(&stubProvider{response: "stub answer"}, "test-model", ai.ManagerConfig{Timeout: 5, MaxOutputTokens: 100})
	engine := rag.NewEngine(store, manager)

	stats := service.NewLatencyStats(time.Hour)
	sessions := repo.NewSessionRepo(db, "sqlite")
	turns := repo.NewTurnRepo(db, "sqlite")
	chatService := service.NewChatService(engine, sessions, turns, stats)
	documentService := service.NewDocumentService(store, files, "")
	reportService := service.NewReportService(turns, store, stats)

	deps := handler.RouterDeps{
		Chat:      handler.NewChatHandler(chatService),
		Documents: handler.NewDocumentHandler(documentService),
		Providers: handler.NewProviderHandler(manager),
		Reports:   handler.NewReportHandler(reportService),
	}

	router, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return router
}

type envelope struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return resp, env
}

func uploadFile(t *testing.T, router http.Handler, name, content string) envelope {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func TestChatEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp, env := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"message": "what is this about",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Zero(t, env.Code)
	require.Equal(t, "stub answer", env.Data["assistant_response"])
	require.NotEmpty(t, env.Data["session_id"])

	_, env = doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"message": "",
	})
	require.Equal(t, errcode.ErrInvalid, env.Code)
}

func TestChatSessionEndpoints(t *testing.T) {
	router := setupRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"message": "first question",
	})
	sessionID, _ := env.Data["session_id"].(string)
	require.NotEmpty(t, sessionID)

	_, env = doJSON(t, router, http.MethodGet, "/api/v1/chat/sessions", nil)
	sessions, _ := env.Data["sessions"].([]interface{})
	require.Len(t, sessions, 1)

	_, env = doJSON(t, router, http.MethodGet, "/api/v1/chat/sessions/"+sessionID, nil)
	turns, _ := env.Data["turns"].([]interface{})
	require.Len(t, turns, 1)

	_, env = doJSON(t, router, http.MethodGet, "/api/v1/chat/sessions/missing", nil)
	require.Equal(t, errcode.ErrNotFound, env.Code)
}

func TestDocumentEndpoints(t *testing.T) {
	router := setupRouter(t)

	content := strings.Repeat("the calibration procedure requires a stable reference sensor ", 10)
	env := uploadFile(t, router, "manual.txt", content)
	require.Zero(t, env.Code)
	require.Equal(t, "manual.txt", env.Data["name"])
	require.Equal(t, true, env.Data["readable"])
	docID, _ := env.Data["id"].(string)
	require.NotEmpty(t, docID)

	_, list := doJSON(t, router, http.MethodGet, "/api/v1/documents", nil)
	docs, _ := list.Data["documents"].([]interface{})
	require.Len(t, docs, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+docID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	_, list = doJSON(t, router, http.MethodGet, "/api/v1/documents", nil)
	docs, _ = list.Data["documents"].([]interface{})
	require.Empty(t, docs)
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	router := setupRouter(t)
	env := uploadFile(t, router, "image.png", "binary junk")
	require.Equal(t, errcode.ErrUnsupportedFile, env.Code)
}

func TestProviderStatusEndpoint(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers/status", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	require.Equal(t, "stub", env.Data["name"])
	require.Equal(t, "test-model", env.Data["model"])
	require.Equal(t, true, env.Data["reachable"])
}

func TestPerformanceReportEndpoint(t *testing.T) {
	router := setupRouter(t)

	_, env := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"message": "generate something",
	})
	require.Zero(t, env.Code)

	_, report := doJSON(t, router, http.MethodGet, "/api/v1/reports/performance", nil)
	require.Zero(t, report.Code)
	outcomes, _ := report.Data["outcomes"].(map[string]interface{})
	require.EqualValues(t, 1, outcomes["total"])
	latency, _ := report.Data["latency"].(map[string]interface{})
	require.EqualValues(t, 1, latency["count"])
}
