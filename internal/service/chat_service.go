package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/model"
	appErr "github.com/xxxsen/docchat/internal/pkg/errors"
	"github.com/xxxsen/docchat/internal/rag"
	"github.com/xxxsen/docchat/internal/repo"
)

const (
	maxMessageLen   = 8000
	sessionTitleLen = 48
)

// ChatService runs queries through the retrieval engine and guarantees every
// outcome lands in the conversation log.
type ChatService struct {
	engine   *rag.Engine
	sessions *repo.SessionRepo
	turns    *repo.TurnRepo
	stats    *LatencyStats
	cache    *expirable.LRU[string, string]
}

func NewChatService(engine *rag.Engine, sessions *repo.SessionRepo, turns *repo.TurnRepo, stats *LatencyStats) *ChatService {
	cache := expirable.NewLRU[string, string](2048, nil, 30*time.Minute)
	return &ChatService{
		engine:   engine,
		sessions: sessions,
		turns:    turns,
		stats:    stats,
		cache:    cache,
	}
}

// Chat answers one user message. The answer itself never fails: generation
// and retrieval errors degrade inside the engine. Only validation and
// persistence problems surface as errors.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string, retrievalEnabled bool) (*model.ChatTurn, error) {
	message = strings.TrimSpace(message)
	if message == "" || len(message) > maxMessageLen {
		return nil, appErr.ErrInvalid
	}
	sessionID, err := s.ensureSession(ctx, sessionID, message)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	answer := s.answer(ctx, message, retrievalEnabled)
	latency := time.Since(start).Milliseconds()
	s.stats.Record(latency)

	turn := &model.ChatTurn{
		ID:                newID(),
		SessionID:         sessionID,
		UserMessage:       message,
		AssistantResponse: answer.Text,
		RetrievalUsed:     answer.RetrievalUsed,
		KnowledgeBaseUsed: answer.KnowledgeBaseUsed,
		FallbackReason:    answer.FallbackReason,
		Citations:         answer.CitedDocuments,
		LatencyMs:         latency,
		Ctime:             time.Now().UnixMilli(),
	}

	// Persistence is non-cancellable cleanup: even if the caller has gone
	// away mid-generation, the turn is written so history is never lost.
	pctx := context.WithoutCancel(ctx)
	if err := s.turns.Create(pctx, turn); err != nil {
		logutil.GetLogger(ctx).Error("persist turn failed", zap.Error(err))
		return nil, err
	}
	if err := s.sessions.Touch(pctx, sessionID, turn.Ctime); err != nil {
		logutil.GetLogger(ctx).Warn("touch session failed", zap.Error(err))
	}
	return turn, nil
}

func (s *ChatService) answer(ctx context.Context, message string, retrievalEnabled bool) rag.Answer {
	// Plain generation answers are cacheable; retrieval answers depend on
	// the mutable document store, so they are always recomputed.
	if !retrievalEnabled {
		key := cacheKey("chat", message)
		if cached, ok := s.cache.Get(key); ok {
			return rag.Answer{Text: cached}
		}
		answer := s.engine.Answer(ctx, message, false)
		if !answer.UsedFallback {
			s.cache.Add(key, answer.Text)
		}
		return answer
	}
	return s.engine.Answer(ctx, message, true)
}

func (s *ChatService) ensureSession(ctx context.Context, sessionID, message string) (string, error) {
	if sessionID != "" {
		if _, err := s.sessions.Get(ctx, sessionID); err != nil {
			return "", err
		}
		return sessionID, nil
	}
	now := time.Now().UnixMilli()
	session := &model.ChatSession{
		ID:    newID(),
		Title: sessionTitle(message),
		Ctime: now,
		Mtime: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

func (s *ChatService) ListSessions(ctx context.Context) ([]*model.ChatSession, map[string]int64, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}
	counts, err := s.turns.CountBySessions(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return sessions, counts, nil
}

func (s *ChatService) History(ctx context.Context, sessionID string) ([]*model.ChatTurn, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.turns.ListBySession(ctx, sessionID)
}

func sessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) > sessionTitleLen {
		return string(runes[:sessionTitleLen])
	}
	return message
}

func cacheKey(feature, text string) string {
	hash := sha256.Sum256([]byte(text))
	return feature + ":" + hex.EncodeToString(hash[:])
}
