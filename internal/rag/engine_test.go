package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docchat/internal/kb"
)

type stubGenerator struct {
	response    string
	err         error
	unreachable bool
	lastPrompt  string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *stubGenerator) Reachable() bool {
	return !g.unreachable
}

func storeWithDoc(t *testing.T, name, content string) *kb.Store {
	t.Helper()
	store := kb.NewStore()
	store.Add(context.Background(), name, content, "text/plain", int64(len(content)))
	return store
}

func readableContent(topic string) string {
	out := ""
	for i := 0; i < 12; i++ {
		out += "the " + topic + " procedure requires a stable reference sensor and patience "
	}
	return out
}

func TestAnswerWithoutRetrieval(t *testing.T) {
	gen := &stubGenerator{response: "plain answer"}
	engine := NewEngine(kb.NewStore(), gen)

	answer := engine.Answer(context.Background(), "hello", false)
	require.Equal(t, "plain answer", answer.Text)
	require.False(t, answer.RetrievalUsed)
	require.False(t, answer.UsedFallback)
	require.Equal(t, "hello", gen.lastPrompt)
}

func TestAnswerWithoutRetrievalGenerationFails(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	engine := NewEngine(kb.NewStore(), gen)

	answer := engine.Answer(context.Background(), "hello", false)
	require.True(t, answer.UsedFallback)
	require.Equal(t, ReasonGenerationUnavailable, answer.FallbackReason)
	require.NotEmpty(t, answer.Text)
}

func TestAnswerRetrievalSuccess(t *testing.T) {
	store := storeWithDoc(t, "manual.txt", readableContent("calibration"))
	gen := &stubGenerator{response: "generated from context"}
	engine := NewEngine(store, gen)

	answer := engine.Answer(context.Background(), "how does calibration work", true)
	require.Equal(t, "generated from context", answer.Text)
	require.True(t, answer.RetrievalUsed)
	require.True(t, answer.KnowledgeBaseUsed)
	require.False(t, answer.UsedFallback)
	require.Contains(t, answer.CitedDocuments, "manual.txt")
	require.Contains(t, gen.lastPrompt, "manual.txt")
	require.Contains(t, gen.lastPrompt, "ONLY the knowledge base context")
}

func TestAnswerRetrievalEmptyStore(t *testing.T) {
	gen := &stubGenerator{response: "general knowledge answer"}
	engine := NewEngine(kb.NewStore(), gen)

	answer := engine.Answer(context.Background(), "how does calibration work", true)
	require.Equal(t, "general knowledge answer", answer.Text)
	require.True(t, answer.RetrievalUsed)
	require.False(t, answer.KnowledgeBaseUsed)
	require.Contains(t, gen.lastPrompt, "no relevant documents were found")
}

func TestAnswerFallbackOnGenerationFailure(t *testing.T) {
	store := storeWithDoc(t, "manual.txt", readableContent("calibration"))
	gen := &stubGenerator{err: errors.New("backend down")}
	engine := NewEngine(store, gen)

	answer := engine.Answer(context.Background(), "how does calibration work", true)
	require.True(t, answer.UsedFallback)
	require.True(t, answer.KnowledgeBaseUsed)
	require.Equal(t, ReasonGenerationUnavailable, answer.FallbackReason)
	require.Contains(t, answer.Text, "manual.txt")
	require.Contains(t, answer.Text, "calibration")
	require.Contains(t, answer.CitedDocuments, "manual.txt")
}

func TestAnswerSkipsUnreachableBackend(t *testing.T) {
	store := storeWithDoc(t, "manual.txt", readableContent("calibration"))
	gen := &stubGenerator{response: "never used", unreachable: true}
	engine := NewEngine(store, gen)

	answer := engine.Answer(context.Background(), "how does calibration work", true)
	require.True(t, answer.UsedFallback)
	require.Equal(t, ReasonBackendUnreachable, answer.FallbackReason)
	require.Empty(t, gen.lastPrompt)
	require.Contains(t, answer.Text, "manual.txt")
}

func TestAnswerFallbackNoExcerpts(t *testing.T) {
	store := storeWithDoc(t, "manual.txt", readableContent("gardening"))
	gen := &stubGenerator{err: errors.New("down")}
	engine := NewEngine(store, gen)

	answer := engine.Answer(context.Background(), "quantum entanglement", true)
	require.True(t, answer.UsedFallback)
	require.False(t, answer.KnowledgeBaseUsed)
	require.NotEmpty(t, answer.Text)
	require.Empty(t, answer.CitedDocuments)
}
