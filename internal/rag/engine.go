package rag

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/kb"
)

// DefaultMaxOutputTokens bounds generation length so a slow backend cannot
// eat the whole request budget; headroom must remain to run the extractive
// fallback after a generation timeout.
const DefaultMaxOutputTokens = 300

// Fallback reasons recorded in turn metadata.
const (
	ReasonGenerationUnavailable = "generation_unavailable"
	ReasonBackendUnreachable    = "backend_unreachable"
)

const cannotCompleteMessage = "Sorry, the request could not be completed right now. Please try again."

const noExcerptsMessage = "The language model could not be reached and no relevant excerpts were " +
	"found in your documents, so the question cannot be answered right now."

// Generator is the external generation capability. Failures surface as
// errors; the engine never lets them escape to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	// Reachable reports whether the configured backend can plausibly be
	// reached from this process (a backend that only resolves to loopback
	// while the server runs elsewhere is not). A doomed network call is
	// skipped entirely in favor of the extractive fallback.
	Reachable() bool
}

// GenerationResult makes the backend outcome explicit so the answer flow is
// driven by inspection rather than exception interception.
type GenerationResult struct {
	Text    string
	Failure string
}

func (r GenerationResult) OK() bool {
	return r.Failure == ""
}

// Answer is the engine's verdict for one query; every path produces one.
type Answer struct {
	Text              string   `json:"text"`
	CitedDocuments    []string `json:"cited_documents,omitempty"`
	UsedFallback      bool     `json:"used_fallback"`
	RetrievalUsed     bool     `json:"retrieval_used"`
	KnowledgeBaseUsed bool     `json:"knowledge_base_used"`
	FallbackReason    string   `json:"fallback_reason,omitempty"`
}

// Engine decides per query whether to retrieve, how to prompt the backend
// and when to fall back to extractive answers.
type Engine struct {
	store *kb.Store
	gen   Generator
	topN  int
}

func NewEngine(store *kb.Store, gen Generator) *Engine {
	return &Engine{store: store, gen: gen, topN: DefaultContextTopN}
}

// Answer runs one query to completion. Generation and retrieval failures are
// absorbed here: the returned Answer always carries user-presentable text.
func (e *Engine) Answer(ctx context.Context, query string, retrievalEnabled bool) Answer {
	logger := logutil.GetLogger(ctx).With(zap.Bool("retrieval", retrievalEnabled))

	if !retrievalEnabled {
		result := e.generate(ctx, query)
		if result.OK() {
			return Answer{Text: result.Text}
		}
		logger.Warn("generation failed without retrieval", zap.String("reason", result.Failure))
		return Answer{Text: cannotCompleteMessage, UsedFallback: true, FallbackReason: result.Failure}
	}

	docs := e.store.List()
	ragCtx := BuildContext(query, docs, e.topN)
	prompt := e.buildPrompt(query, ragCtx)

	if !e.gen.Reachable() {
		logger.Info("generation backend unreachable, using extractive fallback")
		return e.fallbackAnswer(ctx, query, ReasonBackendUnreachable)
	}

	result := e.generate(ctx, prompt)
	if result.OK() {
		return Answer{
			Text:              result.Text,
			CitedDocuments:    ragCtx.Cited,
			RetrievalUsed:     true,
			KnowledgeBaseUsed: !ragCtx.Empty(),
		}
	}
	logger.Warn("generation failed, attempting extractive fallback", zap.String("reason", result.Failure))
	if len(docs) == 0 {
		return Answer{Text: cannotCompleteMessage, RetrievalUsed: true, UsedFallback: true, FallbackReason: result.Failure}
	}
	return e.fallbackAnswer(ctx, query, result.Failure)
}

func (e *Engine) generate(ctx context.Context, prompt string) GenerationResult {
	text, err := e.gen.Generate(ctx, prompt, DefaultMaxOutputTokens)
	if err != nil {
		return GenerationResult{Failure: ReasonGenerationUnavailable}
	}
	return GenerationResult{Text: text}
}

func (e *Engine) fallbackAnswer(ctx context.Context, query, reason string) Answer {
	docs := e.store.List()
	text, cited, ok := ExtractiveAnswer(query, docs, DefaultFallbackTopN)
	if !ok {
		if len(docs) == 0 {
			return Answer{Text: cannotCompleteMessage, RetrievalUsed: true, UsedFallback: true, FallbackReason: reason}
		}
		return Answer{Text: noExcerptsMessage, RetrievalUsed: true, UsedFallback: true, FallbackReason: reason}
	}
	logutil.GetLogger(ctx).Info("extractive fallback answered", zap.Int("citations", len(cited)))
	return Answer{
		Text:              text,
		CitedDocuments:    cited,
		RetrievalUsed:     true,
		KnowledgeBaseUsed: len(cited) > 0,
		UsedFallback:      true,
		FallbackReason:    reason,
	}
}

func (e *Engine) buildPrompt(query string, ragCtx Context) string {
	if ragCtx.Empty() {
		return fmt.Sprintf("%s\n\n(Note: no relevant documents were found in the knowledge base.)", query)
	}
	if ragCtx.General {
		return fmt.Sprintf(`Answer the question below. No passage matched it directly, but general
content from the user's documents follows; use it if it helps and mention the
document names you rely on.

%s

QUESTION:
%s`, ragCtx.Text, query)
	}
	return fmt.Sprintf(`Answer the question using ONLY the knowledge base context below.
- Cite the document names you used.
- If the answer is not in the context, say explicitly that it was not found.
- Keep the answer concise.

%s

QUESTION:
%s`, ragCtx.Text, query)
}
