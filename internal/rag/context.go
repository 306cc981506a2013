package rag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/docchat/internal/model"
)

const (
	DefaultContextTopN = 3

	snippetMaxLen        = 380
	contextMaxLen        = 2400
	generalContextBudget = 2000
)

const (
	contextHeader = "--- Knowledge base context ---"
	contextFooter = "--- End of knowledge base context ---"
	generalHeader = "--- General document content (no direct match for the question) ---"
	generalFooter = "--- End of document content ---"
)

// Context is the assembled retrieval block handed to the prompt builder.
// General marks the lower-priority block used when documents exist but no
// chunk matched the query.
type Context struct {
	Text    string
	Cited   []string
	General bool
}

func (c Context) Empty() bool {
	return c.Text == ""
}

// BuildContext chunks and scores every document against the query, keeps the
// topN positive chunks (ties resolved by scan order) and renders them with
// citations under a hard size cap. The cap is a safety bound, not a ranking
// step, so it is applied after joining.
func BuildContext(query string, docs []*model.Document, topN int) Context {
	if topN <= 0 {
		topN = DefaultContextTopN
	}
	terms := QueryTerms(query)
	scored := collectScored(docs, terms)
	if len(scored) == 0 {
		return generalContext(docs)
	}
	if len(scored) > topN {
		scored = scored[:topN]
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	var cited []string
	seen := make(map[string]bool)
	for _, sc := range scored {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "From %q (score %d):\n%s", sc.DocumentName, sc.Score, truncate(sc.Text, snippetMaxLen))
		if !seen[sc.DocumentName] {
			seen[sc.DocumentName] = true
			cited = append(cited, sc.DocumentName)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(contextFooter)
	return Context{Text: truncate(sb.String(), contextMaxLen), Cited: cited}
}

// collectScored returns all positively scored chunks ordered by descending
// score, document scan order preserved among ties.
func collectScored(docs []*model.Document, terms []string) []ScoredChunk {
	var scored []ScoredChunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		for _, chunk := range SplitChunks(doc.Name, doc.Content, DefaultChunkSize, DefaultChunkOverlap) {
			if s := ScoreChunk(chunk.Text, terms); s > 0 {
				scored = append(scored, ScoredChunk{Chunk: chunk, Score: s})
			}
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// generalContext assembles leading excerpts of each document when nothing
// matched the query directly, so the model still sees what the knowledge
// base is about.
func generalContext(docs []*model.Document) Context {
	var sb strings.Builder
	var cited []string
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		excerpt := truncate(doc.Content, snippetMaxLen)
		if sb.Len()+len(excerpt) > generalContextBudget {
			break
		}
		if sb.Len() == 0 {
			sb.WriteString(generalHeader)
		}
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "From %q:\n%s", doc.Name, excerpt)
		cited = append(cited, doc.Name)
	}
	if sb.Len() == 0 {
		return Context{}
	}
	sb.WriteString("\n")
	sb.WriteString(generalFooter)
	return Context{Text: sb.String(), Cited: cited, General: true}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
