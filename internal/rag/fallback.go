package rag

import (
	"fmt"
	"strings"

	"github.com/xxxsen/docchat/internal/model"
)

const DefaultFallbackTopN = 4

const fallbackPreamble = "The language model could not be reached, so this answer is assembled " +
	"directly from the most relevant excerpts in your documents. Use them to identify the title, " +
	"the main concepts and a short summary of the topic:"

const scannedDocsNotice = "Your documents appear to be scanned or otherwise non-extractable, so no " +
	"text could be searched. Please re-upload OCR'd or text-based versions (plain text, markdown or " +
	"text-layer PDFs) and try again."

// ExtractiveAnswer builds a deterministic answer from the top-ranked chunks
// when no generation backend is available. It returns ok=false when there is
// nothing useful to extract; the caller then produces its own message.
func ExtractiveAnswer(query string, docs []*model.Document, topN int) (text string, cited []string, ok bool) {
	if topN <= 0 {
		topN = DefaultFallbackTopN
	}
	terms := QueryTerms(query)
	scored := collectScored(docs, terms)
	if len(scored) == 0 {
		if len(docs) > 0 && majorityUnreadable(docs) {
			return scannedDocsNotice, nil, true
		}
		return "", nil, false
	}
	if len(scored) > topN {
		scored = scored[:topN]
	}

	// Group snippets by document, keeping first-use order for citation.
	snippets := make(map[string][]string)
	var order []string
	for _, sc := range scored {
		if _, seen := snippets[sc.DocumentName]; !seen {
			order = append(order, sc.DocumentName)
		}
		snippets[sc.DocumentName] = append(snippets[sc.DocumentName], truncate(sc.Text, snippetMaxLen))
	}

	var sb strings.Builder
	sb.WriteString(fallbackPreamble)
	sb.WriteString("\n")
	for _, name := range order {
		fmt.Fprintf(&sb, "\n- %s: %s", name, strings.Join(snippets[name], " ... "))
	}
	sb.WriteString("\n\nCited documents: ")
	sb.WriteString(strings.Join(order, ", "))
	return sb.String(), order, true
}

func majorityUnreadable(docs []*model.Document) bool {
	unreadable := 0
	for _, doc := range docs {
		if doc.Content == "" {
			unreadable++
		}
	}
	return unreadable*2 > len(docs)
}
