// Package rag implements the retrieval pipeline: chunking, lexical scoring,
// context assembly and the extractive fallback used when no generation
// backend can be reached.
package rag

// Default retrieval policy. Counts are in characters, not tokens; the
// knowledge bases this serves are small and local, so cheap fixed windows
// beat anything smarter.
const (
	DefaultChunkSize    = 400
	DefaultChunkOverlap = 60
)

// Chunk is a bounded window of one document's sanitized content. Chunks are
// produced per query and never stored.
type Chunk struct {
	DocumentName string
	Text         string
}

type ScoredChunk struct {
	Chunk
	Score int
}

// SplitChunks cuts text into consecutive windows of size characters,
// advancing by size-overlap each step. The last window may be shorter.
// Pure function of its input: same text, same chunks.
func SplitChunks(docName, text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := size - overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			DocumentName: docName,
			Text:         string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
