package model

type ChatSession struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Ctime int64  `json:"ctime"`
	Mtime int64  `json:"mtime"`
}

// ChatTurn is one persisted user/assistant exchange. Metadata flags record
// how the answer was produced so degraded responses stay distinguishable.
type ChatTurn struct {
	ID                string   `json:"id"`
	SessionID         string   `json:"session_id"`
	UserMessage       string   `json:"user_message"`
	AssistantResponse string   `json:"assistant_response"`
	RetrievalUsed     bool     `json:"retrieval_used"`
	KnowledgeBaseUsed bool     `json:"knowledge_base_used"`
	FallbackReason    string   `json:"fallback_reason,omitempty"`
	Citations         []string `json:"citations,omitempty"`
	LatencyMs         int64    `json:"latency_ms"`
	Ctime             int64    `json:"ctime"`
}
