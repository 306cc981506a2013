package model

// OutcomeCounts aggregates persisted turns by how their answer was produced.
type OutcomeCounts struct {
	Total           int64 `json:"total"`
	RetrievalUsed   int64 `json:"retrieval_used"`
	KnowledgeBased  int64 `json:"knowledge_based"`
	FallbackAnswers int64 `json:"fallback_answers"`
}

type ProviderStatus struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	Reachable bool   `json:"reachable"`
}
