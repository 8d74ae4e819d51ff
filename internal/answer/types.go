package answer

// Canonical refusal sentinels. They double as control signals: any
// extraction containing "not mentioned" is treated as a refusal and
// excluded from synthesis.
const (
	RefusalDocument   = "Not mentioned in the document."
	RefusalCollection = "Not mentioned in the documents."
)

// RetrievalCandidate is one scored chunk returned by raw search.
type RetrievalCandidate struct {
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
}

// SynthesizedAnswer is the final collection-level result. The
// contributing document IDs are retained for traceability even though
// the prose answer may not name them.
type SynthesizedAnswer struct {
	Answer                string   `json:"answer"`
	ContributingDocuments []string `json:"contributing_document_ids"`
	SkippedDocuments      int      `json:"skipped_documents,omitempty"`
}
