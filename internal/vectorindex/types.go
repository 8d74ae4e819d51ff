package vectorindex

// Chunk is a bounded span of document text paired with its embedding.
// ChunkIndex is unique and dense within a document and preserves the
// order chunks were produced in.
type Chunk struct {
	Text       string
	Embedding  []float32
	ChunkIndex int
}

// Hit is one search result from a document index.
type Hit struct {
	Text       string
	DocumentID string
	ChunkIndex int
	Distance   float32
	Score      float32
}

// scoreFromSimilarity converts a cosine similarity into the canonical
// relevance score. Embeddings are unit length, so the squared
// Euclidean distance is 2*(1-s); the score is 1/(1+distance). This is
// the single point where raw similarities become scores.
func scoreFromSimilarity(sim float32) (distance, score float32) {
	distance = 2 * (1 - sim)
	if distance < 0 {
		distance = 0
	}
	score = 1 / (1 + distance)
	return distance, score
}
