package vectorindex

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

// Handle is a loaded document index ready for searching.
type Handle struct {
	col        *chromem.Collection
	documentID string
	chunks     []Chunk
}

// DocumentID returns the document this handle belongs to.
func (h *Handle) DocumentID() string {
	return h.documentID
}

// Count returns the number of indexed chunks.
func (h *Handle) Count() int {
	return len(h.chunks)
}

// Chunks returns the chunk metadata in persisted order.
func (h *Handle) Chunks() []Chunk {
	return h.chunks
}

// Texts returns the chunk texts in persisted order.
func (h *Handle) Texts() []string {
	texts := make([]string, len(h.chunks))
	for i, c := range h.chunks {
		texts[i] = c.Text
	}
	return texts
}

// Search runs an exact nearest-neighbor query and returns up to k hits
// ordered by descending score.
func (h *Handle) Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 1
	}
	// chromem-go requires nResults <= collection size.
	count := h.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := h.col.QueryEmbedding(ctx, queryEmbedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index for %s: %w", h.documentID, err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		chunkIndex, _ := strconv.Atoi(r.Metadata["chunk_index"])
		distance, score := scoreFromSimilarity(r.Similarity)
		hits = append(hits, Hit{
			Text:       r.Content,
			DocumentID: h.documentID,
			ChunkIndex: chunkIndex,
			Distance:   distance,
			Score:      score,
		})
	}
	return hits, nil
}
