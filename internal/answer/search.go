package answer

import (
	"context"
	"log"
	"sort"
)

// SearchDocument runs raw retrieval against one document without
// extraction, for preview use cases.
func (e *Engine) SearchDocument(ctx context.Context, question, documentID, userID string, topK int) ([]RetrievalCandidate, error) {
	if _, err := e.catalog.GetDocument(ctx, documentID, userID); err != nil {
		return nil, err
	}

	handle, err := e.index.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, nil
	}

	queryEmbedding, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := handle.Search(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	candidates := make([]RetrievalCandidate, len(hits))
	for i, h := range hits {
		candidates[i] = RetrievalCandidate{
			Text:       h.Text,
			Score:      h.Score,
			DocumentID: h.DocumentID,
			ChunkIndex: h.ChunkIndex,
		}
	}
	return candidates, nil
}

// SearchCollection runs raw retrieval across a collection. Every
// document with an index contributes its single best chunk, so the
// result reflects the collection as a set of independent sources; the
// combined list is then sorted by score and capped at topK.
func (e *Engine) SearchCollection(ctx context.Context, question, collectionID, userID string, topK int) ([]RetrievalCandidate, error) {
	docIDs, err := e.catalog.DocumentsInCollection(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		return nil, nil
	}

	queryEmbedding, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	var candidates []RetrievalCandidate
	for _, docID := range docIDs {
		handle, err := e.index.Load(ctx, docID)
		if err != nil {
			log.Printf("answer: loading index for %s failed, skipping: %v", docID, err)
			continue
		}
		if handle == nil || handle.Count() == 0 {
			continue
		}

		hits, err := handle.Search(ctx, queryEmbedding, 1)
		if err != nil {
			log.Printf("answer: search failed for %s, skipping: %v", docID, err)
			continue
		}
		if len(hits) == 0 {
			continue
		}

		candidates = append(candidates, RetrievalCandidate{
			Text:       hits[0].Text,
			Score:      hits[0].Score,
			DocumentID: hits[0].DocumentID,
			ChunkIndex: hits[0].ChunkIndex,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}
