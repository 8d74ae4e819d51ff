package answer

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
)

// docContext is one document's contribution to a collection query.
type docContext struct {
	documentID string
	text       string
	bestScore  float32
}

// retrieveContexts fans one query embedding out across every document
// in the collection. Each document with a non-empty index contributes
// its own top chunks (capped at SearchWidth), so a single highly
// similar document cannot crowd out the others. Searches run in
// parallel under a bounded semaphore; documents with missing or empty
// indexes are skipped, counted and logged rather than failing the
// query. Results are sorted by document ID for determinism.
func (e *Engine) retrieveContexts(ctx context.Context, question string, docIDs []string) ([]docContext, int, error) {
	queryEmbedding, err := e.embedQuestion(ctx, question)
	if err != nil {
		return nil, 0, err
	}

	concurrency := e.opts.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var contexts []docContext
	skipped := 0

	for _, docID := range docIDs {
		sem <- struct{}{}
		wg.Add(1)
		go func(documentID string) {
			defer wg.Done()
			defer func() { <-sem }()

			handle, err := e.index.Load(ctx, documentID)
			if err != nil {
				log.Printf("answer: loading index for %s failed, skipping: %v", documentID, err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}
			if handle == nil || handle.Count() == 0 {
				log.Printf("answer: document %s has no index, skipping", documentID)
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}

			hits, err := handle.Search(ctx, queryEmbedding, e.opts.SearchWidth)
			if err != nil {
				log.Printf("answer: search failed for %s, skipping: %v", documentID, err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}
			if len(hits) == 0 {
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}

			texts := make([]string, len(hits))
			for i, h := range hits {
				texts[i] = h.Text
			}

			mu.Lock()
			contexts = append(contexts, docContext{
				documentID: documentID,
				text:       e.truncate(strings.Join(texts, "\n\n")),
				bestScore:  hits[0].Score,
			})
			mu.Unlock()
		}(docID)
	}
	wg.Wait()

	sort.Slice(contexts, func(i, j int) bool {
		return contexts[i].documentID < contexts[j].documentID
	})

	if skipped > 0 {
		log.Printf("answer: %d of %d documents skipped (missing or empty index)", skipped, len(docIDs))
	}
	return contexts, skipped, nil
}
