// Package answer implements the hybrid question-answering engine: a
// query router chooses between deterministic metadata answers and
// semantic search; semantic questions fan out across every document in
// a collection, extract a grounded per-document answer, and synthesize
// one collection-level answer.
package answer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docqa/internal/catalog"
	"docqa/internal/embeddings"
	"docqa/internal/llm"
	"docqa/internal/metadata"
	"docqa/internal/router"
	"docqa/internal/vectorindex"
)

// Options tune retrieval and extraction.
type Options struct {
	SearchWidth     int // chunks per document in collection mode
	TopK            int // chunks in single-document mode
	MaxContextChars int // context budget handed to extraction
	MaxConcurrency  int // parallel per-document searches
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		SearchWidth:     3,
		TopK:            5,
		MaxContextChars: 6000,
		MaxConcurrency:  4,
	}
}

// Engine coordinates the catalog, vector indexes, embedder and
// generative model. All components are injected once at construction;
// nothing reaches into ambient global state.
type Engine struct {
	catalog  *catalog.Store
	index    *vectorindex.Index
	embedder embeddings.Embedder
	provider llm.Provider // serialized: one completion at a time
	model    string
	router   *router.Router
	metadata *metadata.Engine
	opts     Options
}

// NewEngine wires the answer engine. The provider is wrapped so that
// classifier, extraction and synthesis calls are serialized against
// the single shared model resource.
func NewEngine(
	store *catalog.Store,
	index *vectorindex.Index,
	embedder embeddings.Embedder,
	provider llm.Provider,
	model string,
	opts Options,
) *Engine {
	serialized := llm.Serialize(provider)
	return &Engine{
		catalog:  store,
		index:    index,
		embedder: embedder,
		provider: serialized,
		model:    model,
		router:   router.New(router.NewClassifier(serialized, model)),
		metadata: metadata.NewEngine(store),
		opts:     opts,
	}
}

// AnswerDocument answers a question from a single document. The result
// is the grounded extraction verbatim, including a possible refusal.
func (e *Engine) AnswerDocument(ctx context.Context, question, documentID, userID string) (string, error) {
	if _, err := e.catalog.GetDocument(ctx, documentID, userID); err != nil {
		return "", err
	}

	scope := catalog.Scope{UserID: userID, DocumentID: documentID}
	intent, err := e.routeQuestion(ctx, question, scope)
	if err != nil {
		return "", err
	}

	if intent.Route == router.RouteMetadata {
		if answer, handled, err := e.metadata.Answer(ctx, intent, scope); err != nil {
			return "", err
		} else if handled {
			return answer, nil
		}
	}

	handle, err := e.index.Load(ctx, documentID)
	if err != nil {
		return "", err
	}
	if handle == nil || handle.Count() == 0 {
		log.Printf("answer: document %s has no index, returning refusal", documentID)
		return RefusalDocument, nil
	}

	queryEmbedding, err := e.embedQuestion(ctx, question)
	if err != nil {
		return "", err
	}

	hits, err := handle.Search(ctx, queryEmbedding, e.opts.TopK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return RefusalDocument, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Text
	}
	context := e.truncate(strings.Join(texts, "\n\n"))

	return e.extract(ctx, context, question)
}

// AnswerCollection answers a question across every document in a
// collection. Each document with a non-empty index contributes its own
// best chunks; per-document extractions are then synthesized into one
// answer.
func (e *Engine) AnswerCollection(ctx context.Context, question, collectionID, userID string) (*SynthesizedAnswer, error) {
	scope := catalog.Scope{UserID: userID, CollectionID: collectionID}

	// Resolving membership also enforces ownership.
	docIDs, err := e.catalog.DocumentsInCollection(ctx, collectionID, userID)
	if err != nil {
		return nil, err
	}

	intent, err := e.routeQuestion(ctx, question, scope)
	if err != nil {
		return nil, err
	}

	if intent.Route == router.RouteMetadata {
		if answer, handled, err := e.metadata.Answer(ctx, intent, scope); err != nil {
			return nil, err
		} else if handled {
			return &SynthesizedAnswer{Answer: answer}, nil
		}
	}

	if len(docIDs) == 0 {
		return &SynthesizedAnswer{Answer: RefusalCollection}, nil
	}

	contexts, skipped, err := e.retrieveContexts(ctx, question, docIDs)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return &SynthesizedAnswer{Answer: RefusalCollection, SkippedDocuments: skipped}, nil
	}

	// Serialized phase: one extraction per document that produced
	// context. A failed extraction drops that document, never the
	// whole query.
	type extraction struct {
		documentID string
		answer     string
		score      float32
	}
	var extractions []extraction
	for _, dc := range contexts {
		ans, err := e.extract(ctx, dc.text, question)
		if err != nil {
			log.Printf("answer: extraction failed for document %s, dropping: %v", dc.documentID, err)
			continue
		}
		if isRefusal(ans) {
			continue
		}
		extractions = append(extractions, extraction{documentID: dc.documentID, answer: ans, score: dc.bestScore})
	}

	if len(extractions) == 0 {
		return &SynthesizedAnswer{Answer: RefusalCollection, SkippedDocuments: skipped}, nil
	}

	contributing := make([]string, len(extractions))
	labelled := make([]string, len(extractions))
	for i, ex := range extractions {
		contributing[i] = ex.documentID
		labelled[i] = fmt.Sprintf("Document %s:\n%s", ex.documentID, ex.answer)
	}

	final, err := e.synthesize(ctx, question, labelled)
	if err != nil {
		// Degraded response: surface the single best-scoring
		// per-document answer rather than a hard error.
		log.Printf("answer: synthesis failed, returning best per-document answer: %v", err)
		best := extractions[0]
		for _, ex := range extractions[1:] {
			if ex.score > best.score {
				best = ex
			}
		}
		return &SynthesizedAnswer{
			Answer:                best.answer,
			ContributingDocuments: []string{best.documentID},
			SkippedDocuments:      skipped,
		}, nil
	}

	return &SynthesizedAnswer{
		Answer:                final,
		ContributingDocuments: contributing,
		SkippedDocuments:      skipped,
	}, nil
}

// routeQuestion computes entity availability and runs the router.
func (e *Engine) routeQuestion(ctx context.Context, question string, scope catalog.Scope) (router.QueryIntent, error) {
	available, err := e.catalog.Availability(ctx, scope)
	if err != nil {
		return router.QueryIntent{}, err
	}
	return e.router.Route(ctx, question, available), nil
}

func (e *Engine) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	embs, err := e.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector")
	}
	return embs[0], nil
}

func (e *Engine) truncate(s string) string {
	if len(s) > e.opts.MaxContextChars {
		return s[:e.opts.MaxContextChars]
	}
	return s
}
