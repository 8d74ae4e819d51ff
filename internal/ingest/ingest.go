// Package ingest turns raw document text into a registered, indexed
// document: chunk, embed, persist the catalog row and vector index.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/catalog"
	"docqa/internal/embeddings"
	"docqa/internal/vectorindex"
)

// Ingestor wires the chunker, embedder, catalog and vector index.
type Ingestor struct {
	catalog  *catalog.Store
	index    *vectorindex.Index
	embedder embeddings.Embedder
	size     int
	overlap  int
}

// New creates an Ingestor. size and overlap control the chunker.
func New(store *catalog.Store, index *vectorindex.Index, embedder embeddings.Embedder, size, overlap int) *Ingestor {
	return &Ingestor{
		catalog:  store,
		index:    index,
		embedder: embedder,
		size:     size,
		overlap:  overlap,
	}
}

// IngestText registers the document and builds its vector index from
// the given text. doc.ID is assigned if empty. The word count
// attribute is filled in from the text.
func (g *Ingestor) IngestText(ctx context.Context, doc *catalog.Document, text string) error {
	chunks := ChunkText(text, g.size, g.overlap)
	if len(chunks) == 0 {
		// Short documents still deserve an index.
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return fmt.Errorf("document %s: empty text", doc.Filename)
		}
		chunks = []string{trimmed}
	}

	embs, err := g.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding %s: %w", doc.Filename, err)
	}
	if len(embs) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embs), len(chunks))
	}

	if doc.Attributes.WordCount == 0 {
		doc.Attributes.WordCount = len(strings.Fields(text))
	}

	if err := g.catalog.CreateDocument(ctx, doc); err != nil {
		return err
	}

	indexed := make([]vectorindex.Chunk, len(chunks))
	for i := range chunks {
		indexed[i] = vectorindex.Chunk{
			Text:       chunks[i],
			Embedding:  embs[i],
			ChunkIndex: i,
		}
	}

	if err := g.index.Build(ctx, doc.ID, indexed); err != nil {
		// Roll the catalog row back so no half-ingested document is
		// visible to collection queries.
		if delErr := g.catalog.DeleteDocument(ctx, doc.ID, doc.UserID); delErr != nil {
			return fmt.Errorf("building index: %w (cleanup failed: %v)", err, delErr)
		}
		return fmt.Errorf("building index: %w", err)
	}
	return nil
}

// DeleteDocument removes a document's catalog row, vector index and
// chunk metadata together.
func (g *Ingestor) DeleteDocument(ctx context.Context, documentID, userID string) error {
	if err := g.catalog.DeleteDocument(ctx, documentID, userID); err != nil {
		return err
	}
	return g.index.Delete(ctx, documentID)
}
