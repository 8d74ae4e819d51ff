package vectorindex

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"docqa/internal/db"
	"docqa/internal/embeddings"
)

// Index stores one vector collection per document plus parallel chunk
// metadata rows. Both halves are written together by Build and removed
// together by Delete; if either half is missing the document is
// treated as having no index at all.
type Index struct {
	vdb       *chromem.DB
	db        *db.DB
	embedFunc chromem.EmbeddingFunc
}

// New creates an Index persisted under dir.
func New(database *db.DB, dir string, embedder embeddings.Embedder) (*Index, error) {
	vdb, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("opening vector db: %w", err)
	}
	return &Index{
		vdb:       vdb,
		db:        database,
		embedFunc: embeddings.ToChromemFunc(embedder),
	}, nil
}

// NewMemory creates an in-memory Index (useful for testing).
func NewMemory(database *db.DB, embedder embeddings.Embedder) *Index {
	return &Index{
		vdb:       chromem.NewDB(),
		db:        database,
		embedFunc: embeddings.ToChromemFunc(embedder),
	}
}

func collectionName(documentID string) string {
	return "doc-" + documentID
}

// Build persists an exact-nearest-neighbor structure over the chunk
// embeddings plus the chunk metadata, in the order supplied. Chunks
// without an explicit ChunkIndex are numbered by position. Building
// replaces any previous index for the document.
func (ix *Index) Build(ctx context.Context, documentID string, chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("document %s: no chunks to index", documentID)
	}

	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("document %s: empty embedding", documentID)
	}
	for i, c := range chunks {
		if len(c.Embedding) != dim {
			return fmt.Errorf("document %s: chunk %d has dimension %d, want %d",
				documentID, i, len(c.Embedding), dim)
		}
	}

	// Position is the fallback ordinal when the caller did not assign one.
	ordinals := make([]int, len(chunks))
	for i, c := range chunks {
		ordinals[i] = c.ChunkIndex
		if c.ChunkIndex == 0 && i != 0 {
			ordinals[i] = i
		}
	}

	name := collectionName(documentID)
	if err := ix.vdb.DeleteCollection(name); err != nil {
		return fmt.Errorf("resetting collection %s: %w", name, err)
	}
	col, err := ix.vdb.GetOrCreateCollection(name, nil, ix.embedFunc)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s#%06d", documentID, ordinals[i]),
			Content:   c.Text,
			Embedding: c.Embedding,
			Metadata: map[string]string{
				"document_id": documentID,
				"chunk_index": strconv.Itoa(ordinals[i]),
			},
		}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding chunks for %s: %w", documentID, err)
	}

	// Chunk metadata rows mirror the vector collection.
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting chunk transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clearing chunk rows for %s: %w", documentID, err)
	}
	for i, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (document_id, chunk_index, text) VALUES (?, ?, ?)`,
			documentID, ordinals[i], c.Text,
		); err != nil {
			return fmt.Errorf("inserting chunk %d for %s: %w", ordinals[i], documentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunk rows for %s: %w", documentID, err)
	}
	return nil
}

// Load returns a search handle for the document, or nil when the
// document has no persisted index. Absence is not an error: callers
// treat it as zero contribution. A collection without chunk rows (or
// vice versa) counts as absent.
func (ix *Index) Load(ctx context.Context, documentID string) (*Handle, error) {
	col := ix.vdb.GetCollection(collectionName(documentID), ix.embedFunc)
	if col == nil {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT chunk_index, text FROM chunks WHERE document_id = ? ORDER BY chunk_index`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("loading chunk rows for %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ChunkIndex, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk row for %s: %w", documentID, err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk rows for %s: %w", documentID, err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	return &Handle{col: col, documentID: documentID, chunks: chunks}, nil
}

// Delete removes the document's vector collection and chunk metadata.
// Deleting a document that was never indexed is a no-op.
func (ix *Index) Delete(ctx context.Context, documentID string) error {
	if err := ix.vdb.DeleteCollection(collectionName(documentID)); err != nil {
		return fmt.Errorf("deleting collection for %s: %w", documentID, err)
	}
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("deleting chunk rows for %s: %w", documentID, err)
	}
	return nil
}
