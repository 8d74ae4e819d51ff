package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"docqa/internal/db"
)

// Store provides registry and attribute operations over documents and
// collections. All reads are scoped by owner.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateCollection creates a new collection for the given owner.
func (s *Store) CreateCollection(ctx context.Context, name, userID string) (*Collection, error) {
	c := &Collection{ID: uuid.New().String(), Name: name, UserID: userID}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (collection_id, name, user_id) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("inserting collection: %w", err)
	}
	return c, nil
}

// GetCollection retrieves a collection, enforcing ownership.
func (s *Store) GetCollection(ctx context.Context, id, userID string) (*Collection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT collection_id, name, user_id, created_at FROM collections WHERE collection_id = ?`, id)

	var c Collection
	if err := row.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("collection %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning collection: %w", err)
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("collection %s: %w", id, ErrUnauthorized)
	}
	return &c, nil
}

// ListCollections returns all collections owned by the user, oldest first.
func (s *Store) ListCollections(ctx context.Context, userID string) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection_id, name, user_id, created_at FROM collections
		 WHERE user_id = ? ORDER BY created_at, collection_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		var c Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCollection removes a collection. Documents keep existing with
// their collection_id cleared (handled by the schema's ON DELETE SET NULL).
func (s *Store) DeleteCollection(ctx context.Context, id, userID string) error {
	if _, err := s.GetCollection(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE collection_id = ?`, id); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// CreateDocument registers a document. If doc.ID is empty a UUID is
// generated. When a collection is given it must belong to the same owner.
func (s *Store) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CollectionID != "" {
		if _, err := s.GetCollection(ctx, doc.CollectionID, doc.UserID); err != nil {
			return err
		}
	}

	var collectionID any
	if doc.CollectionID != "" {
		collectionID = doc.CollectionID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (
			document_id, filename, user_id, collection_id,
			document_type, case_number, order_date, act, page_count, word_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.UserID, collectionID,
		nullable(doc.Attributes.DocumentType),
		nullable(doc.Attributes.CaseNumber),
		nullable(doc.Attributes.OrderDate),
		nullable(doc.Attributes.Act),
		nullableInt(doc.Attributes.PageCount),
		nullableInt(doc.Attributes.WordCount),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document, enforcing ownership.
func (s *Store) GetDocument(ctx context.Context, id, userID string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, filename, user_id, collection_id,
		       document_type, case_number, order_date, act, page_count, word_count, created_at
		FROM documents WHERE document_id = ?`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", id, ErrUnauthorized)
	}
	return doc, nil
}

// ListDocuments returns all documents owned by the user, oldest first.
func (s *Store) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	return s.queryDocuments(ctx, `
		SELECT document_id, filename, user_id, collection_id,
		       document_type, case_number, order_date, act, page_count, word_count, created_at
		FROM documents WHERE user_id = ? ORDER BY created_at, document_id`, userID)
}

// DocumentsInCollection resolves collection membership for the owner,
// ordered by creation time for determinism. Ownership of the
// collection itself is verified first.
func (s *Store) DocumentsInCollection(ctx context.Context, collectionID, userID string) ([]string, error) {
	if _, err := s.GetCollection(ctx, collectionID, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id FROM documents
		WHERE collection_id = ? AND user_id = ?
		ORDER BY created_at, document_id`, collectionID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing collection documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignToCollection moves a document into a collection (or out of any
// collection when collectionID is empty). Membership changes never
// touch the underlying vector index.
func (s *Store) AssignToCollection(ctx context.Context, documentID, collectionID, userID string) error {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return err
	}

	var value any
	if collectionID != "" {
		if _, err := s.GetCollection(ctx, collectionID, userID); err != nil {
			return err
		}
		value = collectionID
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE documents SET collection_id = ? WHERE document_id = ?`, value, documentID); err != nil {
		return fmt.Errorf("assigning document to collection: %w", err)
	}
	return nil
}

// SetAttributes updates a document's structured attributes.
func (s *Store) SetAttributes(ctx context.Context, documentID, userID string, attrs Attributes) error {
	if _, err := s.GetDocument(ctx, documentID, userID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET document_type = ?, case_number = ?, order_date = ?, act = ?, page_count = ?, word_count = ?
		WHERE document_id = ?`,
		nullable(attrs.DocumentType),
		nullable(attrs.CaseNumber),
		nullable(attrs.OrderDate),
		nullable(attrs.Act),
		nullableInt(attrs.PageCount),
		nullableInt(attrs.WordCount),
		documentID,
	)
	if err != nil {
		return fmt.Errorf("updating attributes: %w", err)
	}
	return nil
}

// DeleteDocument removes a document row. The caller is responsible for
// removing the vector index alongside.
func (s *Store) DeleteDocument(ctx context.Context, id, userID string) error {
	if _, err := s.GetDocument(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var collectionID, docType, caseNumber, orderDate, act sql.NullString
	var pageCount, wordCount sql.NullInt64

	err := row.Scan(&doc.ID, &doc.Filename, &doc.UserID, &collectionID,
		&docType, &caseNumber, &orderDate, &act, &pageCount, &wordCount, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}

	doc.CollectionID = collectionID.String
	doc.Attributes = Attributes{
		DocumentType: docType.String,
		CaseNumber:   caseNumber.String,
		OrderDate:    orderDate.String,
		Act:          act.String,
		PageCount:    int(pageCount.Int64),
		WordCount:    int(wordCount.Int64),
	}
	return &doc, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
