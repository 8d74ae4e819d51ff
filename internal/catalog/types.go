package catalog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a document or collection does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when a document or collection exists but
// belongs to a different owner. Ownership is enforced here, once, and
// never re-derived downstream.
var ErrUnauthorized = errors.New("not authorized")

// Collection is a named grouping of documents owned by one user.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is one ingested document. A document belongs to at most one
// collection; membership is implicit in CollectionID.
type Document struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	UserID       string     `json:"-"`
	CollectionID string     `json:"collection_id,omitempty"`
	Attributes   Attributes `json:"attributes"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Attributes are the structured metadata extracted for a document.
// Empty strings and zero counts mean "not populated".
type Attributes struct {
	DocumentType string `json:"document_type,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	OrderDate    string `json:"order_date,omitempty"`
	Act          string `json:"act,omitempty"`
	PageCount    int    `json:"page_count,omitempty"`
	WordCount    int    `json:"word_count,omitempty"`
}

// Scope identifies whose data a query may touch: one owner plus either
// a collection or a single document.
type Scope struct {
	UserID       string
	CollectionID string
	DocumentID   string
}

// CaseRow is one tuple returned by case listings.
type CaseRow struct {
	CaseNumber   string
	DocumentType string
	OrderDate    string
}
