// Package metadata answers structured questions (counts, listings)
// from document attributes. It never calls the generative model: it is
// pure structured query plus string formatting.
package metadata

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/catalog"
	"docqa/internal/router"
)

// Engine executes metadata intents against the attribute store.
type Engine struct {
	catalog *catalog.Store
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(store *catalog.Store) *Engine {
	return &Engine{catalog: store}
}

// Answer executes the intent scoped to (collection|document, owner).
// handled=false means the engine cannot serve this operation and the
// caller should fall back to semantic search; it is a signal, not an
// error. Errors are reserved for storage faults.
func (e *Engine) Answer(ctx context.Context, intent router.QueryIntent, scope catalog.Scope) (answer string, handled bool, err error) {
	if scope.DocumentID != "" {
		return e.documentStats(ctx, scope)
	}
	if scope.CollectionID == "" {
		return "", false, nil
	}

	switch intent.Operation {
	case router.OpCount:
		n, err := e.catalog.CountDocuments(ctx, scope)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("Total documents: %d", n), true, nil

	case router.OpList:
		switch {
		case intent.Entities[catalog.EntityCase]:
			return e.listCases(ctx, scope)
		case intent.Entities[catalog.EntityOrderDate]:
			return e.listOrderDates(ctx, scope)
		}
	}

	return "", false, nil
}

func (e *Engine) listCases(ctx context.Context, scope catalog.Scope) (string, bool, error) {
	rows, err := e.catalog.ListCaseRows(ctx, scope)
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "No cases found in this collection.", true, nil
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("Case: %s, Type: %s, Order Date: %s",
			orDefault(r.CaseNumber, "N/A"),
			orDefault(r.DocumentType, "Unknown"),
			orDefault(r.OrderDate, "N/A"))
	}
	return strings.Join(lines, "\n"), true, nil
}

func (e *Engine) listOrderDates(ctx context.Context, scope catalog.Scope) (string, bool, error) {
	rows, err := e.catalog.ListCaseRows(ctx, scope)
	if err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "Order date information not available.", true, nil
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("Case: %s, Order Date: %s",
			orDefault(r.CaseNumber, "N/A"),
			orDefault(r.OrderDate, "N/A"))
	}
	return strings.Join(lines, "\n"), true, nil
}

// documentStats serves metadata questions about a single document.
func (e *Engine) documentStats(ctx context.Context, scope catalog.Scope) (string, bool, error) {
	doc, err := e.catalog.GetDocument(ctx, scope.DocumentID, scope.UserID)
	if err != nil {
		return "", false, err
	}

	attrs := doc.Attributes
	if attrs.PageCount == 0 && attrs.WordCount == 0 && attrs.DocumentType == "" {
		return "Metadata not available for this document.", true, nil
	}

	return fmt.Sprintf("Pages: %s, Words: %s, Document Type: %s",
		orDefaultInt(attrs.PageCount, "N/A"),
		orDefaultInt(attrs.WordCount, "N/A"),
		orDefault(attrs.DocumentType, "Unknown")), true, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(n int, def string) string {
	if n == 0 {
		return def
	}
	return fmt.Sprintf("%d", n)
}
