package catalog

import (
	"context"
	"fmt"
)

// Entity names the router and metadata engine agree on.
const (
	EntityDocument     = "document"
	EntityCase         = "case"
	EntityOrderDate    = "order_date"
	EntityDocumentType = "document_type"
	EntityAct          = "act"
)

// Availability reports which entities have populated attributes inside
// the scope. It is computed fresh on every call from the live rows, so
// the router never consults a stale snapshot.
func (s *Store) Availability(ctx context.Context, scope Scope) (map[string]bool, error) {
	where, args := scopeClause(scope)

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*),
		       COUNT(case_number),
		       COUNT(order_date),
		       COUNT(document_type),
		       COUNT(act)
		FROM documents WHERE %s`, where), args...)

	var docs, cases, orderDates, docTypes, acts int
	if err := row.Scan(&docs, &cases, &orderDates, &docTypes, &acts); err != nil {
		return nil, fmt.Errorf("computing availability: %w", err)
	}

	return map[string]bool{
		EntityDocument:     docs > 0,
		EntityCase:         cases > 0,
		EntityOrderDate:    orderDates > 0,
		EntityDocumentType: docTypes > 0,
		EntityAct:          acts > 0,
	}, nil
}

// CountDocuments returns the number of documents in scope.
func (s *Store) CountDocuments(ctx context.Context, scope Scope) (int, error) {
	where, args := scopeClause(scope)

	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM documents WHERE %s`, where), args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// ListCaseRows returns case attribute tuples for documents in scope,
// ordered by creation time.
func (s *Store) ListCaseRows(ctx context.Context, scope Scope) ([]CaseRow, error) {
	where, args := scopeClause(scope)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT COALESCE(case_number, ''), COALESCE(document_type, ''), COALESCE(order_date, '')
		FROM documents WHERE %s ORDER BY created_at, document_id`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("listing case rows: %w", err)
	}
	defer rows.Close()

	var out []CaseRow
	for rows.Next() {
		var r CaseRow
		if err := rows.Scan(&r.CaseNumber, &r.DocumentType, &r.OrderDate); err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// scopeClause builds the ownership-scoped WHERE clause shared by all
// attribute queries. Every read is bounded by the owner plus, when
// given, a collection or a single document.
func scopeClause(scope Scope) (string, []any) {
	switch {
	case scope.DocumentID != "":
		return "document_id = ? AND user_id = ?", []any{scope.DocumentID, scope.UserID}
	case scope.CollectionID != "":
		return "collection_id = ? AND user_id = ?", []any{scope.CollectionID, scope.UserID}
	default:
		return "user_id = ?", []any{scope.UserID}
	}
}
