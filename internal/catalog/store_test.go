package catalog

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCollectionLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, "contracts", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if col.ID == "" {
		t.Error("expected non-empty collection ID")
	}

	got, err := store.GetCollection(ctx, col.ID, "alice")
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if got.Name != "contracts" {
		t.Errorf("expected name 'contracts', got %q", got.Name)
	}

	if err := store.DeleteCollection(ctx, col.ID, "alice"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := store.GetCollection(ctx, col.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCollectionOwnership(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, "contracts", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	if _, err := store.GetCollection(ctx, col.ID, "mallory"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for foreign user, got %v", err)
	}
}

func TestDocumentOwnership(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc := &Document{Filename: "order.pdf", UserID: "alice"}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	if _, err := store.GetDocument(ctx, doc.ID, "mallory"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := store.GetDocument(ctx, "missing", "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDocumentRejectsForeignCollection(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, "contracts", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	doc := &Document{Filename: "order.pdf", UserID: "mallory", CollectionID: col.ID}
	if err := store.CreateDocument(ctx, doc); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDocumentsInCollectionOrdering(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, "orders", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	// Fixed IDs so the created_at tiebreaker is deterministic.
	for _, id := range []string{"doc-b", "doc-a", "doc-c"} {
		doc := &Document{ID: id, Filename: id + ".txt", UserID: "alice", CollectionID: col.ID}
		if err := store.CreateDocument(ctx, doc); err != nil {
			t.Fatalf("CreateDocument %s: %v", id, err)
		}
	}

	ids, err := store.DocumentsInCollection(ctx, col.ID, "alice")
	if err != nil {
		t.Fatalf("DocumentsInCollection: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(ids))
	}
	// Same created_at second, so document_id breaks the tie.
	want := []string{"doc-a", "doc-b", "doc-c"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("position %d: expected %s, got %s", i, id, ids[i])
		}
	}
}

func TestAssignToCollection(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	col, err := store.CreateCollection(ctx, "orders", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	doc := &Document{Filename: "order.pdf", UserID: "alice"}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	if err := store.AssignToCollection(ctx, doc.ID, col.ID, "alice"); err != nil {
		t.Fatalf("AssignToCollection: %v", err)
	}

	got, err := store.GetDocument(ctx, doc.ID, "alice")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.CollectionID != col.ID {
		t.Errorf("expected collection %s, got %q", col.ID, got.CollectionID)
	}
}

func TestAvailabilityReflectsLiveRows(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	scope := Scope{UserID: "alice"}

	avail, err := store.Availability(ctx, scope)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	for entity, ok := range avail {
		if ok {
			t.Errorf("empty scope: expected %s unavailable", entity)
		}
	}

	doc := &Document{
		Filename: "order.pdf",
		UserID:   "alice",
		Attributes: Attributes{
			CaseNumber: "123/2024",
			OrderDate:  "2024-05-01",
		},
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	avail, err = store.Availability(ctx, scope)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if !avail[EntityDocument] || !avail[EntityCase] || !avail[EntityOrderDate] {
		t.Errorf("expected document, case and order_date available, got %v", avail)
	}
	if avail[EntityDocumentType] || avail[EntityAct] {
		t.Errorf("expected document_type and act unavailable, got %v", avail)
	}

	// Deleting the document flips availability back immediately.
	if err := store.DeleteDocument(ctx, doc.ID, "alice"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	avail, err = store.Availability(ctx, scope)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if avail[EntityCase] {
		t.Error("expected case unavailable after delete")
	}
}

func TestListCaseRows(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	docs := []*Document{
		{Filename: "a.pdf", UserID: "alice", Attributes: Attributes{CaseNumber: "1/2024", DocumentType: "order", OrderDate: "2024-01-01"}},
		{Filename: "b.pdf", UserID: "alice", Attributes: Attributes{CaseNumber: "2/2024"}},
		{Filename: "c.pdf", UserID: "bob", Attributes: Attributes{CaseNumber: "9/2024"}},
	}
	for _, d := range docs {
		if err := store.CreateDocument(ctx, d); err != nil {
			t.Fatalf("CreateDocument: %v", err)
		}
	}

	rows, err := store.ListCaseRows(ctx, Scope{UserID: "alice"})
	if err != nil {
		t.Fatalf("ListCaseRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 case rows, got %d", len(rows))
	}
	// Missing attributes come back as empty strings, never NULL scan errors.
	for _, r := range rows {
		if r.CaseNumber == "9/2024" {
			t.Error("foreign user's case leaked into scope")
		}
	}
}

func TestSetAttributes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc := &Document{Filename: "a.pdf", UserID: "alice"}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	attrs := Attributes{DocumentType: "judgment", PageCount: 12, WordCount: 4800}
	if err := store.SetAttributes(ctx, doc.ID, "alice", attrs); err != nil {
		t.Fatalf("SetAttributes: %v", err)
	}

	got, err := store.GetDocument(ctx, doc.ID, "alice")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Attributes.DocumentType != "judgment" || got.Attributes.PageCount != 12 {
		t.Errorf("attributes not persisted: %+v", got.Attributes)
	}
}
