package answer

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"

	"docqa/internal/catalog"
	"docqa/internal/db"
	"docqa/internal/llm"
	"docqa/internal/vectorindex"
)

// wordEmbedder is a deterministic bag-of-words embedder: similar texts
// share vector mass, which is enough for retrieval ordering in tests.
type wordEmbedder struct{}

const wordDim = 64

func (wordEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, wordDim)
		for _, w := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(strings.Trim(w, ".,:;?!")))
			v[h.Sum32()%wordDim]++
		}
		out[i] = v
	}
	return out, nil
}

func (wordEmbedder) Dimensions() int { return wordDim }
func (wordEmbedder) Name() string    { return "word" }

// scriptedProvider routes each completion through a response function
// and counts calls.
type scriptedProvider struct {
	respond func(prompt string) (string, error)
	calls   int
}

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	prompt := req.Messages[len(req.Messages)-1].Content
	content, err := p.respond(prompt)
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

const semanticJSON = `{"intent_type":"semantic","operation":"explain","entities":{},"filters":{}}`

// respondPenalty emulates a well-behaved model for the penalty corpus.
func respondPenalty(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "intent classifier"):
		return semanticJSON, nil
	case strings.Contains(prompt, "EXTRACTED ANSWERS"):
		return "The documents state a penalty of 5% for late delivery.", nil
	case strings.Contains(prompt, "penalty of 5%"):
		return "The penalty is 5% for late delivery.", nil
	default:
		return RefusalDocument, nil
	}
}

type fixture struct {
	engine *Engine
	store  *catalog.Store
	index  *vectorindex.Index
}

func setupFixture(t *testing.T, provider llm.Provider) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := catalog.NewStore(database)
	index := vectorindex.NewMemory(database, wordEmbedder{})
	engine := NewEngine(store, index, wordEmbedder{}, provider, "test-model", DefaultOptions())
	return &fixture{engine: engine, store: store, index: index}
}

// addDocument registers and indexes one document with a single chunk
// per sentence.
func (f *fixture) addDocument(t *testing.T, id, text string, attrs catalog.Attributes, collectionID string) {
	t.Helper()
	ctx := context.Background()

	doc := &catalog.Document{ID: id, Filename: id + ".txt", UserID: "alice", CollectionID: collectionID, Attributes: attrs}
	if err := f.store.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument %s: %v", id, err)
	}

	sentences := strings.Split(text, "\n")
	embs, err := wordEmbedder{}.Embed(ctx, sentences)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	chunks := make([]vectorindex.Chunk, len(sentences))
	for i := range sentences {
		chunks[i] = vectorindex.Chunk{Text: sentences[i], Embedding: embs[i], ChunkIndex: i}
	}
	if err := f.index.Build(ctx, id, chunks); err != nil {
		t.Fatalf("Build %s: %v", id, err)
	}
}

func (f *fixture) addCollection(t *testing.T) string {
	t.Helper()
	col, err := f.store.CreateCollection(context.Background(), "cases", "alice")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	return col.ID
}

const penaltyText = "The contract imposes a penalty of 5% for late delivery of goods.\nPayment is due within thirty days of invoice."
const scheduleText = "This order concerns hearing schedules only.\nThe next hearing is listed for the summer session."

func TestAnswerDocumentExtraction(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, "")

	answer, err := f.engine.AnswerDocument(context.Background(), "What is the penalty clause?", "doc-penalty", "alice")
	if err != nil {
		t.Fatalf("AnswerDocument: %v", err)
	}
	if !strings.Contains(answer, "5%") {
		t.Errorf("expected the 5%% penalty in the answer, got %q", answer)
	}
}

func TestAnswerDocumentOwnership(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, "")

	_, err := f.engine.AnswerDocument(context.Background(), "What is the penalty clause?", "doc-penalty", "mallory")
	if !errors.Is(err, catalog.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAnswerDocumentWithoutIndexRefuses(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)

	// Registered but never indexed.
	doc := &catalog.Document{ID: "doc-empty", Filename: "empty.txt", UserID: "alice"}
	if err := f.store.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	answer, err := f.engine.AnswerDocument(context.Background(), "What is the penalty clause?", "doc-empty", "alice")
	if err != nil {
		t.Fatalf("AnswerDocument: %v", err)
	}
	if answer != RefusalDocument {
		t.Errorf("expected refusal, got %q", answer)
	}
}

func TestAnswerDocumentUngroundedBecomesRefusal(t *testing.T) {
	provider := &scriptedProvider{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "intent classifier") {
			return semanticJSON, nil
		}
		// Fluent but unsupported by the supplied text.
		return "Paris is the capital of France.", nil
	}}
	f := setupFixture(t, provider)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, "")

	answer, err := f.engine.AnswerDocument(context.Background(), "What is the capital of France?", "doc-penalty", "alice")
	if err != nil {
		t.Fatalf("AnswerDocument: %v", err)
	}
	if answer != RefusalDocument {
		t.Errorf("ungrounded answer must become a refusal, got %q", answer)
	}
}

func TestAnswerDocumentMetadataStats(t *testing.T) {
	provider := &scriptedProvider{respond: func(string) (string, error) {
		return "", errors.New("model must not be called for metadata questions")
	}}
	f := setupFixture(t, provider)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{PageCount: 4, WordCount: 900, DocumentType: "contract"}, "")

	answer, err := f.engine.AnswerDocument(context.Background(), "How many pages does this document have?", "doc-penalty", "alice")
	if err != nil {
		t.Fatalf("AnswerDocument: %v", err)
	}
	if answer != "Pages: 4, Words: 900, Document Type: contract" {
		t.Errorf("unexpected stats answer: %q", answer)
	}
	if provider.calls != 0 {
		t.Errorf("metadata questions must not reach the model, got %d calls", provider.calls)
	}
}

func TestAnswerCollectionEndToEnd(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, colID)
	f.addDocument(t, "doc-schedule", scheduleText, catalog.Attributes{}, colID)

	result, err := f.engine.AnswerCollection(context.Background(), "What is the penalty clause?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	if !strings.Contains(result.Answer, "5%") {
		t.Errorf("expected synthesized answer with 5%%, got %q", result.Answer)
	}
	// The scheduling document refused, so only the contract contributes.
	if len(result.ContributingDocuments) != 1 || result.ContributingDocuments[0] != "doc-penalty" {
		t.Errorf("expected [doc-penalty] contributing, got %v", result.ContributingDocuments)
	}
	if result.SkippedDocuments != 0 {
		t.Errorf("expected no skipped documents, got %d", result.SkippedDocuments)
	}
}

func TestAnswerCollectionMetadataShortCircuit(t *testing.T) {
	provider := &scriptedProvider{respond: func(string) (string, error) {
		return "", errors.New("model must not be called for metadata questions")
	}}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-a", penaltyText, catalog.Attributes{}, colID)
	f.addDocument(t, "doc-b", scheduleText, catalog.Attributes{}, colID)

	result, err := f.engine.AnswerCollection(context.Background(), "How many documents do I have?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	if result.Answer != "Total documents: 2" {
		t.Errorf("expected deterministic count, got %q", result.Answer)
	}
	if provider.calls != 0 {
		t.Errorf("metadata questions must not reach the model, got %d calls", provider.calls)
	}
}

func TestAnswerCollectionAllRefusalsReturnsSentinel(t *testing.T) {
	provider := &scriptedProvider{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "intent classifier") {
			return semanticJSON, nil
		}
		return RefusalDocument, nil
	}}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-a", penaltyText, catalog.Attributes{}, colID)
	f.addDocument(t, "doc-b", scheduleText, catalog.Attributes{}, colID)

	result, err := f.engine.AnswerCollection(context.Background(), "What is the interest rate?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	if result.Answer != RefusalCollection {
		t.Errorf("expected collection refusal, got %q", result.Answer)
	}
	if len(result.ContributingDocuments) != 0 {
		t.Errorf("refusals must not contribute, got %v", result.ContributingDocuments)
	}
}

func TestAnswerCollectionEmptyCollection(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)
	colID := f.addCollection(t)

	result, err := f.engine.AnswerCollection(context.Background(), "What is the penalty clause?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	if result.Answer != RefusalCollection {
		t.Errorf("expected refusal for empty collection, got %q", result.Answer)
	}
}

func TestAnswerCollectionCountsSkippedDocuments(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, colID)

	// A member document with no index must be skipped, not fatal.
	bare := &catalog.Document{ID: "doc-bare", Filename: "bare.txt", UserID: "alice", CollectionID: colID}
	if err := f.store.CreateDocument(context.Background(), bare); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	result, err := f.engine.AnswerCollection(context.Background(), "What is the penalty clause?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	if result.SkippedDocuments != 1 {
		t.Errorf("expected 1 skipped document, got %d", result.SkippedDocuments)
	}
	if !strings.Contains(result.Answer, "5%") {
		t.Errorf("expected answer despite skipped member, got %q", result.Answer)
	}
}

func TestAnswerCollectionSynthesisFallback(t *testing.T) {
	provider := &scriptedProvider{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "intent classifier"):
			return semanticJSON, nil
		case strings.Contains(prompt, "EXTRACTED ANSWERS"):
			return "", errors.New("synthesis backend down")
		case strings.Contains(prompt, "penalty of 5%"):
			return "The penalty is 5% for late delivery.", nil
		default:
			return RefusalDocument, nil
		}
	}}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, colID)
	f.addDocument(t, "doc-schedule", scheduleText, catalog.Attributes{}, colID)

	result, err := f.engine.AnswerCollection(context.Background(), "What is the penalty clause?", colID, "alice")
	if err != nil {
		t.Fatalf("AnswerCollection: %v", err)
	}
	// Degraded mode: the best per-document answer stands in for synthesis.
	if !strings.Contains(result.Answer, "5%") {
		t.Errorf("expected best per-document answer, got %q", result.Answer)
	}
	if len(result.ContributingDocuments) != 1 {
		t.Errorf("expected single contributing document, got %v", result.ContributingDocuments)
	}
}

func TestSearchCollectionPerDocumentGuarantee(t *testing.T) {
	provider := &scriptedProvider{respond: respondPenalty}
	f := setupFixture(t, provider)

	colID := f.addCollection(t)
	f.addDocument(t, "doc-penalty", penaltyText, catalog.Attributes{}, colID)
	f.addDocument(t, "doc-schedule", scheduleText, catalog.Attributes{}, colID)

	hits, err := f.engine.SearchCollection(context.Background(), "penalty for late delivery", colID, "alice", 5)
	if err != nil {
		t.Fatalf("SearchCollection: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected one hit per document, got %d", len(hits))
	}

	seen := map[string]int{}
	for _, h := range hits {
		seen[h.DocumentID]++
	}
	if seen["doc-penalty"] != 1 || seen["doc-schedule"] != 1 {
		t.Errorf("expected exactly one hit per document, got %v", seen)
	}
	if hits[0].DocumentID != "doc-penalty" {
		t.Errorf("expected the penalty document ranked first, got %s", hits[0].DocumentID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("expected descending scores, got %f then %f", hits[0].Score, hits[1].Score)
	}
}
