package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"docqa/internal/catalog"
	"docqa/internal/llm"
)

const classifierPrompt = `You are an intent classifier for a document system.

Your job:
- DO NOT answer the question
- DO NOT explain
- ONLY classify the intent

Return VALID JSON exactly in this schema:
{
  "intent_type": "metadata | semantic | hybrid",
  "operation": "list | count | filter | summarize | compare | explain",
  "entities": {
    "case": false,
    "order_date": false,
    "document_type": false,
    "act": false
  },
  "filters": {
    "document_type": null,
    "case_stage": null
  }
}

Question:
%q`

// classifierOutput is the strict schema the model must produce.
// Unknown fields are rejected so a partially valid blob never leaks
// into the pipeline as an ambiguous intent.
type classifierOutput struct {
	IntentType string             `json:"intent_type"`
	Operation  string             `json:"operation"`
	Entities   map[string]bool    `json:"entities"`
	Filters    map[string]*string `json:"filters"`
}

// Classifier turns a free-form question into a QueryIntent using the
// generative model. It never fails: malformed output demotes to the
// semantic route instead of aborting the query.
type Classifier struct {
	provider llm.Provider
	model    string
}

// NewClassifier creates a Classifier on the given provider.
func NewClassifier(provider llm.Provider, model string) *Classifier {
	return &Classifier{provider: provider, model: model}
}

// Classify asks the model for a structured intent. Any error — call
// failure, unparseable JSON, out-of-schema values — yields the
// semantic fallback intent.
func (c *Classifier) Classify(ctx context.Context, question string) QueryIntent {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(classifierPrompt, question)},
		},
		MaxTokens:   200,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("router: classifier call failed, falling back to semantic: %v", err)
		return semanticIntent()
	}

	intent, err := parseIntent(resp.Content)
	if err != nil {
		log.Printf("router: malformed classifier output, falling back to semantic: %v", err)
		return semanticIntent()
	}
	return intent
}

// parseIntent validates the model output against the schema. The
// result is either a well-typed QueryIntent or an error; there is no
// partial success.
func parseIntent(raw string) (QueryIntent, error) {
	raw = stripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var out classifierOutput
	if err := dec.Decode(&out); err != nil {
		return QueryIntent{}, fmt.Errorf("decoding intent: %w", err)
	}

	var route Route
	switch out.IntentType {
	case "metadata":
		route = RouteMetadata
	case "semantic", "hybrid":
		// Hybrid intents run the semantic pipeline; the metadata engine
		// has nothing extra to add for them.
		route = RouteSemantic
	default:
		return QueryIntent{}, fmt.Errorf("unknown intent_type %q", out.IntentType)
	}

	op := Operation(out.Operation)
	if op != OpNone && !validOperations[op] {
		return QueryIntent{}, fmt.Errorf("unknown operation %q", out.Operation)
	}

	entities := map[string]bool{}
	for name, v := range out.Entities {
		switch name {
		case catalog.EntityCase, catalog.EntityOrderDate, catalog.EntityDocumentType, catalog.EntityAct, catalog.EntityDocument:
			entities[name] = v
		default:
			return QueryIntent{}, fmt.Errorf("unknown entity %q", name)
		}
	}

	filters := map[string]string{}
	for name, v := range out.Filters {
		if v != nil {
			filters[name] = *v
		}
	}

	return QueryIntent{Route: route, Operation: op, Entities: entities, Filters: filters}, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add even when asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
