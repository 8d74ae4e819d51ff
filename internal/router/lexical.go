package router

import (
	"strings"

	"docqa/internal/catalog"
)

// countKeywords and listKeywords classify the obvious metadata
// question patterns without any model call.
var (
	countKeywords    = []string{"how many", "count", "number of"}
	listKeywords     = []string{"list", "show", "which"}
	documentKeywords = []string{"document", "documents", "pdf", "pdfs", "file", "files"}
)

// ClassifyLexical is the deterministic router stage. It recognizes
// count and listing questions by keyword and sets entity flags from
// keyword presence. When the detected entities have no populated
// attribute in the availability map, the route is demoted to semantic:
// a deterministic question about data that does not exist must not be
// answered as metadata.
func ClassifyLexical(question string, available map[string]bool) QueryIntent {
	q := strings.ToLower(strings.TrimSpace(question))
	result := semanticIntent()

	switch {
	case containsAny(q, countKeywords):
		result.Route = RouteMetadata
		result.Operation = OpCount
		result.Entities = map[string]bool{
			catalog.EntityDocument: containsAny(q, documentKeywords),
			catalog.EntityCase:     strings.Contains(q, "case"),
		}

	case containsAny(q, listKeywords):
		result.Route = RouteMetadata
		result.Operation = OpList
		result.Entities = map[string]bool{
			catalog.EntityCase:         strings.Contains(q, "case"),
			catalog.EntityDocument:     containsAny(q, documentKeywords),
			catalog.EntityOrderDate:    strings.Contains(q, "order date"),
			catalog.EntityDocumentType: strings.Contains(q, "type"),
		}
	}

	if result.Route == RouteMetadata && !anyAvailable(result.Entities, available) {
		result.Route = RouteSemantic
		result.Operation = OpNone
		result.FallbackToSemantic = true
	}

	return result
}

func containsAny(q string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// anyAvailable reports whether at least one detected entity has
// populated data behind it.
func anyAvailable(entities, available map[string]bool) bool {
	for name, detected := range entities {
		if detected && available[name] {
			return true
		}
	}
	return false
}
