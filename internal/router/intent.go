package router

// Route says which engine answers the question.
type Route string

const (
	RouteMetadata Route = "metadata"
	RouteSemantic Route = "semantic"
)

// Operation is the structured operation a metadata question maps to.
// OpNone marks questions with no recognized operation.
type Operation string

const (
	OpNone      Operation = ""
	OpList      Operation = "list"
	OpCount     Operation = "count"
	OpFilter    Operation = "filter"
	OpSummarize Operation = "summarize"
	OpCompare   Operation = "compare"
	OpExplain   Operation = "explain"
)

// QueryIntent is the router's decision for one question. It is the
// sole branch point for the rest of the answer pipeline.
type QueryIntent struct {
	Route              Route
	Operation          Operation
	Entities           map[string]bool
	Filters            map[string]string
	FallbackToSemantic bool
}

// semanticIntent is the default decision when nothing else applies.
func semanticIntent() QueryIntent {
	return QueryIntent{
		Route:     RouteSemantic,
		Operation: OpNone,
		Entities:  map[string]bool{},
		Filters:   map[string]string{},
	}
}

var validOperations = map[Operation]bool{
	OpList:      true,
	OpCount:     true,
	OpFilter:    true,
	OpSummarize: true,
	OpCompare:   true,
	OpExplain:   true,
}
