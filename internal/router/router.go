package router

import "context"

// Router decides, per question, whether the answer is obtainable
// deterministically from metadata or requires semantic search. The
// lexical stage runs first and costs no model call; the classifier is
// consulted only when no lexical pattern matched.
type Router struct {
	classifier *Classifier
}

// New creates a Router. classifier may be nil, in which case questions
// without a lexical pattern go straight to the semantic route.
func New(classifier *Classifier) *Router {
	return &Router{classifier: classifier}
}

// Route produces the QueryIntent for a question. available reports
// which entities have populated attributes in the query's scope.
func (r *Router) Route(ctx context.Context, question string, available map[string]bool) QueryIntent {
	intent := ClassifyLexical(question, available)
	if intent.Route == RouteMetadata {
		return intent
	}

	// A demoted question had a recognizable metadata pattern but no
	// data behind it; the classifier cannot improve on that.
	if intent.FallbackToSemantic {
		return intent
	}

	if r.classifier == nil {
		return intent
	}
	return r.classifier.Classify(ctx, question)
}
