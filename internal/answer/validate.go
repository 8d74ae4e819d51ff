package answer

import "strings"

// hedgingPhrases mark answers that drifted away from the supplied
// text. An extraction system has no business speculating.
var hedgingPhrases = []string{
	"based on the information",
	"generally speaking",
	"typically",
	"usually",
	"in many cases",
	"it seems",
	"it appears",
	"might be",
	"could be",
	"possibly",
	"probably",
}

// minWordOverlap is the minimum number of words an answer must share
// with its context to count as grounded.
const minWordOverlap = 3

// Grounded reports whether the answer is plausibly supported by the
// context: non-empty, free of hedging language, and sharing at least
// minWordOverlap words with the context. Ungrounded answers are
// treated as refusals regardless of what the model produced.
func Grounded(answer, context string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}

	lower := strings.ToLower(answer)
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	contextWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(context)) {
		contextWords[w] = true
	}

	overlap := 0
	seen := map[string]bool{}
	for _, w := range strings.Fields(lower) {
		if contextWords[w] && !seen[w] {
			overlap++
			seen[w] = true
		}
	}

	return overlap >= minWordOverlap
}
