package answer

import (
	"fmt"
	"strings"
)

// extractionPrompt constrains the model to the supplied text. Combined
// with the post-hoc grounding validation this is the system's main
// hallucination defense.
func extractionPrompt(context, question string) string {
	return fmt.Sprintf(`You are an information extraction system.

CRITICAL RULES:
- Use ONLY the provided document text
- DO NOT use prior knowledge
- DO NOT guess
- DO NOT infer
- If the answer is not explicitly present, reply exactly:
  "Not mentioned in the document."

Document Text:
----------------
%s
----------------

Question:
%s

Answer:`, context, question)
}

// synthesisPrompt merges per-document extractions into one
// collection-level answer without inventing facts.
func synthesisPrompt(question string, extracted []string) string {
	return fmt.Sprintf(`You are given answers extracted independently from multiple documents.

Your task is to provide a collection-level understanding.

INSTRUCTIONS:
- Look for common patterns, agreements, or themes
- If most documents point to the same conclusion, state it clearly
- If documents differ or information is insufficient, say so explicitly
- Do NOT invent facts not present in the extracted answers
- Be concise and neutral

EXTRACTED ANSWERS:
----------------
%s
----------------

ORIGINAL QUESTION:
%s

Final synthesized answer (collection-level):`, strings.Join(extracted, "\n"), question)
}

// isRefusal reports whether an extraction declined to answer.
func isRefusal(answer string) bool {
	return strings.Contains(strings.ToLower(answer), "not mentioned")
}
