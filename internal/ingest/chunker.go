package ingest

import "strings"

// minParagraphLen filters out headings, page numbers and other noise
// lines before chunking.
const minParagraphLen = 30

// ChunkText splits text into overlapping chunks along paragraph
// boundaries. Paragraphs accumulate until size is reached; each new
// chunk carries the tail of the previous one so statements spanning a
// boundary stay searchable.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}

	var paragraphs []string
	for _, p := range strings.Split(text, "\n") {
		p = strings.TrimSpace(p)
		if len(p) > minParagraphLen {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	current := ""
	for _, p := range paragraphs {
		if len(current)+len(p) <= size {
			current += " " + p
			continue
		}
		chunks = append(chunks, strings.TrimSpace(current))
		tail := current
		if len(tail) > overlap {
			tail = tail[len(tail)-overlap:]
		}
		current = tail + " " + p
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}
