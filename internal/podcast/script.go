package podcast

import (
	"fmt"
	"strings"
)

// speakerNames are the voices the script may use, in priority order.
var speakerNames = []string{"Rahul", "Priya", "Vikas", "Anita"}

// scriptPrompt builds the prompt for podcast script generation. The
// output format is strict so that a TTS stage can split lines by
// speaker.
func scriptPrompt(context string, speakers int) string {
	if speakers < 1 {
		speakers = 1
	}
	if speakers > len(speakerNames) {
		speakers = len(speakerNames)
	}
	active := speakerNames[:speakers]

	rules := make([]string, len(active))
	for i, name := range active {
		rules[i] = fmt.Sprintf("- %s: speaks naturally", name)
	}

	return fmt.Sprintf(`You are a professional podcast script writer.

STRICT RULES (VERY IMPORTANT):
- Output ONLY dialogue lines
- EACH line MUST start with one of these speaker names EXACTLY:
  %s
- Format MUST be:
  SpeakerName: sentence
- DO NOT write "Speaker 1", "Speaker 2"
- DO NOT add headings, greetings, or narration
- DO NOT leave blank lines
- English only

Allowed speakers:
%s

Content:
%s

Begin the podcast now.`,
		strings.Join(active, ", "),
		strings.Join(rules, "\n"),
		context)
}
