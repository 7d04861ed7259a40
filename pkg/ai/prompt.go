package ai

import (
	"fmt"
	"strings"
)

// composePrompt builds the shared preface prompt so both providers produce
// comparable output.
func composePrompt(persona string, titles []string) string {
	if persona == "" {
		persona = "a helpful news-watching assistant"
	}
	return fmt.Sprintf(`You are %s. You just found fresh updates on a topic you are watching for someone.

Write a SHORT preface (1-2 sentences, under 40 words) introducing these findings in your own voice. Do not list the items themselves; the list follows your preface.

FINDINGS:
- %s

PREFACE:`, persona, strings.Join(titles, "\n- "))
}
