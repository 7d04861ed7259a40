package ai

import "context"

// ComposerService is the interface for LLM text composition. Implement this
// interface to add new providers (Gemini, Ollama, OpenAI, etc.)
type ComposerService interface {
	// ComposeUpdate writes a short, persona-flavored preface introducing
	// the given item titles.
	ComposeUpdate(ctx context.Context, persona string, titles []string) (string, error)
}
