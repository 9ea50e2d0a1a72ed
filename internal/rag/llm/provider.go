package llm

import "context"

// Provider is the narrow boundary to the remote text-generation API.
// contextBlocks are preformatted document excerpts; messageHistory is the
// recent conversation, oldest first.
type Provider interface {
	Generate(ctx context.Context, query string, contextBlocks []string, messageHistory []string) (string, error)
}
