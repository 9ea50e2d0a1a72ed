package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/domain/jobModel"
	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/internal/rag/llm"
	"github.com/synthiquery/api/internal/rag/vectorDB"
	"github.com/synthiquery/api/pkg/logger_i"
)

// Answer is what the user sees: generated text plus the chunks it came
// from.
type Answer struct {
	Text      string
	Citations []jobModel.Citation
}

// Synthesizer turns retrieved chunks into a cited answer. Generation
// failure degrades to a fallback message; it never propagates to the
// caller and never touches the index.
type Synthesizer struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func New(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logger_i.NewLogger("Synthesizer"),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, question string, matches []vectorDB.Match, messageHistory []string) Answer {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if len(matches) == 0 {
		log.Info("No relevant context, skipping generation")
		return Answer{Text: config.NoContextAnswer}
	}

	if s.provider == nil {
		log.Error("No generation provider configured, returning fallback answer")
		return Answer{Text: config.FallbackAnswer}
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = fmt.Sprintf("[Document %d] From: %s (chunk %d)\n%s",
			i+1, m.Payload.DocumentName, m.Payload.Seq, m.Payload.Text)
	}

	text, err := s.provider.Generate(ctx, question, blocks, messageHistory)
	if err != nil || strings.TrimSpace(text) == "" {
		genErr := &ragerror.GenerationError{Err: err}
		log.Error("Generation failed, returning fallback answer", "error", genErr)
		return Answer{Text: config.FallbackAnswer}
	}

	return Answer{Text: text, Citations: citations(matches)}
}

// citations maps matches to user-facing source references, one per
// (document, chunk) pair, in retrieval order.
func citations(matches []vectorDB.Match) []jobModel.Citation {
	type key struct {
		docId string
		seq   int
	}
	seen := make(map[key]struct{}, len(matches))

	result := make([]jobModel.Citation, 0, len(matches))
	for _, m := range matches {
		k := key{m.Payload.DocumentId, m.Payload.Seq}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, jobModel.Citation{
			DocumentId:   m.Payload.DocumentId,
			DocumentName: m.Payload.DocumentName,
			Seq:          m.Payload.Seq,
			Score:        m.Score,
			Snippet:      snippet(m.Payload.Text),
		})
	}
	return result
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= config.CitationSnippetRunes {
		return text
	}
	return string(runes[:config.CitationSnippetRunes]) + "..."
}
