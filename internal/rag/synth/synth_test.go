package synth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/synthiquery/api/internal/config"
	"github.com/synthiquery/api/internal/rag/vectorDB"
)

type mockProvider struct {
	generateFunc func(ctx context.Context, query string, blocks []string, history []string) (string, error)
	calls        int
}

func (m *mockProvider) Generate(ctx context.Context, query string, blocks []string, history []string) (string, error) {
	m.calls++
	return m.generateFunc(ctx, query, blocks, history)
}

func match(docId, docName string, seq int, score float32, text string) vectorDB.Match {
	return vectorDB.Match{
		ChunkId: docId + "-chunk",
		Score:   score,
		Payload: vectorDB.Payload{
			DocumentId:   docId,
			DocumentName: docName,
			Seq:          seq,
			Text:         text,
		},
	}
}

func TestSynthesize_CitedAnswer(t *testing.T) {
	var capturedBlocks []string
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
			capturedBlocks = blocks
			return "The report says X. [Document 1]", nil
		},
	}
	s := New(provider)

	answer := s.Synthesize(context.Background(), "what does the report say?", []vectorDB.Match{
		match("doc-1", "report.pdf", 2, 0.91, "X is true."),
		match("doc-2", "notes.pdf", 0, 0.55, "Y is unclear."),
	}, nil)

	if answer.Text != "The report says X. [Document 1]" {
		t.Errorf("Unexpected answer text: %q", answer.Text)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("Expected 2 citations, got %d", len(answer.Citations))
	}
	if answer.Citations[0].DocumentName != "report.pdf" || answer.Citations[0].Seq != 2 {
		t.Errorf("Wrong first citation: %+v", answer.Citations[0])
	}

	if !strings.Contains(capturedBlocks[0], "[Document 1] From: report.pdf (chunk 2)") {
		t.Errorf("Context block missing source tag: %q", capturedBlocks[0])
	}
}

func TestSynthesize_NoContext(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
			return "should not be called", nil
		},
	}
	s := New(provider)

	answer := s.Synthesize(context.Background(), "anything?", nil, nil)

	if answer.Text != config.NoContextAnswer {
		t.Errorf("Expected the no-context message, got %q", answer.Text)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("Expected no citations, got %d", len(answer.Citations))
	}
	if provider.calls != 0 {
		t.Error("Generation must not be called without context")
	}
}

func TestSynthesize_GenerationFailureDegrades(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
			return "", errors.New("deadline exceeded")
		},
	}
	s := New(provider)

	answer := s.Synthesize(context.Background(), "q", []vectorDB.Match{
		match("doc-1", "report.pdf", 0, 0.8, "context"),
	}, nil)

	if answer.Text != config.FallbackAnswer {
		t.Errorf("Expected fallback answer, got %q", answer.Text)
	}
	if len(answer.Citations) != 0 {
		t.Errorf("Fallback answer must carry no citations, got %d", len(answer.Citations))
	}
}

func TestSynthesize_EmptyCompletionDegrades(t *testing.T) {
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, q string, blocks []string, h []string) (string, error) {
			return "   ", nil
		},
	}
	s := New(provider)

	answer := s.Synthesize(context.Background(), "q", []vectorDB.Match{
		match("doc-1", "report.pdf", 0, 0.8, "context"),
	}, nil)

	if answer.Text != config.FallbackAnswer {
		t.Errorf("Blank completion should degrade, got %q", answer.Text)
	}
}

func TestCitations_DedupeAndSnippet(t *testing.T) {
	long := strings.Repeat("x", 500)
	matches := []vectorDB.Match{
		match("doc-1", "report.pdf", 0, 0.9, long),
		match("doc-1", "report.pdf", 0, 0.9, long), // duplicate pair
		match("doc-1", "report.pdf", 1, 0.7, "short"),
	}

	got := citations(matches)
	if len(got) != 2 {
		t.Fatalf("Expected deduped citations, got %d", len(got))
	}
	if utf8.RuneCountInString(got[0].Snippet) != config.CitationSnippetRunes+3 {
		t.Errorf("Snippet not truncated: %d runes", utf8.RuneCountInString(got[0].Snippet))
	}
	if got[1].Snippet != "short" {
		t.Errorf("Short text must pass through, got %q", got[1].Snippet)
	}
}
