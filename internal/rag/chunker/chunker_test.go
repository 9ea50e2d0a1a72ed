package chunker

import (
	"strings"
	"testing"
)

func TestSplit_WindowAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 250)
	pieces := Split(text, 100, 20, 10)

	// stride 80: windows at 0, 80, 160, 240
	if len(pieces) != 4 {
		t.Fatalf("Expected 4 pieces, got %d", len(pieces))
	}

	for i, p := range pieces {
		if p.Seq != i {
			t.Errorf("Piece %d has seq %d", i, p.Seq)
		}
	}

	if pieces[0].Start != 0 || pieces[0].End != 100 {
		t.Errorf("First piece boundaries wrong: %d..%d", pieces[0].Start, pieces[0].End)
	}
	if pieces[1].Start != 80 {
		t.Errorf("Second piece should start at stride 80, got %d", pieces[1].Start)
	}
	if pieces[3].End != 250 {
		t.Errorf("Last piece should end at text length 250, got %d", pieces[3].End)
	}

	// consecutive pieces share exactly the overlap
	tail := pieces[0].Text[80:]
	if !strings.HasPrefix(pieces[1].Text, tail) {
		t.Error("Pieces do not overlap by the configured amount")
	}
}

func TestSplit_DropsShortTrailingFragment(t *testing.T) {
	// stride 80 leaves a 5-rune tail at offset 160 that must be dropped
	text := strings.Repeat("b", 165)
	pieces := Split(text, 100, 20, 10)

	if len(pieces) != 2 {
		t.Fatalf("Expected 2 pieces after dropping the fragment, got %d", len(pieces))
	}
	// seq numbering stays dense after the drop
	if pieces[1].Seq != 1 {
		t.Errorf("Expected dense seq numbering, got %d", pieces[1].Seq)
	}
}

func TestSplit_ShortTextSinglePiece(t *testing.T) {
	pieces := Split("short but long enough", 100, 20, 10)
	if len(pieces) != 1 {
		t.Fatalf("Expected 1 piece, got %d", len(pieces))
	}
	if pieces[0].Text != "short but long enough" {
		t.Errorf("Piece text mismatch: %q", pieces[0].Text)
	}
}

func TestSplit_EmptyAndInvalidInput(t *testing.T) {
	if got := Split("", 100, 20, 10); got != nil {
		t.Errorf("Empty text should yield nil, got %v", got)
	}
	if got := Split("text", 0, 0, 0); got != nil {
		t.Errorf("Zero window should yield nil, got %v", got)
	}
	if got := Split("text", 10, 10, 0); got != nil {
		t.Errorf("Overlap >= window should yield nil, got %v", got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	first := Split(text, 200, 40, 20)
	second := Split(text, 200, 40, 20)

	if len(first) != len(second) {
		t.Fatalf("Runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Piece %d differs between runs", i)
		}
	}
}

func TestSplit_MultiByteRunesNotCut(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 40) // 240 runes
	pieces := Split(text, 100, 20, 10)

	for i, p := range pieces {
		for _, r := range p.Text {
			if r == '�' {
				t.Fatalf("Piece %d contains a replacement rune, text was cut mid-character", i)
			}
		}
	}

	if pieces[0].End-pieces[0].Start != 100 {
		t.Errorf("Window should count runes, got %d", pieces[0].End-pieces[0].Start)
	}
}
