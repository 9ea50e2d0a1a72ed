package hashEmbedding

import (
	"math"
	"testing"
)

const testDim = 384

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbed_UnitNorm(t *testing.T) {
	texts := []string{
		"artificial intelligence systems",
		"a",
		"日本語のテキストも正しく扱える",
		"the quick brown fox jumps over the lazy dog",
	}
	for _, text := range texts {
		v := Embed(text, testDim)
		if len(v) != testDim {
			t.Fatalf("Dimension got %d, want %d", len(v), testDim)
		}
		if got := norm(v); math.Abs(got-1.0) > 1e-5 {
			t.Errorf("Norm of %q is %f, want 1.0", text, got)
		}
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	first := Embed("retrieval augmented generation", testDim)
	second := Embed("retrieval augmented generation", testDim)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Vectors differ at index %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestEmbed_DifferentTextsDiffer(t *testing.T) {
	a := Embed("machine learning", testDim)
	b := Embed("deep sea fishing", testDim)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Distinct texts hashed to identical vectors")
	}
}

func TestEmbed_WhitespaceInsensitive(t *testing.T) {
	a := Embed("hello   world", testDim)
	b := Embed("hello world", testDim)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Whitespace runs should not change the vector")
		}
	}
}

func TestEmbed_EmptyTextZeroVector(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		v := Embed(text, testDim)
		if norm(v) != 0 {
			t.Errorf("Expected zero vector for %q", text)
		}
	}
}
