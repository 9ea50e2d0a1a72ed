package chunker

// Splitting is rune-based: a window of W runes slides with stride W-O, so
// multi-byte text is never cut mid-character. The same text with the same
// parameters always yields the same pieces.

type Piece struct {
	Seq   int
	Start int // rune offset, inclusive
	End   int // rune offset, exclusive
	Text  string
}

// Split cuts text into overlapping windows. The final piece may be
// shorter than the window but is never empty; pieces shorter than minLen
// are dropped so near-empty trailing fragments don't pollute the index.
// Sequence numbers are assigned to the retained pieces in traversal
// order, starting at 0.
func Split(text string, window, overlap, minLen int) []Piece {
	if text == "" || window <= 0 || overlap >= window {
		return nil
	}

	runes := []rune(text)
	stride := window - overlap

	var pieces []Piece
	seq := 0
	for start := 0; start < len(runes); start += stride {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}

		if end-start >= minLen {
			pieces = append(pieces, Piece{
				Seq:   seq,
				Start: start,
				End:   end,
				Text:  string(runes[start:end]),
			})
			seq++
		}

		if end == len(runes) {
			break
		}
	}
	return pieces
}
