package extract

import (
	"errors"
	"testing"

	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/pkg/logger_i"
)

func testExtractor(primary, secondary strategy) *Extractor {
	return &Extractor{
		primary:   primary,
		secondary: secondary,
		logger:    logger_i.NewLogger("test extractor"),
	}
}

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		primary        strategy
		secondary      strategy
		expectedText   string
		expectedReason string
	}{
		{
			name:         "Primary_Succeeds",
			primary:      func(string) (string, error) { return "hello world", nil },
			secondary:    func(string) (string, error) { t.Error("secondary should not run"); return "", nil },
			expectedText: "hello world",
		},
		{
			name:         "Primary_Fails_Secondary_Succeeds",
			primary:      func(string) (string, error) { return "", errors.New("bad xref table") },
			secondary:    func(string) (string, error) { return "recovered text", nil },
			expectedText: "recovered text",
		},
		{
			name:         "Primary_Empty_Secondary_Succeeds",
			primary:      func(string) (string, error) { return "   \n", nil },
			secondary:    func(string) (string, error) { return "real content", nil },
			expectedText: "real content",
		},
		{
			name:         "Empty_PDF_Is_Not_An_Error",
			primary:      func(string) (string, error) { return "", nil },
			secondary:    func(string) (string, error) { return "", nil },
			expectedText: "",
		},
		{
			name:         "Primary_Empty_Secondary_Fails_Trusts_Primary",
			primary:      func(string) (string, error) { return "", nil },
			secondary:    func(string) (string, error) { return "", errors.New("mupdf cannot open") },
			expectedText: "",
		},
		{
			name:           "Both_Fail",
			primary:        func(string) (string, error) { return "", errors.New("bad stream") },
			secondary:      func(string) (string, error) { return "", errors.New("mupdf cannot open") },
			expectedReason: ragerror.ReasonCorrupt,
		},
		{
			name:           "Protected_PDF",
			primary:        func(string) (string, error) { return "", errors.New("file is encrypted") },
			secondary:      func(string) (string, error) { t.Error("secondary should not run for protected files"); return "", nil },
			expectedReason: ragerror.ReasonProtected,
		},
		{
			name:           "Protected_Detected_By_Secondary",
			primary:        func(string) (string, error) { return "", errors.New("bad stream") },
			secondary:      func(string) (string, error) { return "", errors.New("cannot authenticate password") },
			expectedReason: ragerror.ReasonProtected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testExtractor(tt.primary, tt.secondary)
			text, err := e.Extract("dummy.pdf")

			if tt.expectedReason != "" {
				var exErr *ragerror.ExtractionError
				if !errors.As(err, &exErr) {
					t.Fatalf("Expected ExtractionError, got %v", err)
				}
				if exErr.Reason != tt.expectedReason {
					t.Errorf("Reason got %s, want %s", exErr.Reason, tt.expectedReason)
				}
				return
			}

			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if text != tt.expectedText {
				t.Errorf("Text got %q, want %q", text, tt.expectedText)
			}
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := testExtractor(
		func(string) (string, error) { return "stable output", nil },
		func(string) (string, error) { return "", nil },
	)
	first, _ := e.Extract("a.pdf")
	second, _ := e.Extract("a.pdf")
	if first != second {
		t.Errorf("Extraction is not deterministic: %q vs %q", first, second)
	}
}
