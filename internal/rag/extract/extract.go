package extract

import (
	"strings"

	"github.com/synthiquery/api/internal/domain/ragerror"
	"github.com/synthiquery/api/pkg/logger_i"
)

// strategy turns a PDF on disk into plain text.
type strategy func(path string) (string, error)

// Extractor runs a primary parsing strategy and falls back to a second,
// independent parser when the primary fails or yields nothing. The whole
// thing is a pure transform: no state, no side effects.
type Extractor struct {
	primary   strategy
	secondary strategy
	logger    *logger_i.Logger
}

func New() *Extractor {
	return &Extractor{
		primary:   extractWithDslipak,
		secondary: extractWithFitz,
		logger:    logger_i.NewLogger("Extractor"),
	}
}

// Extract returns the document text, or a *ragerror.ExtractionError when
// both strategies fail. An empty PDF yields empty text, not an error.
// Password-protected files fail immediately with reason "protected";
// swapping parsers does not fix a missing password.
func (e *Extractor) Extract(path string) (string, error) {
	text, err := e.primary(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if err != nil {
		if isProtected(err) {
			e.logger.Error("Document is password protected", "path", path)
			return "", &ragerror.ExtractionError{Reason: ragerror.ReasonProtected, Err: err}
		}
		e.logger.Warn("Primary extraction failed, trying secondary parser", "error", err)
	} else {
		e.logger.Debug("Primary extraction returned no text, trying secondary parser")
	}

	secondText, secondErr := e.secondary(path)
	if secondErr != nil {
		if isProtected(secondErr) {
			return "", &ragerror.ExtractionError{Reason: ragerror.ReasonProtected, Err: secondErr}
		}
		if err != nil {
			// both parsers rejected the stream
			return "", &ragerror.ExtractionError{Reason: ragerror.ReasonCorrupt, Err: secondErr}
		}
		// primary parsed the file as empty and the secondary choked on it;
		// trust the successful parse
		return "", nil
	}
	return secondText, nil
}

func isProtected(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "password")
}
