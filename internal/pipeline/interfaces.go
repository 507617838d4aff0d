package pipeline

import (
	"context"

	"github.com/taxpj/backend/internal/domain"
)

// StatementParser extracts raw structured output from one statement
// document. The single implementation calls Gemini; tests substitute mocks.
type StatementParser interface {
	// ParseStatement sends the document to the model and returns its parsed
	// JSON output as a generic map (keys: isValidLayout, detectedBank,
	// transactions).
	ParseStatement(ctx context.Context, doc Document, layout domain.LayoutType) (map[string]interface{}, error)
}

// Document is one uploaded statement file.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}
