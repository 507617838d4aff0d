package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/taxpj/backend/internal/domain"
)

// GeminiParser is the StatementParser backed by the Gemini API.
type GeminiParser struct {
	model  string
	apiKey string
}

// NewGeminiParser creates a parser for the given model. An empty model falls
// back to DefaultModelName; an empty apiKey defers to the SDK's environment
// lookup.
func NewGeminiParser(model, apiKey string) *GeminiParser {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiParser{model: model, apiKey: apiKey}
}

// extractionSchema constrains the model to the exact response shape the
// transform layer expects.
func extractionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isValidLayout": {Type: genai.TypeBoolean},
			"detectedBank":  {Type: genai.TypeString},
			"transactions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date":         {Type: genai.TypeString},
						"description":  {Type: genai.TypeString},
						"amount":       {Type: genai.TypeNumber},
						"yield":        {Type: genai.TypeNumber},
						"irrfRetained": {Type: genai.TypeNumber},
						"iof":          {Type: genai.TypeNumber},
						"entryType":    {Type: genai.TypeString},
					},
					Required: []string{"date", "amount", "entryType"},
				},
			},
		},
		Required: []string{"isValidLayout", "transactions"},
	}
}

// ParseStatement sends the document inline to Gemini and returns the parsed
// JSON output. Network and decoding failures come back as UpstreamError so
// the import boundary can surface them verbatim.
func (p *GeminiParser) ParseStatement(ctx context.Context, doc Document, layout domain.LayoutType) (map[string]interface{}, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, domain.Upstream("ParseStatement: create genai client", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildExtractionPrompt(layout)},
				{
					InlineData: &genai.Blob{
						MIMEType: sniffMIMEType(doc),
						Data:     doc.Data,
					},
				},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema(),
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, domain.Upstream("ParseStatement: generate content", err)
	}

	rawText := strings.TrimSpace(resp.Text())
	if rawText == "" {
		return nil, domain.Upstream("ParseStatement", fmt.Errorf("a IA não conseguiu ler os dados do arquivo"))
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &parsed); err != nil {
		return nil, domain.Upstream("ParseStatement: unmarshal JSON", err)
	}

	return parsed, nil
}

// sniffMIMEType falls back to a sniff of the document bytes when the upload
// carried no MIME type: PDFs are recognized by their magic header, anything
// else is treated as an image.
func sniffMIMEType(doc Document) string {
	if doc.MIMEType != "" {
		return doc.MIMEType
	}
	if bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		return "application/pdf"
	}
	return defaultMIMEImage
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the response-schema instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

var _ StatementParser = (*GeminiParser)(nil)
