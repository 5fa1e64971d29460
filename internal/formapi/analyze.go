package formapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/formscan/formscan/internal/model"
)

// analyzeContentTypes is the set of document types the service accepts.
var analyzeContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
}

// SupportedContentType reports whether the service accepts documents of
// the given media type.
func SupportedContentType(contentType string) bool {
	return analyzeContentTypes[contentType]
}

// Analyze runs one document through a trained model and returns the
// extracted fields and tables. The document is sent as raw bytes with
// contentType, which must be one of the service's accepted types.
func (c *Client) Analyze(ctx context.Context, id model.ModelID, document []byte, contentType string) (*model.AnalyzeResult, error) {
	if id.IsZero() {
		return nil, model.ErrEmptyModelID
	}
	if len(document) == 0 {
		return nil, ErrEmptyDocument
	}
	if !SupportedContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	raw, err := c.do(ctx, "analyze", http.MethodPost,
		[]string{"custom", "models", id.String(), "analyze"},
		bytes.NewReader(document), contentType)
	if err != nil {
		return nil, err
	}

	if err := validateResponse("analyze.json", analyzeResultSchema, raw); err != nil {
		return nil, err
	}
	var wire analyzeResultWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return wire.toAnalyzeResult(), nil
}
