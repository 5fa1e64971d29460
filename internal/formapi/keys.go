package formapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/formscan/formscan/internal/model"
)

// GetExtractedKeys fetches the per-cluster keys the model learned during
// training. Key text is normalized to NFC so that visually identical
// keys compare equal regardless of how the service encoded them.
func (c *Client) GetExtractedKeys(ctx context.Context, id model.ModelID) (model.KeyClusters, error) {
	if id.IsZero() {
		return nil, model.ErrEmptyModelID
	}

	raw, err := c.do(ctx, "get_keys", http.MethodGet,
		[]string{"custom", "models", id.String(), "keys"}, nil, "")
	if err != nil {
		return nil, err
	}

	if err := validateResponse("keys.json", keysSchema, raw); err != nil {
		return nil, err
	}
	var wire keysWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	return model.KeyClusters(wire.Clusters).Normalized(), nil
}
