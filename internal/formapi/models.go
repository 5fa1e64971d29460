package formapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/formscan/formscan/internal/model"
)

// ListModels fetches all custom models in the account along with the
// account summary.
func (c *Client) ListModels(ctx context.Context) (*model.ModelList, error) {
	raw, err := c.do(ctx, "list_models", http.MethodGet,
		[]string{"custom", "models"}, nil, "")
	if err != nil {
		return nil, err
	}

	if err := validateResponse("list_models.json", listModelsSchema, raw); err != nil {
		return nil, err
	}
	var wire listModelsWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}

	models := make([]model.ModelInfo, 0, len(wire.Models))
	for _, m := range wire.Models {
		info, err := m.toModelInfo()
		if err != nil {
			c.logger.Warn("formapi.skip_malformed_model", "model_id", m.ModelID, "error", err)
			continue
		}
		models = append(models, info)
	}

	return &model.ModelList{
		Count:  wire.Summary.Count,
		Limit:  wire.Summary.Limit,
		Models: models,
	}, nil
}

// DeleteModel removes one custom model from the account.
func (c *Client) DeleteModel(ctx context.Context, id model.ModelID) error {
	if id.IsZero() {
		return model.ErrEmptyModelID
	}

	_, err := c.do(ctx, "delete_model", http.MethodDelete,
		[]string{"custom", "models", id.String()}, nil, "")
	return err
}
