package formapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/formscan/formscan/internal/model"
)

// Train asks the service to train a new custom model from the labeled
// sample documents under sourceURL, a signed container URL. The URL is
// validated before any network traffic. The returned result usually has
// status creating; poll with GetModel or use WaitForTraining.
func (c *Client) Train(ctx context.Context, sourceURL string) (*model.TrainResult, error) {
	if _, err := parseHTTPURL(sourceURL); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrainingURL, sourceURL)
	}

	body, err := json.Marshal(trainRequestWire{Source: sourceURL})
	if err != nil {
		return nil, err
	}

	raw, err := c.do(ctx, "train", http.MethodPost,
		[]string{"custom", "models"}, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}

	if err := validateResponse("train.json", trainResultSchema, raw); err != nil {
		return nil, err
	}
	var wire trainResultWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return wire.toTrainResult()
}

// GetModel fetches the training status of one model.
func (c *Client) GetModel(ctx context.Context, id model.ModelID) (*model.TrainResult, error) {
	if id.IsZero() {
		return nil, model.ErrEmptyModelID
	}

	raw, err := c.do(ctx, "get_model", http.MethodGet,
		[]string{"custom", "models", id.String()}, nil, "")
	if err != nil {
		return nil, err
	}

	if err := validateResponse("train.json", trainResultSchema, raw); err != nil {
		return nil, err
	}
	var wire trainResultWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	return wire.toTrainResult()
}

// ErrTrainingTimeout is returned by WaitForTraining when the model did
// not reach a terminal status before the deadline.
var ErrTrainingTimeout = errors.New("formapi: training did not finish in time")

// WaitForTraining polls GetModel every interval until the model reaches
// a terminal status or timeout elapses. The last observed result is
// returned alongside ErrTrainingTimeout on timeout, nil when the poll
// never completed once.
func (c *Client) WaitForTraining(ctx context.Context, id model.ModelID, interval, timeout time.Duration) (*model.TrainResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *model.TrainResult
	for {
		result, err := c.GetModel(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return last, fmt.Errorf("%w: %s", ErrTrainingTimeout, id)
			}
			return last, err
		}
		last = result

		c.logger.Info("formapi.training_status",
			"model_id", id.String(),
			"status", result.ModelInfo.Status.String(),
		)
		if result.ModelInfo.Status.IsTerminal() {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%w: %s", ErrTrainingTimeout, id)
		case <-ticker.C:
		}
	}
}
