package formapi

import (
	"time"

	"github.com/formscan/formscan/internal/model"
)

// trainRequestWire is the body of a training request.
type trainRequestWire struct {
	Source string `json:"source"`
}

// modelInfoWire is one model record as the service returns it.
type modelInfoWire struct {
	ModelID             string `json:"modelId"`
	Status              string `json:"status"`
	CreatedDateTime     string `json:"createdDateTime"`
	LastUpdatedDateTime string `json:"lastUpdatedDateTime"`
}

// trainingDocumentWire is one training document's per-file result.
type trainingDocumentWire struct {
	DocumentName string   `json:"documentName"`
	Pages        int      `json:"pages"`
	Status       string   `json:"status"`
	Errors       []string `json:"errors"`
}

// trainResultWire is the response of a model status query.
type trainResultWire struct {
	ModelID             string                 `json:"modelId"`
	Status              string                 `json:"status"`
	CreatedDateTime     string                 `json:"createdDateTime"`
	LastUpdatedDateTime string                 `json:"lastUpdatedDateTime"`
	TrainingDocuments   []trainingDocumentWire `json:"trainingDocuments"`
	Errors              []struct {
		ErrorMessage string `json:"errorMessage"`
	} `json:"errors"`
}

// keysWire is the response of the extracted-keys query.
type keysWire struct {
	Clusters map[string][]string `json:"clusters"`
}

// listModelsWire is the response of the model listing.
type listModelsWire struct {
	Summary struct {
		Count int `json:"count"`
		Limit int `json:"limit"`
	} `json:"modelsSummary"`
	Models []modelInfoWire `json:"models"`
}

// textWire wraps a recognized text fragment.
type textWire struct {
	Text string `json:"text"`
}

// keyValuePairWire is one extracted field.
type keyValuePairWire struct {
	Key        []textWire `json:"key"`
	Value      []textWire `json:"value"`
	Confidence float64    `json:"confidence"`
}

// columnWire is one extracted table column.
type columnWire struct {
	Header  []textWire   `json:"header"`
	Entries [][]textWire `json:"entries"`
}

// tableWire is one extracted table.
type tableWire struct {
	ID      string       `json:"id"`
	Columns []columnWire `json:"columns"`
}

// pageWire is one analyzed page.
type pageWire struct {
	Number        int                `json:"number"`
	ClusterID     *int               `json:"clusterId"`
	KeyValuePairs []keyValuePairWire `json:"keyValuePairs"`
	Tables        []tableWire        `json:"tables"`
}

// analyzeResultWire is the response of a document analysis.
type analyzeResultWire struct {
	Status string     `json:"status"`
	Pages  []pageWire `json:"pages"`
	Errors []struct {
		ErrorMessage string `json:"errorMessage"`
	} `json:"errors"`
}

// parseWireTime parses the service's RFC 3339 timestamps. A missing or
// malformed timestamp yields the zero time rather than an error; the
// demonstration flow has no use for failing a whole call over it.
func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// toModelInfo converts a wire model record into the domain type.
func (w modelInfoWire) toModelInfo() (model.ModelInfo, error) {
	id, err := model.NewModelID(w.ModelID)
	if err != nil {
		return model.ModelInfo{}, err
	}
	return model.ModelInfo{
		ModelID:   id,
		Status:    model.ParseModelStatus(w.Status),
		CreatedAt: parseWireTime(w.CreatedDateTime),
		UpdatedAt: parseWireTime(w.LastUpdatedDateTime),
	}, nil
}

// toTrainResult converts a wire training record into the domain type.
func (w trainResultWire) toTrainResult() (*model.TrainResult, error) {
	id, err := model.NewModelID(w.ModelID)
	if err != nil {
		return nil, err
	}

	docs := make([]model.TrainingDocument, 0, len(w.TrainingDocuments))
	for _, d := range w.TrainingDocuments {
		docs = append(docs, model.TrainingDocument{
			Name:   d.DocumentName,
			Pages:  d.Pages,
			Status: d.Status,
			Errors: append([]string(nil), d.Errors...),
		})
	}

	errs := make([]string, 0, len(w.Errors))
	for _, e := range w.Errors {
		errs = append(errs, e.ErrorMessage)
	}

	return &model.TrainResult{
		ModelInfo: model.ModelInfo{
			ModelID:   id,
			Status:    model.ParseModelStatus(w.Status),
			CreatedAt: parseWireTime(w.CreatedDateTime),
			UpdatedAt: parseWireTime(w.LastUpdatedDateTime),
		},
		TrainingDocuments: docs,
		Errors:            errs,
	}, nil
}

// joinText concatenates the text fragments of one field side.
func joinText(fragments []textWire) string {
	switch len(fragments) {
	case 0:
		return ""
	case 1:
		return fragments[0].Text
	}
	out := fragments[0].Text
	for _, f := range fragments[1:] {
		if f.Text == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += f.Text
	}
	return out
}

// toAnalyzeResult converts a wire analysis into the domain type.
func (w analyzeResultWire) toAnalyzeResult() *model.AnalyzeResult {
	pages := make([]model.Page, 0, len(w.Pages))
	for _, p := range w.Pages {
		pairs := make([]model.KeyValuePair, 0, len(p.KeyValuePairs))
		for _, kv := range p.KeyValuePairs {
			pairs = append(pairs, model.KeyValuePair{
				Key:        joinText(kv.Key),
				Value:      joinText(kv.Value),
				Confidence: kv.Confidence,
			})
		}

		tables := make([]model.Table, 0, len(p.Tables))
		for _, t := range p.Tables {
			cols := make([]model.TableColumn, 0, len(t.Columns))
			for _, c := range t.Columns {
				entries := make([]string, 0, len(c.Entries))
				for _, e := range c.Entries {
					entries = append(entries, joinText(e))
				}
				cols = append(cols, model.TableColumn{
					Header:  joinText(c.Header),
					Entries: entries,
				})
			}
			tables = append(tables, model.Table{ID: t.ID, Columns: cols})
		}

		clusterID := -1
		if p.ClusterID != nil {
			clusterID = *p.ClusterID
		}
		pages = append(pages, model.Page{
			Number:        p.Number,
			ClusterID:     clusterID,
			KeyValuePairs: pairs,
			Tables:        tables,
		})
	}

	errs := make([]string, 0, len(w.Errors))
	for _, e := range w.Errors {
		errs = append(errs, e.ErrorMessage)
	}

	return &model.AnalyzeResult{
		Status: w.Status,
		Pages:  pages,
		Errors: errs,
	}
}
