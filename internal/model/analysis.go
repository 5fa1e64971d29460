package model

import "golang.org/x/text/unicode/norm"

// KeyValuePair is one extracted key/value text pair on a page.
type KeyValuePair struct {
	// Key is the extracted key text (e.g. "Invoice No:").
	Key string `json:"key"`

	// Value is the extracted value text.
	Value string `json:"value"`

	// Confidence is the service's confidence in the pair, 0..1.
	Confidence float64 `json:"confidence"`
}

// TableColumn is one column of an extracted table.
type TableColumn struct {
	// Header is the column header text.
	Header string `json:"header"`

	// Entries are the cell texts under the header, top to bottom.
	Entries []string `json:"entries"`
}

// Table is a table the service detected on a page.
type Table struct {
	// ID is the service-assigned table identifier.
	ID string `json:"id"`

	// Columns holds the table content column by column.
	Columns []TableColumn `json:"columns"`
}

// Rows returns the number of data rows in the table, which is the
// length of the longest column.
func (t Table) Rows() int {
	rows := 0
	for _, c := range t.Columns {
		if len(c.Entries) > rows {
			rows = len(c.Entries)
		}
	}
	return rows
}

// Page is the analysis result for a single document page.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// ClusterID is the key cluster the page was matched against,
	// or -1 if the service did not assign one.
	ClusterID int `json:"cluster_id"`

	// KeyValuePairs are the extracted fields on this page.
	KeyValuePairs []KeyValuePair `json:"key_value_pairs,omitempty"`

	// Tables are the tables detected on this page.
	Tables []Table `json:"tables,omitempty"`
}

// AnalyzeResult is the result of analyzing one document with a model.
type AnalyzeResult struct {
	// Status is the service's overall status for the request ("success" etc.).
	Status string `json:"status"`

	// Pages holds per-page extraction results in page order.
	Pages []Page `json:"pages"`

	// Errors holds page-level error messages reported by the service.
	Errors []string `json:"errors,omitempty"`
}

// FieldCount returns the total number of extracted key/value pairs.
func (r *AnalyzeResult) FieldCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.KeyValuePairs)
	}
	return n
}

// TableCount returns the total number of detected tables.
func (r *AnalyzeResult) TableCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Tables)
	}
	return n
}

// Fields returns all key/value pairs across pages, keyed by NFC-normalized
// key text. Later pages win on duplicate keys.
func (r *AnalyzeResult) Fields() map[string]string {
	fields := make(map[string]string, r.FieldCount())
	for _, p := range r.Pages {
		for _, kv := range p.KeyValuePairs {
			fields[norm.NFC.String(kv.Key)] = kv.Value
		}
	}
	return fields
}
