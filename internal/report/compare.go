package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/formscan/formscan/internal/model"
)

// FieldChange is one field whose value differs between two analyses.
type FieldChange struct {
	// Key is the field's key text.
	Key string `json:"key"`

	// Before is the value in the older analysis.
	Before string `json:"before"`

	// After is the value in the newer analysis.
	After string `json:"after"`
}

// Diff is the field-level difference between two analyses of the same
// document.
type Diff struct {
	// Document is the compared document path.
	Document string `json:"document"`

	// Added lists keys present only in the newer analysis, sorted.
	Added []string `json:"added,omitempty"`

	// Removed lists keys present only in the older analysis, sorted.
	Removed []string `json:"removed,omitempty"`

	// Changed lists fields whose values differ, sorted by key.
	Changed []FieldChange `json:"changed,omitempty"`
}

// Empty reports whether the two analyses extracted identical fields.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs the extracted fields of two analyses of the same
// document. Keys are compared in their NFC-normalized form, so encoding
// differences between runs do not show up as changes.
func Compare(older, newer *model.AnalysisReport) *Diff {
	diff := &Diff{Document: newer.Document}

	var oldFields, newFields map[string]string
	if older.Result != nil {
		oldFields = older.Result.Fields()
	}
	if newer.Result != nil {
		newFields = newer.Result.Fields()
	}

	for key, newValue := range newFields {
		oldValue, ok := oldFields[key]
		switch {
		case !ok:
			diff.Added = append(diff.Added, key)
		case oldValue != newValue:
			diff.Changed = append(diff.Changed, FieldChange{Key: key, Before: oldValue, After: newValue})
		}
	}
	for key := range oldFields {
		if _, ok := newFields[key]; !ok {
			diff.Removed = append(diff.Removed, key)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool { return diff.Changed[i].Key < diff.Changed[j].Key })

	return diff
}

// WriteText renders the diff as plain terminal text.
func (d *Diff) WriteText(w io.Writer) (int, error) {
	var total int

	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += n
		return err
	}

	if err := write("Document: %s\n", d.Document); err != nil {
		return total, err
	}
	if d.Empty() {
		err := write("No field changes between the two analyses.\n")
		return total, err
	}

	for _, key := range d.Added {
		if err := write("+ %s\n", key); err != nil {
			return total, err
		}
	}
	for _, key := range d.Removed {
		if err := write("- %s\n", key); err != nil {
			return total, err
		}
	}
	for _, change := range d.Changed {
		if err := write("~ %s: %q -> %q\n", change.Key, change.Before, change.After); err != nil {
			return total, err
		}
	}

	if err := write("%d added, %d removed, %d changed\n", len(d.Added), len(d.Removed), len(d.Changed)); err != nil {
		return total, err
	}
	return total, nil
}
