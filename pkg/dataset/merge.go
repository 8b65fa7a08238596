package dataset

import (
	"sort"

	"github.com/ajitpratap0/corpus/pkg/errors"
)

// mergeRows transposes a flat, row-ordered list of multi-field results
// into a column-oriented mapping. The first row's key set is canonical:
// it seeds the output columns and every later row must produce exactly the
// same field set. The returned field names preserve a deterministic
// (alphabetical) order for write-back.
//
// On a mismatch the error carries the offending row's index; since the
// first row can never mismatch, that index is both the position among the
// remaining rows counted from one and the row's global index.
func mergeRows(rows []any) (map[string][]any, []string, error) {
	if len(rows) == 0 {
		return nil, nil, errors.New(errors.ErrorTypeInternal, "no results to merge")
	}

	first, ok := rows[0].(map[string]any)
	if !ok || first == nil {
		return nil, nil, errors.New(errors.ErrorTypeFieldMismatch,
			"multi-field result is not a field mapping").WithRow(0)
	}

	fields := make([]string, 0, len(first))
	merged := make(map[string][]any, len(first))
	for key, value := range first {
		fields = append(fields, key)
		merged[key] = append(make([]any, 0, len(rows)), value)
	}
	sort.Strings(fields)

	for i, row := range rows[1:] {
		out, ok := row.(map[string]any)
		if !ok {
			return nil, nil, errors.New(errors.ErrorTypeFieldMismatch,
				"multi-field result is not a field mapping").WithRow(i + 1)
		}
		if !sameFieldSet(merged, out) {
			return nil, nil, errors.New(errors.ErrorTypeFieldMismatch,
				"apply results have different fields").WithRow(i + 1)
		}
		for key, value := range out {
			merged[key] = append(merged[key], value)
		}
	}

	return merged, fields, nil
}

// sameFieldSet reports whether row carries exactly the canonical key set
func sameFieldSet(canonical map[string][]any, row map[string]any) bool {
	if len(row) != len(canonical) {
		return false
	}
	for key := range row {
		if _, ok := canonical[key]; !ok {
			return false
		}
	}
	return true
}
