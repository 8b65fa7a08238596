// Package dataset provides a columnar, row-addressable container for
// machine-learning training examples, together with the apply engine that
// transforms it in parallel.
//
// Data is stored column-wise: each field name maps to one ordered sequence
// of values, and all sequences share the same length. The row count is never
// stored separately; it is derived from any one column, and an empty dataset
// has zero rows. Rows are materialized on demand as Instance copies.
package dataset

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/ajitpratap0/corpus/pkg/errors"
)

// Dataset is a columnar container of training examples. All exported
// methods are safe for concurrent readers; mutation is reserved for a
// single orchestrating goroutine.
type Dataset struct {
	mu        sync.RWMutex
	columns   map[string]*column
	order     []string // field insertion order
	collators []Collator
}

// New creates an empty dataset
func New() *Dataset {
	return &Dataset{
		columns: make(map[string]*column),
	}
}

// FromColumns creates a dataset from a mapping of field name to value
// sequence. All sequences must have identical length. Fields are inserted
// in alphabetical order, since the input mapping carries none.
func FromColumns(cols map[string][]any) (*Dataset, error) {
	ds := New()

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	length := -1
	for _, name := range names {
		if length >= 0 && len(cols[name]) != length {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"columns must all be same length: field %q has %d values, want %d",
				name, len(cols[name]), length)
		}
		length = len(cols[name])
	}

	for _, name := range names {
		ds.columns[name] = newColumn(name, cols[name])
		ds.order = append(ds.order, name)
	}
	return ds, nil
}

// FromInstances creates a dataset from a sequence of instances, all of
// which must share the same field set
func FromInstances(instances []Instance) (*Dataset, error) {
	ds := New()
	for i, ins := range instances {
		if err := ds.Append(ins); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSchema, "appending instance").WithRow(i)
		}
	}
	return ds, nil
}

// Len returns the number of rows. The count is derived from the first
// column; an empty dataset has zero rows.
func (ds *Dataset) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.lenLocked()
}

func (ds *Dataset) lenLocked() int {
	if len(ds.order) == 0 {
		return 0
	}
	return ds.columns[ds.order[0]].len()
}

// Append adds one instance as a new row. An append into an empty dataset
// seeds one single-value column per field (in alphabetical field order);
// otherwise the instance's field set must exactly match the existing
// columns.
func (ds *Dataset) Append(ins Instance) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if len(ds.order) == 0 {
		for _, name := range ins.Fields() {
			ds.columns[name] = newColumn(name, []any{ins[name]})
			ds.order = append(ds.order, name)
		}
		return nil
	}

	if len(ins) != len(ds.columns) {
		return errors.Newf(errors.ErrorTypeSchema,
			"dataset has %d fields but instance has %d", len(ds.columns), len(ins))
	}
	for name := range ins {
		if _, ok := ds.columns[name]; !ok {
			return errors.Newf(errors.ErrorTypeSchema,
				"instance field %q does not exist in dataset", name)
		}
	}

	for _, name := range ds.order {
		ds.columns[name].append(ins[name])
	}
	return nil
}

// AddField adds a column under the given name, or overwrites an existing
// one in place. Unless the dataset is empty, the value sequence must match
// the current row count.
func (ds *Dataset) AddField(name string, values []any) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if n := ds.lenLocked(); len(ds.order) != 0 && len(values) != n {
		return errors.Newf(errors.ErrorTypeSchema,
			"field %q must have the same size as dataset: dataset size %d != field size %d",
			name, n, len(values))
	}

	if _, exists := ds.columns[name]; !exists {
		ds.order = append(ds.order, name)
	}
	ds.columns[name] = newColumn(name, values)
	return nil
}

// DeleteField removes the named column
func (ds *Dataset) DeleteField(name string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.columns[name]; !ok {
		return errors.Newf(errors.ErrorTypeNotFound, "field %q not found in dataset", name)
	}
	delete(ds.columns, name)
	for i, n := range ds.order {
		if n == name {
			ds.order = append(ds.order[:i], ds.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteInstance removes the row at the given index. Deleting the last
// remaining row clears the dataset entirely, columns included.
func (ds *Dataset) DeleteInstance(index int) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	n := ds.lenLocked()
	if index < 0 || index >= n {
		return errors.Newf(errors.ErrorTypeRange,
			"deletion index %d out of range for dataset with %d rows", index, n)
	}
	if n == 1 {
		ds.columns = make(map[string]*column)
		ds.order = nil
		return nil
	}
	for _, name := range ds.order {
		ds.columns[name].pop(index)
	}
	return nil
}

// RenameField renames a column, keeping its content and position. Renaming
// onto an existing field name replaces that field, leaving a single column
// under the new name.
func (ds *Dataset) RenameField(name, newName string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	col, ok := ds.columns[name]
	if !ok {
		return errors.Newf(errors.ErrorTypeNotFound, "field %q not found in dataset", name)
	}
	if name == newName {
		return nil
	}
	if _, exists := ds.columns[newName]; exists {
		for i, n := range ds.order {
			if n == newName {
				ds.order = append(ds.order[:i], ds.order[i+1:]...)
				break
			}
		}
	}
	col.name = newName
	ds.columns[newName] = col
	delete(ds.columns, name)
	for i, n := range ds.order {
		if n == name {
			ds.order[i] = newName
			break
		}
	}
	return nil
}

// CopyField copies a column's content under a new name. The backing
// sequence is copied; the values themselves are shared.
func (ds *Dataset) CopyField(name, newName string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	col, ok := ds.columns[name]
	if !ok {
		return errors.Newf(errors.ErrorTypeNotFound, "field %q not found in dataset", name)
	}
	if _, exists := ds.columns[newName]; !exists {
		ds.order = append(ds.order, newName)
	}
	ds.columns[newName] = col.clone(newName)
	return nil
}

// HasField reports whether the named column exists
func (ds *Dataset) HasField(name string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.columns[name]
	return ok
}

// Field returns a copy of the named column's values
func (ds *Dataset) Field(name string) ([]any, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	col, ok := ds.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "field %q not found in dataset", name)
	}
	out := make([]any, col.len())
	copy(out, col.values)
	return out, nil
}

// FieldNames returns all column names in alphabetical order
func (ds *Dataset) FieldNames() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	names := make([]string, len(ds.order))
	copy(names, ds.order)
	sort.Strings(names)
	return names
}

// Row materializes the row at the given index as an instance copy
func (ds *Dataset) Row(index int) (Instance, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.rowLocked(index)
}

func (ds *Dataset) rowLocked(index int) (Instance, error) {
	if n := ds.lenLocked(); index < 0 || index >= n {
		return nil, errors.Newf(errors.ErrorTypeNotFound,
			"row index %d out of range for dataset with %d rows", index, n).WithRow(index)
	}
	ins := make(Instance, len(ds.order))
	for _, name := range ds.order {
		ins[name] = ds.columns[name].get(index)
	}
	return ins, nil
}

// Slice returns a new, independent dataset holding the rows in the
// half-open range [start, end). The copy shares no column storage with the
// receiver.
func (ds *Dataset) Slice(start, end int) (*Dataset, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	n := ds.lenLocked()
	if start < 0 || start > n {
		return nil, errors.Newf(errors.ErrorTypeRange,
			"slice start %d out of range 0-%d", start, n)
	}
	if end < start || end > n {
		return nil, errors.Newf(errors.ErrorTypeRange,
			"slice end %d out of range %d-%d", end, start, n)
	}

	out := New()
	for _, name := range ds.order {
		out.columns[name] = ds.columns[name].slice(start, end)
		out.order = append(out.order, name)
	}
	return out, nil
}

// Concat appends all rows of other to the receiver. Every field of the
// receiver must be present in other, either under the same name or through
// fieldMapping (other's name to the receiver's name). Extra fields in
// other are ignored. All fields are resolved against other before anything
// is written, so a failed concat leaves the receiver untouched.
func (ds *Dataset) Concat(other *Dataset, fieldMapping map[string]string) error {
	reverse := make(map[string]string, len(fieldMapping))
	for from, to := range fieldMapping {
		reverse[to] = from
	}

	names := ds.FieldNames()
	incoming := make(map[string][]any, len(names))
	for _, name := range names {
		src := name
		if from, ok := reverse[name]; ok {
			src = from
		}
		values, err := other.Field(src)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeSchema,
				"field "+name+" is not provided by the other dataset")
		}
		incoming[name] = values
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, name := range names {
		ds.columns[name].values = append(ds.columns[name].values, incoming[name]...)
	}
	return nil
}

// Split partitions the dataset into two new datasets. The first holds
// ratio of the rows, the second the remainder. With shuffle disabled the
// first dataset holds the leading rows in order; with shuffle enabled rows
// are assigned by random permutation.
func (ds *Dataset) Split(ratio float64, shuffle bool) (*Dataset, *Dataset, error) {
	n := ds.Len()
	if n < 2 {
		return nil, nil, errors.Newf(errors.ErrorTypeRange,
			"dataset with %d rows cannot be split", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, errors.Newf(errors.ErrorTypeRange,
			"split ratio %v out of range (0, 1)", ratio)
	}

	split := int(ratio * float64(n))
	if split == 0 || split == n {
		return nil, nil, errors.Newf(errors.ErrorTypeRange,
			"split ratio %v produces an empty partition for %d rows", ratio, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rand.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	first, err := ds.take(indices[:split])
	if err != nil {
		return nil, nil, err
	}
	second, err := ds.take(indices[split:])
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

// take builds a new dataset from the rows at the given indices, in order
func (ds *Dataset) take(indices []int) (*Dataset, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := New()
	for _, name := range ds.order {
		values := make([]any, 0, len(indices))
		for _, i := range indices {
			values = append(values, ds.columns[name].get(i))
		}
		out.columns[name] = newColumn(name, values)
		out.order = append(out.order, name)
	}
	return out, nil
}

// Drop removes every row for which pred returns true. With inPlace set the
// receiver is mutated and returned; otherwise a new dataset is built and
// the receiver is left untouched.
func (ds *Dataset) Drop(pred func(Instance) bool, inPlace bool) (*Dataset, error) {
	n := ds.Len()
	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ins, err := ds.Row(i)
		if err != nil {
			return nil, err
		}
		if !pred(ins) {
			kept = append(kept, i)
		}
	}

	if !inPlace {
		return ds.take(kept)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, name := range ds.order {
		ds.columns[name].keep(kept)
	}
	return ds, nil
}
