package dataset

import (
	"reflect"
	"sort"

	"github.com/ajitpratap0/corpus/pkg/errors"
)

// Instance is one logical example: a mapping from field name to that row's
// value in each column. Instances handed out by a Dataset are materialized
// copies, so writing to one never reaches the store; mutation goes through
// the dataset's column-level API.
type Instance map[string]any

// Get returns the value of the named field
func (ins Instance) Get(name string) (any, bool) {
	v, ok := ins[name]
	return v, ok
}

// Has reports whether the instance carries the named field
func (ins Instance) Has(name string) bool {
	_, ok := ins[name]
	return ok
}

// Fields returns the instance's field names in alphabetical order
func (ins Instance) Fields() []string {
	names := make([]string, 0, len(ins))
	for name := range ins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// valueLen returns the length of a string, slice, array or map value
func valueLen(v any) (int, error) {
	if s, ok := v.(string); ok {
		return len(s), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	default:
		return 0, errors.Newf(errors.ErrorTypeUserFunction, "value of type %T has no length", v)
	}
}
