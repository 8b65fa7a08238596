package dataset

// column is one named, ordered sequence of values. Every column in a
// dataset holds exactly one value per row, and the dataset owns the backing
// slice exclusively: values enter and leave only through the dataset's
// column-level API.
type column struct {
	name   string
	values []any
}

// newColumn creates a column owning a copy of the given values
func newColumn(name string, values []any) *column {
	owned := make([]any, len(values))
	copy(owned, values)
	return &column{name: name, values: owned}
}

func (c *column) len() int {
	return len(c.values)
}

func (c *column) get(i int) any {
	return c.values[i]
}

func (c *column) append(v any) {
	c.values = append(c.values, v)
}

// pop removes and returns the value at index i, shifting later rows down
func (c *column) pop(i int) any {
	v := c.values[i]
	c.values = append(c.values[:i], c.values[i+1:]...)
	return v
}

// slice returns an independent copy of the half-open range [start, end)
func (c *column) slice(start, end int) *column {
	return newColumn(c.name, c.values[start:end])
}

// clone returns an independent copy of the whole column
func (c *column) clone(name string) *column {
	return newColumn(name, c.values)
}

// keep retains only the rows whose indices appear in order in idx
func (c *column) keep(idx []int) {
	kept := make([]any, 0, len(idx))
	for _, i := range idx {
		kept = append(kept, c.values[i])
	}
	c.values = kept
}
