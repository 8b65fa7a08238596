package dataset

// Collator batches materialized instances into a model-ready form, padding
// and stacking as the consumer requires. Collation itself lives outside
// this package; a dataset only carries the collators attached to it so
// downstream batching code can find them.
type Collator interface {
	Collate(batch []Instance) (any, error)
}

// SetCollator replaces every attached collator with the given one
func (ds *Dataset) SetCollator(c Collator) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.collators = []Collator{c}
}

// AddCollator appends a collator to the attached chain
func (ds *Dataset) AddCollator(c Collator) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.collators = append(ds.collators, c)
}

// Collators returns the attached collator chain in attachment order
func (ds *Dataset) Collators() []Collator {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := make([]Collator, len(ds.collators))
	copy(out, ds.collators)
	return out
}
