package dataset

import (
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/ajitpratap0/corpus/pkg/errors"
	"github.com/ajitpratap0/corpus/pkg/logger"
	"github.com/ajitpratap0/corpus/pkg/metrics"
	"github.com/ajitpratap0/corpus/pkg/progress"
)

// RowFunc transforms one whole row into a single result value
type RowFunc func(Instance) (any, error)

// ValueFunc transforms one field's value into a single result value
type ValueFunc func(any) (any, error)

// RowMapFunc transforms one whole row into a mapping of output-field name
// to value. Every row must produce the same field set.
type RowMapFunc func(Instance) (map[string]any, error)

// ValueMapFunc transforms one field's value into a mapping of output-field
// name to value. Every row must produce the same field set.
type ValueMapFunc func(any) (map[string]any, error)

// ApplyConfig configures a transform operation
type ApplyConfig struct {
	// Workers is the fan-out degree. 0 or 1 runs sequentially in the
	// calling goroutine; k > 1 partitions the rows into k shards, each
	// processed by its own worker over an independent copy of its rows.
	// A value larger than the row count is clamped to it.
	Workers int

	// TargetField, when set, stores the per-row results as a new or
	// overwritten column under this name. Used by Apply and ApplyField;
	// ignored by the multi-field variants.
	TargetField string

	// ModifyFields controls whether ApplyMany and ApplyFieldMany write
	// their merged output columns back into the dataset.
	ModifyFields bool

	// ShowProgress enables progress reporting through Sink
	ShowProgress bool

	// Description labels the progress task. Defaults to the operation name.
	Description string

	// Sink receives progress signals. Defaults to a log-backed sink when
	// ShowProgress is set.
	Sink progress.Sink
}

// DefaultApplyConfig returns the standard transform configuration:
// sequential execution, progress reporting on, multi-field write-back on.
func DefaultApplyConfig() ApplyConfig {
	return ApplyConfig{
		Workers:      0,
		ModifyFields: true,
		ShowProgress: true,
	}
}

// Apply runs fn over every row and returns the per-row results in input
// row order. When cfg.TargetField is set the results are also stored as a
// column under that name; the dataset is never touched on failure.
//
// Failures raised by fn abort the operation and surface with the global
// row index attached (see errors.RowIndex). This holds for every worker
// count: unlike implementations that report shard-relative positions in
// parallel mode, worker failures here are translated back to absolute row
// indices.
func (ds *Dataset) Apply(fn RowFunc, cfg ApplyConfig) ([]any, error) {
	results, err := ds.applyProcess("apply", "", func(ins Instance) (any, error) {
		return fn(ins)
	}, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.TargetField != "" {
		if err := ds.AddField(cfg.TargetField, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ApplyField runs fn over the named field of every row and returns the
// per-row results in input row order. Write-back follows Apply.
func (ds *Dataset) ApplyField(fn ValueFunc, field string, cfg ApplyConfig) ([]any, error) {
	if field == "" {
		return nil, errors.New(errors.ErrorTypeNotFound, "apply_field requires a field name")
	}
	results, err := ds.applyProcess("apply_field", field, func(ins Instance) (any, error) {
		return fn(ins[field])
	}, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.TargetField != "" {
		if err := ds.AddField(cfg.TargetField, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ApplyMany runs fn over every row, merges the per-row field mappings into
// columns (validating that every row produced the same field set) and,
// when cfg.ModifyFields is set, stores each merged column in the dataset.
// Nothing is written back unless every row succeeded.
func (ds *Dataset) ApplyMany(fn RowMapFunc, cfg ApplyConfig) (map[string][]any, error) {
	rows, err := ds.applyProcess("apply_many", "", func(ins Instance) (any, error) {
		return fn(ins)
	}, cfg)
	if err != nil {
		return nil, err
	}
	return ds.mergeAndStore(rows, cfg)
}

// ApplyFieldMany runs fn over the named field of every row and merges the
// results like ApplyMany.
func (ds *Dataset) ApplyFieldMany(fn ValueMapFunc, field string, cfg ApplyConfig) (map[string][]any, error) {
	if field == "" {
		return nil, errors.New(errors.ErrorTypeNotFound, "apply_field_many requires a field name")
	}
	rows, err := ds.applyProcess("apply_field_many", field, func(ins Instance) (any, error) {
		return fn(ins[field])
	}, cfg)
	if err != nil {
		return nil, err
	}
	return ds.mergeAndStore(rows, cfg)
}

// AddLenField computes the length of every value in field (strings,
// slices, arrays and maps) and stores it under newField.
func (ds *Dataset) AddLenField(field, newField string) error {
	cfg := DefaultApplyConfig()
	cfg.ShowProgress = false
	cfg.TargetField = newField
	_, err := ds.ApplyField(func(v any) (any, error) {
		return valueLen(v)
	}, field, cfg)
	return err
}

// mergeAndStore merges multi-field per-row results and optionally writes
// the merged columns back, in canonical field order, only on full success.
func (ds *Dataset) mergeAndStore(rows []any, cfg ApplyConfig) (map[string][]any, error) {
	merged, fields, err := mergeRows(rows)
	if err != nil {
		return nil, err
	}
	if cfg.ModifyFields {
		for _, name := range fields {
			if err := ds.AddField(name, merged[name]); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// applyProcess is the single entry point behind every transform operation.
// It validates preconditions, chooses the sequential or sharded path and
// returns one result per row, ordered by input row.
func (ds *Dataset) applyProcess(op, field string, call func(Instance) (any, error), cfg ApplyConfig) ([]any, error) {
	n := ds.Len()
	if n == 0 {
		return nil, errors.Newf(errors.ErrorTypeEmptyDataset, "empty dataset cannot use %s", op)
	}
	if field != "" && !ds.HasField(field) {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "field %q not found in dataset", field)
	}
	if cfg.Workers < 0 {
		return nil, errors.Newf(errors.ErrorTypeRange, "worker count must be >= 0, got %d", cfg.Workers)
	}

	collector := metrics.NewCollector(op)
	timer := collector.StartTimer()
	defer timer.ObserveDuration()

	desc := cfg.Description
	if desc == "" {
		desc = op
	}
	sink := cfg.Sink
	if !cfg.ShowProgress {
		sink = progress.Nop()
	} else if sink == nil {
		sink = progress.NewLogSink(logger.Get(), 10*time.Second)
	}

	var results []any
	var processed int64
	var err error
	if cfg.Workers <= 1 {
		results, processed, err = ds.applySingle(call, n, sink, desc)
	} else {
		results, processed, err = ds.applySharded(call, n, cfg.Workers, sink, desc, collector)
	}

	if err != nil {
		// Only the rows that actually ran before the abort count as failed.
		collector.RecordRows(float64(processed), metrics.StatusFailure)
		return nil, err
	}
	collector.RecordRows(float64(n), metrics.StatusSuccess)
	return results, nil
}

// applySingle runs call over every row in the calling goroutine. The second
// return is the number of rows that completed.
func (ds *Dataset) applySingle(call func(Instance) (any, error), n int, sink progress.Sink, desc string) ([]any, int64, error) {
	task := sink.Start(desc, int64(n))
	defer sink.Done(task)

	results := make([]any, 0, n)
	for i := 0; i < n; i++ {
		ins, err := ds.Row(i)
		if err != nil {
			return nil, int64(i), err
		}
		out, err := call(ins)
		if err != nil {
			return nil, int64(i), errors.Wrap(err, errors.ErrorTypeUserFunction,
				"user function failed").WithRow(i)
		}
		results = append(results, out)
		sink.Advance(task, 1)
	}
	return results, int64(n), nil
}

// applySharded partitions the rows into one shard per worker, runs the
// workers concurrently over independent shard copies and reassembles their
// results in shard order.
func (ds *Dataset) applySharded(call func(Instance) (any, error), n, workers int, sink progress.Sink, desc string, collector *metrics.Collector) ([]any, int64, error) {
	log := logger.Get().With(zap.String("operation", collector.Operation()))

	if workers > n {
		log.Warn("worker count exceeds row count, clamping",
			zap.Int("workers", workers),
			zap.Int("rows", n))
		workers = n
	}

	shards := planShards(n, workers)

	// Each worker receives a materialized copy of its shard, never a live
	// view into the parent store.
	shardData := make([]*Dataset, len(shards))
	for i, sp := range shards {
		shard, err := ds.Slice(sp.start, sp.end)
		if err != nil {
			return nil, 0, err
		}
		shardData[i] = shard
	}

	// Buffered to the full row count so workers never block on progress.
	events := make(chan int, n)
	monitor := progress.NewMonitor(sink, desc, int64(n))
	go monitor.Run(events)

	collector.SetActiveWorkers(len(shards))
	defer collector.SetActiveWorkers(0)

	shardResults := make([][]any, len(shards))
	shardErrs := make([]error, len(shards))

	var wg sync.WaitGroup
	for w, sp := range shards {
		wg.Add(1)
		go func(w int, sp span, shard *Dataset) {
			defer wg.Done()
			shardResults[w], shardErrs[w] = runShard(shard, call, sp.start, events)
		}(w, sp, shardData[w])
	}

	// All workers are always joined before any failure propagates; the
	// monitor is drained afterwards via channel close so an aborted run
	// cannot leave it waiting for events that will never arrive.
	wg.Wait()
	close(events)
	monitor.Wait()

	var merr *multierror.Error
	for _, err := range shardErrs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		log.Error("apply failed", zap.Error(err),
			zap.Int64("rows_completed", monitor.Count()))
		return nil, monitor.Count(), err
	}

	// Concatenate in shard order, not completion order, to reconstruct the
	// original row order.
	results := make([]any, 0, n)
	for _, part := range shardResults {
		results = append(results, part...)
	}
	return results, monitor.Count(), nil
}

// runShard executes call over one shard's rows in ascending order,
// signaling one completion event per finished row. On failure it aborts
// immediately; the error carries the failing row's global index (base is
// the shard's first row in the parent dataset).
func runShard(shard *Dataset, call func(Instance) (any, error), base int, events chan<- int) ([]any, error) {
	n := shard.Len()
	results := make([]any, 0, n)
	for i := 0; i < n; i++ {
		ins, err := shard.Row(i)
		if err != nil {
			return nil, err
		}
		out, err := call(ins)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUserFunction,
				"user function failed").WithRow(base + i)
		}
		results = append(results, out)
		events <- 1
	}
	return results, nil
}
