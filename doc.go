// Package corpus provides a columnar, row-addressable data container for
// staging and transforming machine-learning training examples.
//
// A corpus dataset stores examples column-wise: each named field holds one
// ordered sequence of values, and every sequence has the same length. Rows
// ("instances") are materialized on demand as read-only views. The container
// supports adding and removing fields and instances, slicing, splitting and
// concatenation. At its core sits an apply engine that runs user functions
// over every row either sequentially or fanned out across a pool of workers
// while preserving input order in the results.
//
// # Architecture
//
// The library is organized into focused packages:
//
//   - pkg/dataset: the Dataset container, shard planner, apply engine and
//     multi-field result merger
//   - pkg/progress: progress sinks and the monitor that aggregates per-row
//     completion events from all workers into one counter
//   - pkg/errors: structured, typed errors carrying the row index where a
//     transformation failed
//   - pkg/logger: zap-based structured logging
//   - pkg/metrics: Prometheus collectors for dataset operations
//
// # Quick Start
//
// Build a dataset and double one of its fields across four workers:
//
//	import "github.com/ajitpratap0/corpus/pkg/dataset"
//
//	ds, _ := dataset.FromColumns(map[string][]any{
//	    "x": {1, 2, 3, 4},
//	})
//	cfg := dataset.DefaultApplyConfig()
//	cfg.Workers = 4
//	out, err := ds.ApplyField(func(v any) (any, error) {
//	    return v.(int) * 2, nil
//	}, "x", cfg)
//
// Results are always ordered by input row, regardless of how many workers ran
// or which finished first.
package corpus
