// Package progress provides progress tracking for long-running dataset
// operations. A Sink is a pluggable display target receiving start, advance
// and done signals keyed by a task handle; a Monitor aggregates per-row
// completion events from many workers into one counter feeding a single
// sink task.
package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TaskID identifies one tracked task within a Sink
type TaskID int64

// Sink receives progress signals for display. Implementations must be safe
// for concurrent use: Advance may be called from many goroutines.
type Sink interface {
	// Start registers a new task with the given total and returns its handle
	Start(description string, total int64) TaskID
	// Advance records n completed units for the task
	Advance(id TaskID, n int64)
	// Done finalizes the task and releases its handle
	Done(id TaskID)
}

// nopSink discards all progress signals
type nopSink struct{}

func (nopSink) Start(string, int64) TaskID { return 0 }
func (nopSink) Advance(TaskID, int64)      {}
func (nopSink) Done(TaskID)                {}

// Nop returns a sink that discards all progress signals
func Nop() Sink {
	return nopSink{}
}

// LogSink reports progress through a zap logger at a fixed interval,
// including percentage, throughput and an ETA estimate. A final summary is
// emitted when the task finishes.
type LogSink struct {
	logger   *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	nextID int64
	tasks  map[TaskID]*taskState
}

type taskState struct {
	description string
	total       int64
	processed   int64 // atomic
	startTime   time.Time
	lastReport  time.Time
}

// NewLogSink creates a log-backed progress sink reporting at the given
// interval
func NewLogSink(logger *zap.Logger, interval time.Duration) *LogSink {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &LogSink{
		logger:   logger,
		interval: interval,
		tasks:    make(map[TaskID]*taskState),
	}
}

// Start registers a new task
func (s *LogSink) Start(description string, total int64) TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := TaskID(s.nextID)
	now := time.Now()
	s.tasks[id] = &taskState{
		description: description,
		total:       total,
		startTime:   now,
		lastReport:  now,
	}
	return id
}

// Advance records n completed units and logs a progress update when the
// report interval has elapsed
func (s *LogSink) Advance(id TaskID, n int64) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return
	}

	processed := atomic.AddInt64(&task.processed, n)

	s.mu.Lock()
	due := time.Since(task.lastReport) >= s.interval
	if due {
		task.lastReport = time.Now()
	}
	s.mu.Unlock()

	if due {
		s.report(task, processed)
	}
}

// Done logs the final summary for a task and releases its handle
func (s *LogSink) Done(id TaskID) {
	s.mu.Lock()
	task, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mu.Unlock()
	if !ok {
		return
	}

	processed := atomic.LoadInt64(&task.processed)
	elapsed := time.Since(task.startTime)

	fields := []zap.Field{
		zap.String("task", task.description),
		zap.Int64("processed", processed),
		zap.Duration("elapsed", elapsed),
	}
	if elapsed > 0 {
		fields = append(fields, zap.Float64("throughput", float64(processed)/elapsed.Seconds()))
	}
	if task.total > 0 {
		fields = append(fields, zap.Int64("total", task.total),
			zap.Float64("percentage", float64(processed)/float64(task.total)*100))
	}

	s.logger.Info("task completed", fields...)
}

// report logs a single progress update
func (s *LogSink) report(task *taskState, processed int64) {
	elapsed := time.Since(task.startTime)

	fields := []zap.Field{
		zap.String("task", task.description),
		zap.Int64("processed", processed),
		zap.Duration("elapsed", elapsed),
	}

	var rate float64
	if elapsed > 0 {
		rate = float64(processed) / elapsed.Seconds()
		fields = append(fields, zap.Float64("throughput", rate))
	}

	if task.total > 0 {
		fields = append(fields,
			zap.Int64("total", task.total),
			zap.Float64("percentage", float64(processed)/float64(task.total)*100))
		if rate > 0 {
			remaining := task.total - processed
			fields = append(fields, zap.Duration("eta", time.Duration(float64(remaining)/rate*float64(time.Second))))
		}
	}

	s.logger.Info("progress update", fields...)
}
