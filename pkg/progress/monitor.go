package progress

import (
	"sync/atomic"
)

// Monitor aggregates discrete completion events from any number of senders
// into one counter feeding a single sink task. It is the synchronization
// point that observes when a fanned-out operation has completed every unit,
// independent of when the workers themselves are joined.
//
// The counter reaching the target total is the termination signal. Closing
// the inbound channel also terminates the monitor; the failing path relies
// on this, since an aborted operation never delivers all events.
type Monitor struct {
	total int64
	count int64 // atomic
	sink  Sink
	task  TaskID
	done  chan struct{}
}

// NewMonitor creates a monitor for total expected events, registering a
// task with the given sink
func NewMonitor(sink Sink, description string, total int64) *Monitor {
	if sink == nil {
		sink = Nop()
	}
	return &Monitor{
		total: total,
		sink:  sink,
		task:  sink.Start(description, total),
		done:  make(chan struct{}),
	}
}

// Run consumes completion events until the counter reaches the target total
// or the channel is closed, whichever comes first. It is intended to run in
// its own goroutine alongside the senders.
func (m *Monitor) Run(events <-chan int) {
	defer close(m.done)
	defer m.sink.Done(m.task)

	for n := range events {
		if n <= 0 {
			continue
		}
		count := atomic.AddInt64(&m.count, int64(n))
		m.sink.Advance(m.task, int64(n))
		if count >= m.total {
			return
		}
	}
}

// Wait blocks until the monitor has terminated
func (m *Monitor) Wait() {
	<-m.done
}

// Count returns the number of completion events observed so far
func (m *Monitor) Count() int64 {
	return atomic.LoadInt64(&m.count)
}

// Total returns the target total
func (m *Monitor) Total() int64 {
	return m.total
}
