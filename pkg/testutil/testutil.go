// Package testutil provides shared helpers for Corpus tests
package testutil

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger returns a zap logger that writes through the test's output and is
// torn down with the test
func Logger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// Eventually polls cond until it returns true or the timeout expires. It is
// meant for asserting on state that another goroutine publishes, such as a
// progress counter catching up to its senders.
func Eventually(t *testing.T, cond func() bool, timeout time.Duration, msg string) {
	t.Helper()

	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(timeout)

	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("condition not met within %v: %s", timeout, msg)
		case <-tick.C:
		}
	}
}
