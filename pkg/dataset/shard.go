package dataset

// span is a contiguous, half-open range [start, end) of row indices
// assigned to one worker.
type span struct {
	start int
	end   int
}

func (s span) size() int {
	return s.end - s.start
}

// planShards partitions [0, n) into exactly k contiguous, ascending,
// non-overlapping spans. The first n%k spans are one row longer than the
// rest, so shard sizes differ by at most one. Identical (n, k) always
// produce identical boundaries.
//
// Callers must ensure 1 <= k <= n.
func planShards(n, k int) []span {
	size := n / k
	extra := n % k

	shards := make([]span, 0, k)
	start := 0
	for i := 0; i < k; i++ {
		end := start + size
		if i < extra {
			end++
		}
		shards = append(shards, span{start: start, end: end})
		start = end
	}
	return shards
}
