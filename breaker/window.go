package breaker

import "time"

// Snapshot is a consistent view of the sampling window.
type Snapshot struct {
	// Total is the number of classified outcomes in the window.
	Total uint64
	// Failures is the number of outcomes classified as failures.
	Failures uint64
}

// FailureRatio returns failures divided by total, or 0 for an empty window.
func (s Snapshot) FailureRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Total)
}

// windowCounts holds the tallies of a single bucket or of the aggregate.
type windowCounts struct {
	successes uint64
	failures  uint64
}

func (c *windowCounts) reset() {
	c.successes = 0
	c.failures = 0
}

func (c *windowCounts) sub(o *windowCounts) {
	c.successes -= o.successes
	c.failures -= o.failures
}

// windowBucket tallies the outcomes recorded between its start time
// (inclusive) and end time (inclusive).
type windowBucket struct {
	start  time.Time
	end    time.Time
	counts windowCounts
}

func (b *windowBucket) reset() {
	b.start = time.Time{}
	b.end = time.Time{}
	b.counts.reset()
}

// expired reports whether now falls past the bucket's time range.
func (b *windowBucket) expired(now time.Time) bool {
	if b == nil {
		return true
	}
	return b.end.Before(now)
}

// stale reports whether the bucket starts before the window start and must
// be evicted.
func (b *windowBucket) stale(windowStart time.Time) bool {
	return b.start.Before(windowStart)
}

// slidingWindow aggregates success/failure tallies over the sampling
// duration using a circular queue of fixed-size buckets. Stale buckets are
// evicted lazily whenever the window is touched, so record and snapshot are
// O(1) amortized and bounded by the bucket count regardless of call volume.
//
// The window performs no locking of its own: every mutation and every read
// used for a transition decision happens inside the state machine's single
// critical section, which is what guarantees a consistent (total, failures)
// pair is never observed mid-update.
type slidingWindow struct {
	// bucketDuration is the time slice covered by one bucket.
	bucketDuration time.Duration

	// buckets is the circular queue. current points at the bucket holding
	// the latest samples, oldest at the earliest live bucket. Both are -1
	// while the window is empty.
	buckets []windowBucket
	current int
	oldest  int

	// startDelta, added to the current time, gives the window start time.
	// With n buckets of duration d it is -(n-1)*d, so the live buckets
	// always span exactly the sampling duration.
	startDelta time.Duration

	// aggregate mirrors the sum of all live buckets so snapshot does not
	// have to walk the queue.
	aggregate windowCounts
}

func newSlidingWindow(sampling time.Duration, bucketCount int) *slidingWindow {
	return &slidingWindow{
		bucketDuration: sampling / time.Duration(bucketCount),
		buckets:        make([]windowBucket, bucketCount),
		current:        -1,
		oldest:         -1,
		startDelta:     -time.Duration(bucketCount-1) * (sampling / time.Duration(bucketCount)),
	}
}

// record adds one classified outcome at the given time.
func (w *slidingWindow) record(success bool, now time.Time) {
	b := w.advance(now)
	if success {
		b.counts.successes++
		w.aggregate.successes++
	} else {
		b.counts.failures++
		w.aggregate.failures++
	}
}

// snapshot evicts stale buckets and returns the live tallies.
func (w *slidingWindow) snapshot(now time.Time) Snapshot {
	w.evict(now)
	return Snapshot{
		Total:    w.aggregate.successes + w.aggregate.failures,
		Failures: w.aggregate.failures,
	}
}

// reset empties all buckets and the aggregate.
func (w *slidingWindow) reset() {
	w.current = -1
	w.oldest = -1
	w.aggregate.reset()
	for i := range w.buckets {
		w.buckets[i].reset()
	}
}

// advance returns the bucket covering now, sliding the queue forward when
// the current bucket cannot fit it.
func (w *slidingWindow) advance(now time.Time) *windowBucket {
	if w.current != -1 && !w.buckets[w.current].expired(now) {
		return &w.buckets[w.current]
	}

	w.evict(now)
	if w.current == -1 {
		w.oldest = 0
		w.current = 0
	} else {
		w.current = w.next(w.current)
	}
	b := &w.buckets[w.current]
	b.start = now
	// End is inclusive; back off a nanosecond so adjacent buckets never
	// overlap.
	b.end = now.Add(w.bucketDuration - 1)
	return b
}

// evict drops buckets whose start precedes the window start, beginning at
// the oldest, subtracting each from the aggregate.
func (w *slidingWindow) evict(now time.Time) {
	if w.current == -1 {
		return
	}

	windowStart := now.Add(w.startDelta)
	for {
		b := &w.buckets[w.oldest]
		if !b.stale(windowStart) {
			return
		}

		w.aggregate.sub(&b.counts)
		b.reset()
		if w.oldest == w.current {
			// The queue drained completely.
			w.oldest = -1
			w.current = -1
			return
		}
		w.oldest = w.next(w.oldest)
	}
}

func (w *slidingWindow) next(idx int) int {
	idx++
	if idx == len(w.buckets) {
		return 0
	}
	return idx
}
