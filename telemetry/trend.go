// Package telemetry provides trend tracking, window statistics, the event
// log, and CSV output for simulation runs.
package telemetry

// Trend is a bounded ring buffer of scalar samples. Once full, appending
// drops the oldest sample. The bound is fixed at construction.
type Trend struct {
	buf   []float64
	head  int
	count int
}

// NewTrend creates a trend holding at most size samples.
func NewTrend(size int) *Trend {
	if size < 1 {
		size = 1
	}
	return &Trend{buf: make([]float64, size)}
}

// Append adds a sample, evicting the oldest if the buffer is full.
func (t *Trend) Append(v float64) {
	t.buf[t.head] = v
	t.head = (t.head + 1) % len(t.buf)
	if t.count < len(t.buf) {
		t.count++
	}
}

// Len returns the number of stored samples.
func (t *Trend) Len() int {
	return t.count
}

// Cap returns the fixed buffer size.
func (t *Trend) Cap() int {
	return len(t.buf)
}

// Last returns the most recent sample, or 0 if empty.
func (t *Trend) Last() float64 {
	if t.count == 0 {
		return 0
	}
	return t.buf[(t.head-1+len(t.buf))%len(t.buf)]
}

// Values returns the stored samples oldest-first as a fresh slice.
func (t *Trend) Values() []float64 {
	out := make([]float64, 0, t.count)
	start := t.head - t.count
	for i := 0; i < t.count; i++ {
		out = append(out, t.buf[((start+i)%len(t.buf)+len(t.buf))%len(t.buf)])
	}
	return out
}

// Restore replaces the trend contents with vals (oldest-first), keeping at
// most Cap samples from the tail.
func (t *Trend) Restore(vals []float64) {
	t.head = 0
	t.count = 0
	if len(vals) > len(t.buf) {
		vals = vals[len(vals)-len(t.buf):]
	}
	for _, v := range vals {
		t.Append(v)
	}
}
