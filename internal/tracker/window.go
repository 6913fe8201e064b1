package tracker

// window keeps the last N probe outcomes for packet-loss percentage.
// The failure count is maintained incrementally so reads are O(1).
type window struct {
	buf      []bool
	head     int
	count    int
	failures int
}

func newWindow(size int) window {
	if size < 1 {
		size = 1
	}
	return window{buf: make([]bool, size)}
}

// push appends an outcome, evicting the oldest when full.
func (w *window) push(ok bool) {
	if w.count == len(w.buf) {
		if !w.buf[w.head] {
			w.failures--
		}
	} else {
		w.count++
	}
	w.buf[w.head] = ok
	if !ok {
		w.failures++
	}
	w.head = (w.head + 1) % len(w.buf)
}

// lossPct returns the failure share in [0,100]. An empty window means
// no data yet, not perfect connectivity, and reads as 0.
func (w *window) lossPct() float64 {
	if w.count == 0 {
		return 0.0
	}
	return float64(w.failures) / float64(w.count) * 100.0
}

func (w *window) len() int { return w.count }
