package errhandler

// recordRing is a fixed-capacity ring of error records. Once full, each
// append drops the oldest record. Callers hold the Handler mutex.
type recordRing struct {
	buf   []ErrorRecord
	next  int
	count int
}

func newRecordRing(capacity int) *recordRing {
	return &recordRing{buf: make([]ErrorRecord, capacity)}
}

func (r *recordRing) append(rec ErrorRecord) {
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// recent returns up to limit records ordered oldest to newest. limit <= 0
// returns all retained records.
func (r *recordRing) recent(limit int) []ErrorRecord {
	if limit <= 0 || limit > r.count {
		limit = r.count
	}

	out := make([]ErrorRecord, 0, limit)
	start := r.next - limit
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < limit; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
