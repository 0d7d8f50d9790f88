package vulkan

// deletionQueue delays the release of GPU objects until every submission
// that may still read them has completed.
type deletionQueue struct {
	entries []deferredRelease
}

type deferredRelease struct {
	// number of the last submission allowed to use the object
	lastUse uint64
	release func()
}

func (q *deletionQueue) push(lastUse uint64, release func()) {
	q.entries = append(q.entries, deferredRelease{lastUse: lastUse, release: release})
}

// flush releases everything whose last submission is below completed and
// returns how many objects were released.
func (q *deletionQueue) flush(completed uint64) int {
	kept := q.entries[:0]
	released := 0
	for _, e := range q.entries {
		if e.lastUse < completed {
			e.release()
			released++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = deferredRelease{}
	}
	q.entries = kept
	return released
}

// drain releases everything, used once the device is idle.
func (q *deletionQueue) drain() int {
	n := len(q.entries)
	for _, e := range q.entries {
		e.release()
	}
	q.entries = nil
	return n
}

func (q *deletionQueue) len() int {
	return len(q.entries)
}
