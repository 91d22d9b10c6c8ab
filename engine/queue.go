package engine

// dedupKey is structural task equality: same kind against the same target.
// Priority and description deliberately don't participate, so re-detection of
// an unresolved emergency can't grow the queue.
type dedupKey struct {
	kind   TaskKind
	target TargetRef
}

// EmergencyQueue is a bounded strict-FIFO queue of emergency tasks. Priority
// is expressed by detection order, not by sorting; the queue never reorders.
type EmergencyQueue struct {
	tasks   []EmergencyTask
	present map[dedupKey]struct{}
	maxLen  int
}

func NewEmergencyQueue(maxLen int) *EmergencyQueue {
	if maxLen <= 0 {
		maxLen = 64
	}
	return &EmergencyQueue{
		present: make(map[dedupKey]struct{}),
		maxLen:  maxLen,
	}
}

// Enqueue adds a task unless an equivalent one (same kind, same target) is
// already queued or the queue is full. Returns true if the task was added.
func (q *EmergencyQueue) Enqueue(t EmergencyTask) bool {
	key := dedupKey{t.Kind, t.Target}
	if _, dup := q.present[key]; dup {
		return false
	}
	if len(q.tasks) >= q.maxLen {
		return false
	}
	q.tasks = append(q.tasks, t)
	q.present[key] = struct{}{}
	return true
}

// DrainUpTo removes and returns at most n tasks, oldest first. The per-pass
// cap bounds tick cost; leftover tasks keep their place for the next pass.
func (q *EmergencyQueue) DrainUpTo(n int) []EmergencyTask {
	if n <= 0 || len(q.tasks) == 0 {
		return nil
	}
	if n > len(q.tasks) {
		n = len(q.tasks)
	}
	out := make([]EmergencyTask, n)
	copy(out, q.tasks[:n])
	q.tasks = append(q.tasks[:0], q.tasks[n:]...)
	for _, t := range out {
		delete(q.present, dedupKey{t.Kind, t.Target})
	}
	return out
}

func (q *EmergencyQueue) Len() int { return len(q.tasks) }

// Contains reports whether an equivalent task is currently queued.
func (q *EmergencyQueue) Contains(kind TaskKind, target TargetRef) bool {
	_, ok := q.present[dedupKey{kind, target}]
	return ok
}
