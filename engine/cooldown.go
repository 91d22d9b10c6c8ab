package engine

// cooldownEntry tracks attempts against one target. failures resets to zero
// on any recorded success.
type cooldownEntry struct {
	lastActionTick int
	failures       int
}

// CooldownLedger is the engine-owned failure/backoff state, keyed by stable
// target identity. Thresholds are passed per call rather than stored so the
// ledger always applies the current pass's config.
type CooldownLedger struct {
	entries map[TargetRef]*cooldownEntry
}

func NewCooldownLedger() *CooldownLedger {
	return &CooldownLedger{entries: make(map[TargetRef]*cooldownEntry)}
}

func (l *CooldownLedger) entry(t TargetRef) *cooldownEntry {
	e, ok := l.entries[t]
	if !ok {
		e = &cooldownEntry{}
		l.entries[t] = e
	}
	return e
}

// RecordFailure notes a failed attempt against the target at the given tick.
func (l *CooldownLedger) RecordFailure(t TargetRef, tick int) {
	e := l.entry(t)
	e.lastActionTick = tick
	e.failures++
}

// RecordSuccess notes a successful attempt and zeroes the failure count.
func (l *CooldownLedger) RecordSuccess(t TargetRef, tick int) {
	e := l.entry(t)
	e.lastActionTick = tick
	e.failures = 0
}

// Suppressed reports whether detection should skip the target: at least
// threshold consecutive failures, and still inside the backoff window since
// the last attempt. Once the window elapses, detection resumes (the failure
// count stays until a success resets it).
func (l *CooldownLedger) Suppressed(t TargetRef, nowTick, threshold, windowTicks int) bool {
	e, ok := l.entries[t]
	if !ok {
		return false
	}
	return e.failures >= threshold && nowTick-e.lastActionTick < windowTicks
}

// Failures returns the current failure count for a target.
func (l *CooldownLedger) Failures(t TargetRef) int {
	if e, ok := l.entries[t]; ok {
		return e.failures
	}
	return 0
}

// Sweep evicts entries untouched for maxIdle ticks and returns how many were
// removed. Keeps the ledger bounded over long sessions; run on the slowest
// scheduler lane.
func (l *CooldownLedger) Sweep(nowTick, maxIdle int) int {
	evicted := 0
	for t, e := range l.entries {
		if nowTick-e.lastActionTick >= maxIdle {
			delete(l.entries, t)
			evicted++
		}
	}
	return evicted
}

func (l *CooldownLedger) Len() int { return len(l.entries) }
