package telemetry

// WarnLimiter gates repeated warnings so a persistently failing target
// surfaces once per window instead of once per tick.
type WarnLimiter struct {
	lastTick map[string]int
}

func NewWarnLimiter() *WarnLimiter {
	return &WarnLimiter{lastTick: make(map[string]int)}
}

// Allow reports whether a warning keyed by key may fire at nowTick, and if
// so, records it. windowTicks is the minimum spacing between warnings for the
// same key.
func (w *WarnLimiter) Allow(key string, nowTick, windowTicks int) bool {
	if last, ok := w.lastTick[key]; ok && nowTick-last < windowTicks {
		return false
	}
	w.lastTick[key] = nowTick
	return true
}

// Sweep drops keys not seen for maxIdle ticks so the map stays bounded.
func (w *WarnLimiter) Sweep(nowTick, maxIdle int) {
	for k, last := range w.lastTick {
		if nowTick-last >= maxIdle {
			delete(w.lastTick, k)
		}
	}
}
