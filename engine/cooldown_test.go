package engine

import "testing"

func TestLedgerSuppressionAfterThreshold(t *testing.T) {
	l := NewCooldownLedger()
	target := TargetRef{TargetColonist, 7}
	const threshold, window = 3, 600

	l.RecordFailure(target, 100)
	l.RecordFailure(target, 130)
	if l.Suppressed(target, 160, threshold, window) {
		t.Error("suppressed below failure threshold")
	}

	l.RecordFailure(target, 160)
	if !l.Suppressed(target, 200, threshold, window) {
		t.Error("not suppressed after reaching threshold")
	}
}

func TestLedgerWindowExpiry(t *testing.T) {
	l := NewCooldownLedger()
	target := TargetRef{TargetFire, 2}
	const threshold, window = 3, 600

	for i := 0; i < threshold; i++ {
		l.RecordFailure(target, 100)
	}
	if !l.Suppressed(target, 100+window-1, threshold, window) {
		t.Error("expected suppression inside window")
	}
	// Once the window elapses, detection resumes even though the failure
	// count is intact.
	if l.Suppressed(target, 100+window, threshold, window) {
		t.Error("still suppressed after window elapsed")
	}
	if l.Failures(target) != threshold {
		t.Errorf("failure count reset without success: got %d", l.Failures(target))
	}
}

func TestLedgerSuccessResets(t *testing.T) {
	l := NewCooldownLedger()
	target := TargetRef{TargetColonist, 1}

	l.RecordFailure(target, 10)
	l.RecordFailure(target, 20)
	l.RecordSuccess(target, 30)

	if l.Failures(target) != 0 {
		t.Errorf("failures not zeroed on success: got %d", l.Failures(target))
	}
	if l.Suppressed(target, 31, 1, 600) {
		t.Error("suppressed after success reset")
	}
}

func TestLedgerUnknownTarget(t *testing.T) {
	l := NewCooldownLedger()
	target := TargetRef{TargetItem, 99}
	if l.Suppressed(target, 100, 1, 600) {
		t.Error("unknown target suppressed")
	}
	if l.Failures(target) != 0 {
		t.Error("unknown target has failures")
	}
}

func TestLedgerSweep(t *testing.T) {
	l := NewCooldownLedger()
	stale := TargetRef{TargetColonist, 1}
	fresh := TargetRef{TargetColonist, 2}
	l.RecordFailure(stale, 100)
	l.RecordFailure(fresh, 25000)

	evicted := l.Sweep(30100, 30000)
	if evicted != 1 {
		t.Fatalf("expected 1 evicted, got %d", evicted)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", l.Len())
	}
	if l.Failures(fresh) != 1 {
		t.Error("fresh entry evicted")
	}
}
