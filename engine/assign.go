package engine

import (
	"github.com/wardenlabs/warden-core/model"
)

// OutcomeStatus classifies what happened to one task during assignment.
// Per-item skips and failures are ordinary values consumed by the pass
// driver, never errors, so one bad task can't abort the pass.
type OutcomeStatus string

const (
	Assigned         OutcomeStatus = "assigned"
	SkipSuppressed   OutcomeStatus = "skip_suppressed"   // target in failure backoff
	SkipVanished     OutcomeStatus = "skip_vanished"     // target no longer in snapshot
	SkipNoCandidates OutcomeStatus = "skip_no_candidates"
	SkipUnreachable  OutcomeStatus = "skip_unreachable"
	FailRefused      OutcomeStatus = "fail_refused"    // executor said no
	FailStructural   OutcomeStatus = "fail_structural" // malformed task/target kind
)

// Failed reports whether the outcome should count against the target's
// failure ledger.
func (s OutcomeStatus) Failed() bool {
	return s == FailRefused || s == SkipUnreachable
}

// Outcome is the per-task result of one assignment attempt.
type Outcome struct {
	Task    EmergencyTask
	AgentID int // 0 unless Assigned or FailRefused
	Status  OutcomeStatus
	Detail  string
}

// pickBest selects the best candidate by the deterministic tie-break:
// distance to target ascending, then skill descending, then first found in
// snapshot order. Candidates must already be filtered for eligibility.
func pickBest(cands []model.Colonist, target model.Point, skill func(model.Colonist) int) (model.Colonist, bool) {
	if len(cands) == 0 {
		return model.Colonist{}, false
	}
	best := cands[0]
	bestDist := model.Dist(best.Pos(), target)
	for _, c := range cands[1:] {
		d := model.Dist(c.Pos(), target)
		switch {
		case d < bestDist:
			best, bestDist = c, d
		case d == bestDist && skill(c) > skill(best):
			best = c
		}
	}
	return best, true
}

// eligibleColonists materializes the candidate pool for a task from a
// snapshot. The returned slice is the pass's stable working set: issuing
// commands later cannot disturb it. busy holds agents already given a command
// this pass (one new command per agent per pass).
func eligibleColonists(task EmergencyTask, snap *model.Snapshot, busy map[int]bool) []model.Colonist {
	var out []model.Colonist
	for _, c := range snap.Colonists {
		if busy[c.ID] || !c.Capable() {
			continue
		}
		// Never send the emergency's own subject to handle it.
		if task.Target.Kind == TargetColonist && task.Target.ID == c.ID {
			continue
		}
		// A colonist mid-execution of equal-or-higher priority work is
		// protected from interruption.
		if c.CurrentTask.InProgress && c.CurrentTask.Priority >= task.Priority {
			continue
		}
		if !eligibleForKind(task.Kind, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func eligibleForKind(kind TaskKind, c model.Colonist) bool {
	switch kind {
	case TaskMedical:
		return c.Medicine > 0
	case TaskRescue, TaskFirefight:
		return true
	default:
		return false
	}
}

// skillFor returns the capability score used as the secondary tie-break key
// for a task kind.
func skillFor(kind TaskKind) func(model.Colonist) int {
	switch kind {
	case TaskMedical:
		return func(c model.Colonist) int { return c.Medicine }
	default:
		return func(c model.Colonist) int { return 0 }
	}
}

// fighters materializes the defense candidate pool: armed, fight-capable
// colonists not locked into higher-priority work.
func fighters(snap *model.Snapshot, busy map[int]bool) []model.Colonist {
	var out []model.Colonist
	for _, c := range snap.Colonists {
		if busy[c.ID] || !c.Capable() || !c.CanFight || c.Weapon == nil {
			continue
		}
		if c.CurrentTask.InProgress && c.CurrentTask.Priority >= PriorityEmergency {
			continue
		}
		out = append(out, c)
	}
	return out
}
