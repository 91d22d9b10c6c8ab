package engine

import (
	"fmt"
	"sort"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/model"
)

// Built-in detection passes. Detection expresses priority by enqueue order:
// the queue itself never sorts, so whatever is detected first is executed
// first. Each pass consults the failure ledger before re-enqueueing a
// recently failed target.

// DetectRescues enqueues a rescue task for every downed colonist that nobody
// is already carrying. Returns how many tasks were enqueued.
func DetectRescues(snap *model.Snapshot, queue *EmergencyQueue, ledger *CooldownLedger, cfg config.BackoffConfig) int {
	enqueued := 0
	for _, downed := range snap.DownedColonists() {
		if rescueUnderway(snap, downed.ID) {
			continue
		}
		target := TargetRef{TargetColonist, downed.ID}
		if ledger.Suppressed(target, snap.Tick, cfg.FailureThreshold, cfg.WindowTicks) {
			continue
		}
		if queue.Enqueue(EmergencyTask{
			Kind:     TaskRescue,
			Target:   target,
			Priority: PriorityEmergency,
			Desc:     fmt.Sprintf("rescue %s", downed.Name),
		}) {
			enqueued++
		}
	}
	return enqueued
}

// rescueUnderway reports whether any colonist is mid-rescue of the target.
// In-progress work is protected; queuing a second rescuer would send two
// pawns to carry the same body.
func rescueUnderway(snap *model.Snapshot, downedID int) bool {
	for _, c := range snap.Colonists {
		t := c.CurrentTask
		if t.Kind == "rescue" && t.TargetID == downedID && t.InProgress {
			return true
		}
	}
	return false
}

// DetectMedical enqueues tend tasks for bleeding, still-standing colonists
// that nobody is already tending.
func DetectMedical(snap *model.Snapshot, queue *EmergencyQueue, ledger *CooldownLedger, cfg config.BackoffConfig) int {
	enqueued := 0
	for _, patient := range snap.BleedingColonists() {
		if tendUnderway(snap, patient.ID) {
			continue
		}
		target := TargetRef{TargetColonist, patient.ID}
		if ledger.Suppressed(target, snap.Tick, cfg.FailureThreshold, cfg.WindowTicks) {
			continue
		}
		if queue.Enqueue(EmergencyTask{
			Kind:     TaskMedical,
			Target:   target,
			Priority: PriorityUrgent,
			Desc:     fmt.Sprintf("tend %s", patient.Name),
		}) {
			enqueued++
		}
	}
	return enqueued
}

func tendUnderway(snap *model.Snapshot, patientID int) bool {
	for _, c := range snap.Colonists {
		t := c.CurrentTask
		if t.Kind == "tend" && t.TargetID == patientID && t.InProgress {
			return true
		}
	}
	return false
}

// DetectFires enqueues firefight tasks, biggest fires first so the FIFO drain
// tackles the worst burns before the rest.
func DetectFires(snap *model.Snapshot, queue *EmergencyQueue, ledger *CooldownLedger, cfg config.BackoffConfig) int {
	fires := make([]model.Fire, len(snap.Fires))
	copy(fires, snap.Fires)
	sort.SliceStable(fires, func(i, j int) bool { return fires[i].Size > fires[j].Size })

	enqueued := 0
	for _, f := range fires {
		target := TargetRef{TargetFire, f.ID}
		if ledger.Suppressed(target, snap.Tick, cfg.FailureThreshold, cfg.WindowTicks) {
			continue
		}
		if queue.Enqueue(EmergencyTask{
			Kind:     TaskFirefight,
			Target:   target,
			Priority: PriorityUrgent,
			Desc:     fmt.Sprintf("extinguish fire %d", f.ID),
		}) {
			enqueued++
		}
	}
	return enqueued
}
