// Package engine is the autonomous tasking core: it turns per-tick world
// snapshots into prioritized emergency tasks and assigns them to colonists
// through an external command executor.
package engine

import (
	"fmt"

	"github.com/wardenlabs/warden-core/model"
)

// TargetKind tags what a TargetRef points at. Task targets are a closed set
// of kinds, each resolved against the matching snapshot collection — there is
// no runtime type inspection anywhere downstream.
type TargetKind string

const (
	TargetColonist TargetKind = "colonist"
	TargetHostile  TargetKind = "hostile"
	TargetFire     TargetKind = "fire"
	TargetItem     TargetKind = "item"
)

// TargetRef is the stable identity of a world object. It is the only piece of
// world state the engine keeps across ticks (as cooldown-ledger keys).
type TargetRef struct {
	Kind TargetKind
	ID   int
}

func (t TargetRef) String() string { return fmt.Sprintf("%s/%d", t.Kind, t.ID) }

// Pos resolves the target's current position in the snapshot. ok is false if
// the target has despawned since detection.
func (t TargetRef) Pos(s *model.Snapshot) (model.Point, bool) {
	switch t.Kind {
	case TargetColonist:
		if c := s.ColonistByID(t.ID); c != nil {
			return c.Pos(), true
		}
	case TargetHostile:
		if h := s.HostileByID(t.ID); h != nil {
			return h.Pos(), true
		}
	case TargetFire:
		if f := s.FireByID(t.ID); f != nil {
			return f.Pos(), true
		}
	case TargetItem:
		if i := s.ItemByID(t.ID); i != nil {
			return i.Pos(), true
		}
	}
	return model.Point{}, false
}

// TaskKind identifies an emergency category.
type TaskKind string

const (
	TaskRescue    TaskKind = "rescue"
	TaskMedical   TaskKind = "medical"
	TaskFirefight TaskKind = "firefight"
)

// Priority classes for issued work. These are compared against the host's
// reported priority on a colonist's current task: a colonist mid-execution of
// equal-or-higher priority work is never interrupted.
const (
	PriorityIdle      = 0
	PriorityWork      = 1
	PriorityUrgent    = 2
	PriorityEmergency = 3
)

// EmergencyTask is a detected condition awaiting assignment. Created by
// detection each pass, consumed on drain, never persisted.
type EmergencyTask struct {
	Kind     TaskKind
	Target   TargetRef
	Priority int
	Desc     string
}
