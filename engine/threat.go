package engine

import (
	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/model"
)

// ThreatLevel is the discrete danger classification driving lane cadence.
type ThreatLevel int

const (
	ThreatLow ThreatLevel = iota
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

func (l ThreatLevel) String() string {
	switch l {
	case ThreatLow:
		return "low"
	case ThreatMedium:
		return "medium"
	case ThreatHigh:
		return "high"
	case ThreatCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ThreatEventKind identifies a transition detected between two samples.
// Events fire exactly once per transition, never once per sample — downstream
// logging and alerts key off these, not off raw levels.
type ThreatEventKind string

const (
	EventLevelChanged      ThreatEventKind = "level_changed"
	EventCombatEntered     ThreatEventKind = "combat_entered"
	EventCombatCleared     ThreatEventKind = "combat_cleared"
	EventFiresIgnited      ThreatEventKind = "fires_ignited"
	EventFiresExtinguished ThreatEventKind = "fires_extinguished"
)

type ThreatEvent struct {
	Kind ThreatEventKind
	Prev ThreatLevel
	Next ThreatLevel
}

// ThreatAssessor classifies each snapshot and remembers just enough of the
// previous sample to detect transitions. Re-entry guards (hadFires,
// inCombat) ensure a persisting condition produces no repeat events.
type ThreatAssessor struct {
	level    ThreatLevel
	inCombat bool
	hadFires bool
}

func NewThreatAssessor() *ThreatAssessor {
	return &ThreatAssessor{level: ThreatLow}
}

// Level returns the last assessed level without sampling.
func (a *ThreatAssessor) Level() ThreatLevel { return a.level }

// InCombat returns the derived combat state from the last sample.
func (a *ThreatAssessor) InCombat() bool { return a.inCombat }

// Assess samples the snapshot, updates the level, and returns transition
// events. The returned level feeds the scheduler's cadence for the next
// cycle; a one-tick lag is acceptable.
func (a *ThreatAssessor) Assess(s *model.Snapshot, cfg config.ThreatConfig) (ThreatLevel, []ThreatEvent) {
	hostiles := len(s.Hostiles)
	fires := len(s.Fires)
	bleeding := len(s.BleedingColonists())

	next := maxLevel(
		levelFromCount(hostiles, cfg.HostileMedium, cfg.HostileHigh, cfg.HostileCritical),
		levelFromCount(fires, cfg.FireMedium, cfg.FireHigh, cfg.FireCritical),
		levelFromCount(bleeding, cfg.BleedingMedium, cfg.BleedingHigh, 1<<30),
	)
	// An active raid is never below High, regardless of what is on screen yet.
	if s.RaidActive && next < ThreatHigh {
		next = ThreatHigh
	}

	var events []ThreatEvent
	if next != a.level {
		events = append(events, ThreatEvent{Kind: EventLevelChanged, Prev: a.level, Next: next})
	}

	combat := hostiles > 0 || s.RaidActive
	if combat && !a.inCombat {
		events = append(events, ThreatEvent{Kind: EventCombatEntered, Prev: a.level, Next: next})
	} else if !combat && a.inCombat {
		events = append(events, ThreatEvent{Kind: EventCombatCleared, Prev: a.level, Next: next})
	}

	if fires > 0 && !a.hadFires {
		events = append(events, ThreatEvent{Kind: EventFiresIgnited, Prev: a.level, Next: next})
	} else if fires == 0 && a.hadFires {
		events = append(events, ThreatEvent{Kind: EventFiresExtinguished, Prev: a.level, Next: next})
	}

	a.level = next
	a.inCombat = combat
	a.hadFires = fires > 0
	return next, events
}

func levelFromCount(n, medium, high, critical int) ThreatLevel {
	switch {
	case n >= critical:
		return ThreatCritical
	case n >= high:
		return ThreatHigh
	case n >= medium:
		return ThreatMedium
	default:
		return ThreatLow
	}
}

func maxLevel(levels ...ThreatLevel) ThreatLevel {
	out := ThreatLow
	for _, l := range levels {
		if l > out {
			out = l
		}
	}
	return out
}
