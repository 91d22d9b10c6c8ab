package engine

import (
	"fmt"
	"log/slog"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/model"
	"github.com/wardenlabs/warden-core/telemetry"
)

// CommandKind is the intent the engine hands to the executor. The executor
// owns translation to actual game orders.
type CommandKind string

const (
	CmdRescue     CommandKind = "rescue"
	CmdTend       CommandKind = "tend"
	CmdExtinguish CommandKind = "extinguish"
	CmdEquip      CommandKind = "equip"
	CmdAttack     CommandKind = "attack"
	CmdMoveTo     CommandKind = "move_to"
	CmdRetreat    CommandKind = "retreat"
)

// Command is one work order for one agent.
type Command struct {
	AgentID int
	Kind    CommandKind
	Target  TargetRef
	Pos     model.Point // destination, CmdMoveTo only
}

// Executor issues work orders to the host. A false return is a refusal — an
// ordinary transient failure, recorded and backed off, never an error. The
// engine never assumes a true return means the work completed.
type Executor interface {
	TryIssue(cmd Command) bool
}

// Engine is the per-session tasking core. It is strictly single-threaded:
// the host invokes RunTick once per simulation tick and every decision
// completes synchronously within it.
type Engine struct {
	exec     Executor
	provider func() config.Config
	rec      telemetry.Recorder
	warnGate *telemetry.WarnLimiter

	terrain *model.TerrainGrid
	sched   *Scheduler
	threat  *ThreatAssessor
	queue   *EmergencyQueue
	ledger  *CooldownLedger
	rules   []*DetectionRule

	ticksSeen int

	// Session counters, reported on disconnect.
	PassesRun       int
	CommandsIssued  int
	CommandsRefused int
}

// New builds an engine. provider is called once per decision pass; its result
// is never cached across passes. rec may be nil.
func New(exec Executor, provider func() config.Config, rec telemetry.Recorder) *Engine {
	if rec == nil {
		rec = telemetry.Nop{}
	}
	initial := provider()
	return &Engine{
		exec:     exec,
		provider: provider,
		rec:      rec,
		warnGate: telemetry.NewWarnLimiter(),
		sched:    NewScheduler(),
		threat:   NewThreatAssessor(),
		queue:    NewEmergencyQueue(initial.Queue.MaxPending),
		ledger:   NewCooldownLedger(),
	}
}

// SetTerrain installs the coarse passability grid from the handshake.
func (e *Engine) SetTerrain(g *model.TerrainGrid) { e.terrain = g }

// SetRules installs compiled operator detection rules.
func (e *Engine) SetRules(rules []*DetectionRule) { e.rules = rules }

// Queue exposes the emergency queue for inspection.
func (e *Engine) Queue() *EmergencyQueue { return e.queue }

// Ledger exposes the cooldown ledger for inspection.
func (e *Engine) Ledger() *CooldownLedger { return e.ledger }

// ThreatLevel returns the last assessed threat level.
func (e *Engine) ThreatLevel() ThreatLevel { return e.threat.Level() }

// RunTick is the single entry point: one snapshot in, zero or more commands
// out. A nil snapshot means no world state was available this tick; the whole
// pass is skipped and normal processing resumes next tick.
func (e *Engine) RunTick(snap *model.Snapshot) {
	e.ticksSeen++
	if snap == nil {
		if e.warnGate.Allow("world_unavailable", e.ticksSeen, 100) {
			slog.Warn("no world state this tick, skipping pass")
		}
		return
	}
	cfg := e.provider()
	e.PassesRun++

	level, events := e.threat.Assess(snap, cfg.Threat)
	for _, ev := range events {
		// Transition-only side effects; a persisting level logs nothing.
		slog.Info("threat transition",
			"event", string(ev.Kind), "prev", ev.Prev.String(), "next", ev.Next.String(), "tick", snap.Tick)
		e.rec.Decision(telemetry.DecisionRecord{
			Tick: snap.Tick, Lane: "threat", Kind: string(ev.Kind),
			Outcome: "transition", Detail: ev.Prev.String() + "->" + ev.Next.String(),
		})
		// Escalation to critical pulls non-combatants to safety, once per
		// escalation, ahead of the regular lanes.
		if ev.Kind == EventLevelChanged && ev.Next == ThreatCritical && cfg.Subsystems.Defense {
			e.retreatCivilians(snap, cfg)
		}
	}
	combat := level >= ThreatMedium

	// Lanes run on independent cadences; intervals are recomputed here, once
	// per pass, from the level just assessed.
	if cfg.Subsystems.Fire && e.sched.Due(LaneFire, laneInterval(combat, cfg.Intervals.FireCombat, cfg.Intervals.FirePeace)) {
		DetectFires(snap, e.queue, e.ledger, cfg.Backoff)
	}
	if e.sched.Due(LaneCommand, cfg.Intervals.Command) {
		if cfg.Subsystems.Medical {
			DetectRescues(snap, e.queue, e.ledger, cfg.Backoff)
			DetectMedical(snap, e.queue, e.ledger, cfg.Backoff)
		}
		EvaluateRules(e.rules, Env{State: *snap}, e.queue)
		e.runCommandPass(snap, cfg)
	}
	if cfg.Subsystems.Defense && e.sched.Due(LaneDefense, laneInterval(combat, cfg.Intervals.DefenseCombat, cfg.Intervals.DefensePeace)) {
		e.runDefensePass(snap, cfg)
	}
	if cfg.Subsystems.Equipment && e.sched.Due(LaneEquipment, cfg.Intervals.Equipment) {
		e.runEquipmentPass(snap, cfg)
	}
	if e.sched.Due(LaneSweep, cfg.Intervals.Sweep) {
		evicted := e.ledger.Sweep(snap.Tick, cfg.Backoff.SweepAfterTicks)
		e.warnGate.Sweep(snap.Tick, cfg.Backoff.SweepAfterTicks)
		if evicted > 0 {
			slog.Debug("cooldown ledger swept", "evicted", evicted, "remaining", e.ledger.Len())
		}
	}
}

func laneInterval(combat bool, combatInterval, peaceInterval int) int {
	if combat {
		return combatInterval
	}
	return peaceInterval
}

// runCommandPass drains the emergency queue and assigns each task.
func (e *Engine) runCommandPass(snap *model.Snapshot, cfg config.Config) {
	busy := make(map[int]bool)
	for _, task := range e.queue.DrainUpTo(cfg.Queue.DrainPerPass) {
		out := e.assignTask(task, snap, cfg, busy)
		e.settle(out, snap.Tick, LaneCommand, cfg)
	}
}

// assignTask runs the greedy match for one task. All skip/fail paths are
// explicit outcomes; nothing here may panic the pass.
func (e *Engine) assignTask(task EmergencyTask, snap *model.Snapshot, cfg config.Config, busy map[int]bool) Outcome {
	kind, ok := commandFor(task.Kind)
	if !ok {
		return Outcome{Task: task, Status: FailStructural, Detail: "no command for task kind"}
	}
	pos, ok := task.Target.Pos(snap)
	if !ok {
		return Outcome{Task: task, Status: SkipVanished}
	}
	// Re-check suppression at drain time: the target may have accumulated
	// failures between detection and execution.
	if e.ledger.Suppressed(task.Target, snap.Tick, cfg.Backoff.FailureThreshold, cfg.Backoff.WindowTicks) {
		return Outcome{Task: task, Status: SkipSuppressed}
	}

	cands := eligibleColonists(task, snap, busy)
	best, ok := pickBest(cands, pos, skillFor(task.Kind))
	if !ok {
		return Outcome{Task: task, Status: SkipNoCandidates}
	}
	if !e.terrain.Reachable(best.Pos(), pos) {
		return Outcome{Task: task, AgentID: best.ID, Status: SkipUnreachable,
			Detail: fmt.Sprintf("%s cannot reach target", best.Name)}
	}

	if !e.exec.TryIssue(Command{AgentID: best.ID, Kind: kind, Target: task.Target}) {
		return Outcome{Task: task, AgentID: best.ID, Status: FailRefused}
	}
	busy[best.ID] = true
	return Outcome{Task: task, AgentID: best.ID, Status: Assigned}
}

func commandFor(kind TaskKind) (CommandKind, bool) {
	switch kind {
	case TaskRescue:
		return CmdRescue, true
	case TaskMedical:
		return CmdTend, true
	case TaskFirefight:
		return CmdExtinguish, true
	default:
		return "", false
	}
}

// settle applies an outcome to the ledger and the telemetry sink.
func (e *Engine) settle(out Outcome, tick int, lane Lane, cfg config.Config) {
	target := out.Task.Target
	switch {
	case out.Status == Assigned:
		e.CommandsIssued++
		e.ledger.RecordSuccess(target, tick)
		slog.Debug("task assigned", "kind", string(out.Task.Kind), "target", target.String(), "agent", out.AgentID)
	case out.Status.Failed():
		e.CommandsRefused++
		e.ledger.RecordFailure(target, tick)
		e.rec.Failure(telemetry.FailureRecord{
			Tick: tick, Target: target.String(),
			Failures: e.ledger.Failures(target), Reason: string(out.Status),
		})
		if e.warnGate.Allow(target.String(), tick, cfg.Telemetry.WarnWindowTicks) {
			slog.Warn("task attempt failed",
				"kind", string(out.Task.Kind), "target", target.String(),
				"agent", out.AgentID, "status", string(out.Status),
				"failures", e.ledger.Failures(target))
		}
	case out.Status == FailStructural:
		slog.Error("malformed task abandoned",
			"kind", string(out.Task.Kind), "target", target.String(), "detail", out.Detail)
	}
	e.rec.Decision(telemetry.DecisionRecord{
		Tick: tick, Lane: string(lane), Kind: string(out.Task.Kind),
		AgentID: out.AgentID, Target: target.String(),
		Outcome: string(out.Status), Detail: out.Detail,
	})
}

// runDefensePass engages the nearest hostiles with the best-positioned
// armed colonists, scored by position utility rather than raw distance.
func (e *Engine) runDefensePass(snap *model.Snapshot, cfg config.Config) {
	if len(snap.Hostiles) == 0 {
		return
	}
	env := Env{State: *snap}
	center := env.colonyCenter()

	// Stable working set for the whole pass.
	hostiles := make([]model.Hostile, len(snap.Hostiles))
	copy(hostiles, snap.Hostiles)
	sortByDistance(hostiles, center)

	busy := make(map[int]bool)
	engaged := 0
	for _, h := range hostiles {
		if engaged >= cfg.Defense.BatchPerPass {
			break
		}
		target := TargetRef{TargetHostile, h.ID}
		if e.ledger.Suppressed(target, snap.Tick, cfg.Backoff.FailureThreshold, cfg.Backoff.WindowTicks) {
			continue
		}

		best, score := e.bestFighter(snap, h, busy, cfg.Scoring.Position)
		if best == nil {
			// Nobody has a line of fire from where they stand; try moving
			// one fighter to a cell that does.
			if !e.repositionFighter(snap, h, busy, cfg) {
				e.settle(Outcome{
					Task:   EmergencyTask{Kind: "defense", Target: target, Priority: PriorityEmergency},
					Status: SkipNoCandidates,
				}, snap.Tick, LaneDefense, cfg)
			}
			continue
		}

		out := Outcome{
			Task:    EmergencyTask{Kind: "defense", Target: target, Priority: PriorityEmergency},
			AgentID: best.ID,
			Detail:  fmt.Sprintf("position score %.2f", score),
		}
		if e.exec.TryIssue(Command{AgentID: best.ID, Kind: CmdAttack, Target: target}) {
			out.Status = Assigned
			busy[best.ID] = true
			engaged++
		} else {
			out.Status = FailRefused
		}
		e.settle(out, snap.Tick, LaneDefense, cfg)
	}
}

// bestFighter picks the armed colonist with the highest position score
// against the hostile. Fighters with no line of fire are disqualified.
func (e *Engine) bestFighter(snap *model.Snapshot, h model.Hostile, busy map[int]bool, cfg config.PositionConfig) (*model.Colonist, float64) {
	var best *model.Colonist
	bestScore := DisqualifiedScore
	for _, c := range fighters(snap, busy) {
		weaponRange := c.Weapon.Range
		score := ScorePosition(c.Pos(), c, h.Pos(), weaponRange, snap, e.terrain, cfg)
		if score <= DisqualifiedScore {
			continue
		}
		if best == nil || score > bestScore {
			cc := c
			best = &cc
			bestScore = score
		}
	}
	return best, bestScore
}

// repositionFighter moves the fighter nearest to the hostile onto the best
// nearby cell that has a line of fire. Returns false if no fighter or no
// scoring cell exists, in which case the hostile is simply skipped this pass.
func (e *Engine) repositionFighter(snap *model.Snapshot, h model.Hostile, busy map[int]bool, cfg config.Config) bool {
	cands := fighters(snap, busy)
	mover, ok := pickBest(cands, h.Pos(), func(model.Colonist) int { return 0 })
	if !ok {
		return false
	}

	var bestCell model.Point
	bestScore := DisqualifiedScore
	found := false
	for _, cell := range e.terrain.NeighborCenters(mover.Pos(), 2) {
		if !e.terrain.Reachable(mover.Pos(), cell) {
			continue
		}
		s := ScorePosition(cell, mover, h.Pos(), mover.Weapon.Range, snap, e.terrain, cfg.Scoring.Position)
		if s <= DisqualifiedScore || s <= bestScore {
			continue
		}
		bestCell, bestScore, found = cell, s, true
	}
	if !found {
		return false
	}

	target := TargetRef{TargetHostile, h.ID}
	out := Outcome{
		Task:    EmergencyTask{Kind: "reposition", Target: target, Priority: PriorityEmergency},
		AgentID: mover.ID,
		Detail:  fmt.Sprintf("move to %d,%d score %.2f", bestCell.X, bestCell.Y, bestScore),
	}
	if e.exec.TryIssue(Command{AgentID: mover.ID, Kind: CmdMoveTo, Target: target, Pos: bestCell}) {
		out.Status = Assigned
		busy[mover.ID] = true
	} else {
		out.Status = FailRefused
	}
	e.settle(out, snap.Tick, LaneDefense, cfg)
	return true
}

// retreatCivilians orders capable non-combatants away from the fight. Fired
// on the transition into critical threat, not every pass.
func (e *Engine) retreatCivilians(snap *model.Snapshot, cfg config.Config) {
	for _, c := range snap.Colonists {
		if !c.Capable() || (c.CanFight && c.Weapon != nil) {
			continue
		}
		if c.CurrentTask.InProgress && c.CurrentTask.Priority >= PriorityEmergency {
			continue
		}
		target := TargetRef{TargetColonist, c.ID}
		out := Outcome{
			Task:    EmergencyTask{Kind: "retreat", Target: target, Priority: PriorityEmergency},
			AgentID: c.ID,
		}
		if e.exec.TryIssue(Command{AgentID: c.ID, Kind: CmdRetreat, Target: target}) {
			out.Status = Assigned
		} else {
			out.Status = FailRefused
		}
		e.settle(out, snap.Tick, LaneDefense, cfg)
	}
}

// runEquipmentPass hands out at most BatchPerPass upgrade commands. Each
// item is claimed by at most one colonist per pass so two pawns never race
// for the same rifle.
func (e *Engine) runEquipmentPass(snap *model.Snapshot, cfg config.Config) {
	claimed := make(map[int]bool)
	busy := make(map[int]bool)
	issued := 0

	for _, c := range snap.Colonists {
		if issued >= cfg.Equipment.BatchPerPass {
			break
		}
		if busy[c.ID] || !c.Capable() {
			continue
		}
		if c.CurrentTask.InProgress && c.CurrentTask.Priority >= PriorityUrgent {
			continue
		}

		item, ok := e.bestUpgrade(c, snap, claimed, cfg)
		if !ok {
			continue
		}
		target := TargetRef{TargetItem, item.ID}
		if e.ledger.Suppressed(target, snap.Tick, cfg.Backoff.FailureThreshold, cfg.Backoff.WindowTicks) {
			continue
		}

		out := Outcome{
			Task:    EmergencyTask{Kind: "equip", Target: target, Priority: PriorityWork},
			AgentID: c.ID,
		}
		if e.exec.TryIssue(Command{AgentID: c.ID, Kind: CmdEquip, Target: target}) {
			out.Status = Assigned
			claimed[item.ID] = true
			busy[c.ID] = true
			issued++
		} else {
			out.Status = FailRefused
		}
		e.settle(out, snap.Tick, LaneEquipment, cfg)
	}
}

// bestUpgrade finds the highest-scoring reachable, unclaimed item that beats
// the colonist's current gear by the upgrade margin. Weapons are considered
// before armor; the first satisfying category wins.
func (e *Engine) bestUpgrade(c model.Colonist, snap *model.Snapshot, claimed map[int]bool, cfg config.Config) (model.Item, bool) {
	type slot struct {
		category string
		current  float64
		score    func(model.Item) float64
	}
	slots := []slot{
		{model.CategoryWeapon, currentScore(c.Weapon, c, cfg, ScoreWeapon), func(i model.Item) float64 { return ScoreWeapon(i, c, cfg.Scoring) }},
		{model.CategoryArmor, currentScore(c.Armor, c, cfg, ScoreArmor), func(i model.Item) float64 { return ScoreArmor(i, c, cfg.Scoring) }},
	}

	for _, s := range slots {
		var best model.Item
		bestScore := DisqualifiedScore
		found := false
		for _, item := range snap.Items {
			if item.Category != s.category || item.Reserved || claimed[item.ID] {
				continue
			}
			score := s.score(item)
			if score <= DisqualifiedScore || score <= bestScore {
				continue
			}
			if !e.terrain.Reachable(c.Pos(), item.Pos()) {
				continue
			}
			best, bestScore, found = item, score, true
		}
		if found && ShouldUpgrade(s.current, bestScore, cfg.Scoring.UpgradeMargin) {
			return best, true
		}
	}
	return model.Item{}, false
}

func currentScore(item *model.Item, c model.Colonist, cfg config.Config, scorer func(model.Item, model.Colonist, config.ScoringConfig) float64) float64 {
	if item == nil {
		return 0
	}
	return scorer(*item, c, cfg.Scoring)
}

// NoteResult feeds an asynchronous executor verdict back into the ledger.
// The host may accept a command at issue time and still refuse it later.
func (e *Engine) NoteResult(target TargetRef, accepted bool, tick int) {
	if accepted {
		e.ledger.RecordSuccess(target, tick)
		return
	}
	e.CommandsRefused++
	e.ledger.RecordFailure(target, tick)
	e.rec.Failure(telemetry.FailureRecord{
		Tick: tick, Target: target.String(),
		Failures: e.ledger.Failures(target), Reason: "host_rejected",
	})
}

func sortByDistance(hostiles []model.Hostile, from model.Point) {
	// Insertion sort keeps equal-distance order stable without pulling in a
	// comparator allocation for what is usually a handful of entries.
	for i := 1; i < len(hostiles); i++ {
		for j := i; j > 0 && model.Dist(hostiles[j].Pos(), from) < model.Dist(hostiles[j-1].Pos(), from); j-- {
			hostiles[j], hostiles[j-1] = hostiles[j-1], hostiles[j]
		}
	}
}
