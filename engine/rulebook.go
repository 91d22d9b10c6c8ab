package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/wardenlabs/warden-core/config"
)

// DetectionRule is an operator-authored emergency detector: a compiled expr
// condition plus a task template. Rules complement, never replace, the
// built-in detection passes.
type DetectionRule struct {
	Name         string
	Priority     int // higher = evaluated first
	Category     string
	Exclusive    bool // blocks lower-priority rules in the same category
	ConditionSrc string
	program      *vm.Program

	Kind         TaskKind
	Target       string // selector name, see resolveTarget
	TaskPriority int
}

// CompileRules compiles all rule conditions into expr bytecode and sorts by
// priority descending. A single bad rule fails the whole load — bad config
// should be caught at startup, not skipped silently every tick.
func CompileRules(cfgs []config.RuleConfig) ([]*DetectionRule, error) {
	rules := make([]*DetectionRule, 0, len(cfgs))
	for _, rc := range cfgs {
		kind, err := taskKindOf(rc.Task)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rc.Name, err)
		}
		prog, err := expr.Compile(rc.Condition, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile condition: %w", rc.Name, err)
		}
		prio := rc.TaskPrio
		if prio <= 0 {
			prio = PriorityUrgent
		}
		rules = append(rules, &DetectionRule{
			Name:         rc.Name,
			Priority:     rc.Priority,
			Category:     rc.Category,
			Exclusive:    rc.Exclusive,
			ConditionSrc: rc.Condition,
			program:      prog,
			Kind:         kind,
			Target:       rc.Target,
			TaskPriority: prio,
		})
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}

func taskKindOf(s string) (TaskKind, error) {
	switch TaskKind(s) {
	case TaskRescue, TaskMedical, TaskFirefight:
		return TaskKind(s), nil
	default:
		return "", fmt.Errorf("unknown task kind %q", s)
	}
}

// EvaluateRules runs the rules against the snapshot env in priority order
// with category-exclusive gating, enqueueing one task per fired rule.
// Condition errors skip the rule for this pass only. Returns how many tasks
// were actually enqueued (dedup may reject repeats).
func EvaluateRules(rules []*DetectionRule, env Env, queue *EmergencyQueue) int {
	fired := make(map[string]bool) // category → exclusive rule already fired
	enqueued := 0

	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		target, ok := resolveTarget(r.Target, env)
		if !ok {
			// Condition true but nothing to target; treat as not fired so
			// exclusivity doesn't mask lower rules.
			continue
		}

		slog.Debug("detection rule fired", "rule", r.Name, "target", target)
		if queue.Enqueue(EmergencyTask{
			Kind:     r.Kind,
			Target:   target,
			Priority: r.TaskPriority,
			Desc:     "rule:" + r.Name,
		}) {
			enqueued++
		}
		if r.Exclusive {
			fired[r.Category] = true
		}
	}
	return enqueued
}

// resolveTarget maps a selector name to a concrete target in the snapshot.
func resolveTarget(selector string, env Env) (TargetRef, bool) {
	switch selector {
	case "nearest_hostile":
		if h := env.nearestHostile(); h != nil {
			return TargetRef{TargetHostile, h.ID}, true
		}
	case "largest_fire":
		if f := env.largestFire(); f != nil {
			return TargetRef{TargetFire, f.ID}, true
		}
	case "first_downed":
		if c := env.firstDowned(); c != nil {
			return TargetRef{TargetColonist, c.ID}, true
		}
	case "first_bleeding":
		if c := env.firstBleeding(); c != nil {
			return TargetRef{TargetColonist, c.ID}, true
		}
	default:
		slog.Warn("unknown target selector", "selector", selector)
	}
	return TargetRef{}, false
}
