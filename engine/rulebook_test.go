package engine

import (
	"strings"
	"testing"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/model"
)

func TestCompileRulesSortsByPriority(t *testing.T) {
	rules, err := CompileRules([]config.RuleConfig{
		{Name: "low", Priority: 1, Condition: "FireCount() > 0", Task: "firefight", Target: "largest_fire"},
		{Name: "high", Priority: 10, Condition: "RaidActive()", Task: "rescue", Target: "first_downed"},
		{Name: "mid", Priority: 5, Condition: "BleedingCount() > 0", Task: "medical", Target: "first_bleeding"},
	})
	if err != nil {
		t.Fatalf("CompileRules failed: %v", err)
	}
	for i := 1; i < len(rules); i++ {
		if rules[i].Priority > rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				rules[i].Name, rules[i].Priority, rules[i-1].Name, rules[i-1].Priority)
		}
	}
}

func TestCompileRulesRejectsBadCondition(t *testing.T) {
	_, err := CompileRules([]config.RuleConfig{
		{Name: "broken", Condition: "NoSuchHelper() >", Task: "rescue", Target: "first_downed"},
	})
	if err == nil {
		t.Fatal("expected compile error for malformed condition")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the bad rule: %v", err)
	}
}

func TestCompileRulesRejectsUnknownTask(t *testing.T) {
	_, err := CompileRules([]config.RuleConfig{
		{Name: "bad-task", Condition: "Tick() > 0", Task: "teleport", Target: "first_downed"},
	})
	if err == nil {
		t.Fatal("expected error for unknown task kind")
	}
}

func TestCompileRulesDefaultTaskPriority(t *testing.T) {
	rules, err := CompileRules([]config.RuleConfig{
		{Name: "r", Condition: "Tick() > 0", Task: "medical", Target: "first_bleeding"},
	})
	if err != nil {
		t.Fatalf("CompileRules failed: %v", err)
	}
	if rules[0].TaskPriority != PriorityUrgent {
		t.Errorf("default task priority = %d, want %d", rules[0].TaskPriority, PriorityUrgent)
	}
}

func TestEvaluateRulesEnqueuesOnMatch(t *testing.T) {
	rules, err := CompileRules([]config.RuleConfig{
		{Name: "big-fire", Priority: 5, Condition: "FireCount() > 0", Task: "firefight", Target: "largest_fire"},
	})
	if err != nil {
		t.Fatalf("CompileRules failed: %v", err)
	}

	snap := model.Snapshot{Tick: 1, Fires: []model.Fire{{ID: 1, Size: 2}, {ID: 2, Size: 8}}}
	q := NewEmergencyQueue(8)
	if n := EvaluateRules(rules, Env{State: snap}, q); n != 1 {
		t.Fatalf("enqueued %d, want 1", n)
	}
	if !q.Contains(TaskFirefight, TargetRef{TargetFire, 2}) {
		t.Error("largest_fire selector did not pick the biggest fire")
	}
}

// An exclusive rule that fires blocks lower-priority rules in its category;
// other categories are untouched.
func TestEvaluateRulesExclusiveGating(t *testing.T) {
	rules, err := CompileRules([]config.RuleConfig{
		{Name: "fire-a", Priority: 10, Category: "fire", Exclusive: true,
			Condition: "FireCount() > 0", Task: "firefight", Target: "largest_fire"},
		{Name: "fire-b", Priority: 1, Category: "fire",
			Condition: "FireCount() > 0", Task: "medical", Target: "first_bleeding"},
		{Name: "med", Priority: 1, Category: "medical",
			Condition: "BleedingCount() > 0", Task: "medical", Target: "first_bleeding"},
	})
	if err != nil {
		t.Fatalf("CompileRules failed: %v", err)
	}

	bleeder := worker(1, 0, 0)
	bleeder.Bleeding = true
	snap := model.Snapshot{
		Tick:      1,
		Fires:     []model.Fire{{ID: 1, Size: 2}},
		Colonists: []model.Colonist{bleeder},
	}
	q := NewEmergencyQueue(8)
	if n := EvaluateRules(rules, Env{State: snap}, q); n != 2 {
		t.Fatalf("enqueued %d, want 2 (exclusive gates fire-b only)", n)
	}
	if !q.Contains(TaskFirefight, TargetRef{TargetFire, 1}) {
		t.Error("exclusive winner did not enqueue")
	}
	if !q.Contains(TaskMedical, TargetRef{TargetColonist, 1}) {
		t.Error("unrelated category was gated")
	}
}

// A rule whose condition holds but whose selector finds nothing must not
// count as fired, or its exclusivity would mask lower rules for free.
func TestEvaluateRulesNoTargetDoesNotGate(t *testing.T) {
	rules, err := CompileRules([]config.RuleConfig{
		{Name: "phantom", Priority: 10, Category: "fire", Exclusive: true,
			Condition: "Tick() > 0", Task: "rescue", Target: "first_downed"},
		{Name: "real", Priority: 1, Category: "fire",
			Condition: "FireCount() > 0", Task: "firefight", Target: "largest_fire"},
	})
	if err != nil {
		t.Fatalf("CompileRules failed: %v", err)
	}

	snap := model.Snapshot{Tick: 1, Fires: []model.Fire{{ID: 1, Size: 2}}}
	q := NewEmergencyQueue(8)
	if n := EvaluateRules(rules, Env{State: snap}, q); n != 1 {
		t.Fatalf("enqueued %d, want 1", n)
	}
	if !q.Contains(TaskFirefight, TargetRef{TargetFire, 1}) {
		t.Error("lower rule was gated by a rule that found no target")
	}
}

func TestEnvHelpers(t *testing.T) {
	armed := worker(1, 0, 0)
	armed.CanFight = true
	armed.Weapon = &model.Item{ID: 10}
	down := worker(2, 1, 1)
	down.Downed = true
	down.CanFight = true

	env := Env{State: model.Snapshot{
		Tick:      42,
		Colonists: []model.Colonist{armed, down},
		Hostiles:  []model.Hostile{{ID: 1, X: 9, Y: 9}},
	}}

	if env.Tick() != 42 {
		t.Errorf("Tick() = %d", env.Tick())
	}
	if env.ArmedCount() != 1 || env.UnarmedCount() != 0 {
		t.Errorf("ArmedCount/UnarmedCount = %d/%d, want 1/0", env.ArmedCount(), env.UnarmedCount())
	}
	if env.FightersDown() != 0.5 {
		t.Errorf("FightersDown() = %v, want 0.5", env.FightersDown())
	}
	if h := env.nearestHostile(); h == nil || h.ID != 1 {
		t.Error("nearestHostile missed the only hostile")
	}
}
