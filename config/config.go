// Package config provides configuration loading and access for the engine.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tasking-engine parameters. The engine reads one Config
// value at the start of each decision pass and never caches it beyond the
// pass, so edits picked up by the provider take effect on the next pass.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Subsystems SubsystemsConfig `yaml:"subsystems"`
	Queue      QueueConfig      `yaml:"queue"`
	Backoff    BackoffConfig    `yaml:"backoff"`
	Threat     ThreatConfig     `yaml:"threat"`
	Intervals  IntervalsConfig  `yaml:"intervals"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Equipment  EquipmentConfig  `yaml:"equipment"`
	Defense    DefenseConfig    `yaml:"defense"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Rules      []RuleConfig     `yaml:"rules"`
}

// SubsystemsConfig enables or disables whole decision lanes.
type SubsystemsConfig struct {
	Defense   bool `yaml:"defense"`
	Fire      bool `yaml:"fire"`
	Medical   bool `yaml:"medical"`
	Equipment bool `yaml:"equipment"`
}

type QueueConfig struct {
	MaxPending   int `yaml:"max_pending"`    // hard cap on queued emergencies
	DrainPerPass int `yaml:"drain_per_pass"` // tasks executed per command pass
}

type BackoffConfig struct {
	FailureThreshold int `yaml:"failure_threshold"` // failures before suppression
	WindowTicks      int `yaml:"window_ticks"`      // suppression window after last attempt
	SweepAfterTicks  int `yaml:"sweep_after_ticks"` // evict ledger entries idle this long
}

// ThreatConfig maps raw world counts to threat levels. Counts at or above
// each bound produce at least that level.
type ThreatConfig struct {
	FireMedium   int `yaml:"fire_medium"`
	FireHigh     int `yaml:"fire_high"`
	FireCritical int `yaml:"fire_critical"`

	HostileMedium   int `yaml:"hostile_medium"`
	HostileHigh     int `yaml:"hostile_high"`
	HostileCritical int `yaml:"hostile_critical"`

	BleedingMedium int `yaml:"bleeding_medium"`
	BleedingHigh   int `yaml:"bleeding_high"`
}

// IntervalsConfig sets per-lane re-evaluation cadences in ticks. Combat
// variants apply when the last assessed threat is Medium or above.
type IntervalsConfig struct {
	DefensePeace  int `yaml:"defense_peace"`
	DefenseCombat int `yaml:"defense_combat"`
	FirePeace     int `yaml:"fire_peace"`
	FireCombat    int `yaml:"fire_combat"`
	Command       int `yaml:"command"`
	Equipment     int `yaml:"equipment"`
	Sweep         int `yaml:"sweep"`
}

// ScoringConfig holds the utility-scoring weights and hysteresis margins.
// Defaults preserve the tuning constants of the original behavior rather
// than re-deriving them.
type ScoringConfig struct {
	UpgradeMargin     float64 `yaml:"upgrade_margin"`      // candidate must beat current*margin
	DiscardHPFraction float64 `yaml:"discard_hp_fraction"` // below this condition an item scores 0 power

	WeaponConditionWeight float64 `yaml:"weapon_condition_weight"`
	WeaponQualityWeight   float64 `yaml:"weapon_quality_weight"`
	WeaponDamageWeight    float64 `yaml:"weapon_damage_weight"`

	ArmorConditionWeight float64 `yaml:"armor_condition_weight"`
	ArmorQualityWeight   float64 `yaml:"armor_quality_weight"`
	ArmorRatingWeight    float64 `yaml:"armor_rating_weight"`

	Position PositionConfig `yaml:"position"`
}

type PositionConfig struct {
	IdealRangeFraction float64 `yaml:"ideal_range_fraction"` // ideal distance = weapon range * this
	DistancePenalty    float64 `yaml:"distance_penalty"`     // per cell away from ideal
	CoverBonus         float64 `yaml:"cover_bonus"`
	CrowdRadius        float64 `yaml:"crowd_radius"` // allies within this radius crowd the cell
	CrowdPenalty       float64 `yaml:"crowd_penalty"`
}

type EquipmentConfig struct {
	BatchPerPass int `yaml:"batch_per_pass"` // equip commands per equipment pass
}

type DefenseConfig struct {
	BatchPerPass int `yaml:"batch_per_pass"` // engage commands per defense pass
}

type TelemetryConfig struct {
	Dir             string `yaml:"dir"`               // empty disables CSV output
	WarnWindowTicks int    `yaml:"warn_window_ticks"` // min ticks between repeated-failure warnings per target
}

// RuleConfig is an operator-authored detection rule. Condition is expr source
// evaluated against the snapshot env; when true, a task is enqueued for the
// target chosen by the named selector.
type RuleConfig struct {
	Name      string `yaml:"name"`
	Priority  int    `yaml:"priority"`
	Category  string `yaml:"category"`
	Exclusive bool   `yaml:"exclusive"`
	Condition string `yaml:"condition"`
	Task      string `yaml:"task"`     // rescue | medical | firefight
	Target    string `yaml:"target"`   // nearest_hostile | largest_fire | first_downed | first_bleeding
	TaskPrio  int    `yaml:"task_priority"`
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
