package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/model"
)

// DisqualifiedScore marks a structurally unusable candidate (no line of
// sight, broken item). Any finite real score beats it.
const DisqualifiedScore = -1e9

// qualityTiers is the number of item quality steps the host reports (awful
// through legendary), used to normalize the quality sub-score.
const qualityTiers = 6

// referenceDPS normalizes weapon damage into 0..1; anything at or above this
// counts as a top-tier weapon.
const referenceDPS = 30.0

// ScoreWeapon rates a weapon for a specific colonist. Pure; no side effects.
func ScoreWeapon(w model.Item, c model.Colonist, cfg config.ScoringConfig) float64 {
	cond := w.ConditionFraction()
	if cond <= 0 || cond < cfg.DiscardHPFraction {
		return DisqualifiedScore
	}
	// A good shot gets more out of a good gun; skill scales the damage term.
	skill := 0.5 + float64(c.Shooting)/20.0*0.5
	damage := math.Min(w.Damage/referenceDPS, 1.0) * skill

	subs := []float64{cond, float64(w.Quality) / qualityTiers, damage}
	weights := []float64{cfg.WeaponConditionWeight, cfg.WeaponQualityWeight, cfg.WeaponDamageWeight}
	return floats.Dot(subs, weights)
}

// ScoreArmor rates an armor piece for a specific colonist.
func ScoreArmor(a model.Item, c model.Colonist, cfg config.ScoringConfig) float64 {
	cond := a.ConditionFraction()
	if cond <= 0 || cond < cfg.DiscardHPFraction {
		return DisqualifiedScore
	}
	subs := []float64{cond, float64(a.Quality) / qualityTiers, math.Min(a.Armor, 1.0)}
	weights := []float64{cfg.ArmorConditionWeight, cfg.ArmorQualityWeight, cfg.ArmorRatingWeight}
	return floats.Dot(subs, weights)
}

// ShouldUpgrade applies the replacement hysteresis: the candidate must beat
// the current score by the configured multiplicative margin. Scores inside
// (current, current*margin] keep the current item, so two near-equal items
// can never flap back and forth across repeated evaluations.
func ShouldUpgrade(current, candidate float64, margin float64) bool {
	if current <= 0 {
		return candidate > current
	}
	return candidate > current*margin
}

// ScorePosition rates a firing cell for a shooter against a target. Line of
// sight is a hard disqualifier; the rest is a linear trade of cover,
// distance-from-ideal-range, and crowding. Pure; all tunables from config.
func ScorePosition(cell model.Point, shooter model.Colonist, target model.Point, weaponRange float64, snap *model.Snapshot, terrain *model.TerrainGrid, cfg config.PositionConfig) float64 {
	if !terrain.LineOfSight(cell, target) {
		return DisqualifiedScore
	}

	score := 0.0
	if terrain.CoverNear(cell) {
		score += cfg.CoverBonus
	}

	ideal := weaponRange * cfg.IdealRangeFraction
	score -= math.Abs(model.Dist(cell, target)-ideal) * cfg.DistancePenalty

	// Crowded cells funnel incoming fire and block pathing.
	for _, other := range snap.Colonists {
		if other.ID == shooter.ID || other.Downed {
			continue
		}
		if model.Dist(cell, other.Pos()) <= cfg.CrowdRadius {
			score -= cfg.CrowdPenalty
		}
	}
	return score
}
