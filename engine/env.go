package engine

import (
	"github.com/wardenlabs/warden-core/model"
)

// Env wraps a snapshot and exposes helper methods callable from operator rule
// expressions.
type Env struct {
	State model.Snapshot
}

func (e Env) Tick() int          { return e.State.Tick }
func (e Env) RaidActive() bool   { return e.State.RaidActive }
func (e Env) HostileCount() int  { return len(e.State.Hostiles) }
func (e Env) FireCount() int     { return len(e.State.Fires) }
func (e Env) ColonistCount() int { return len(e.State.Colonists) }
func (e Env) DownedCount() int   { return len(e.State.DownedColonists()) }
func (e Env) BleedingCount() int { return len(e.State.BleedingColonists()) }

func (e Env) ArmedCount() int {
	n := 0
	for _, c := range e.State.Colonists {
		if !c.Downed && c.Weapon != nil {
			n++
		}
	}
	return n
}

func (e Env) UnarmedCount() int {
	n := 0
	for _, c := range e.State.Colonists {
		if !c.Downed && c.Weapon == nil {
			n++
		}
	}
	return n
}

// FightersDown reports the fraction of fight-capable colonists currently
// downed, 0..1. Useful for retreat-style rules.
func (e Env) FightersDown() float64 {
	total, down := 0, 0
	for _, c := range e.State.Colonists {
		if !c.CanFight {
			continue
		}
		total++
		if c.Downed {
			down++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(down) / float64(total)
}

// colonyCenter is the centroid of standing colonists, the reference point for
// "nearest" selectors. Falls back to map center with no colonists up.
func (e Env) colonyCenter() model.Point {
	sx, sy, n := 0, 0, 0
	for _, c := range e.State.Colonists {
		if c.Downed {
			continue
		}
		sx += c.X
		sy += c.Y
		n++
	}
	if n == 0 {
		return model.Point{X: e.State.MapWidth / 2, Y: e.State.MapHeight / 2}
	}
	return model.Point{X: sx / n, Y: sy / n}
}

// nearestHostile returns the hostile closest to the colony center, or nil.
func (e Env) nearestHostile() *model.Hostile {
	if len(e.State.Hostiles) == 0 {
		return nil
	}
	center := e.colonyCenter()
	best := &e.State.Hostiles[0]
	bestDist := model.Dist(best.Pos(), center)
	for i := range e.State.Hostiles[1:] {
		h := &e.State.Hostiles[i+1]
		if d := model.Dist(h.Pos(), center); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// largestFire returns the biggest fire by size, or nil.
func (e Env) largestFire() *model.Fire {
	if len(e.State.Fires) == 0 {
		return nil
	}
	best := &e.State.Fires[0]
	for i := range e.State.Fires[1:] {
		f := &e.State.Fires[i+1]
		if f.Size > best.Size {
			best = f
		}
	}
	return best
}

// firstDowned returns the first downed colonist in snapshot order, or nil.
func (e Env) firstDowned() *model.Colonist {
	for i := range e.State.Colonists {
		if e.State.Colonists[i].Downed {
			return &e.State.Colonists[i]
		}
	}
	return nil
}

// firstBleeding returns the first standing, bleeding colonist, or nil.
func (e Env) firstBleeding() *model.Colonist {
	for i := range e.State.Colonists {
		c := &e.State.Colonists[i]
		if c.Bleeding && !c.Downed {
			return c
		}
	}
	return nil
}
