package model

import "math"

// Snapshot is the point-in-time world state pushed by the host each tick.
// The engine never mutates it; all world changes go back through commands.
type Snapshot struct {
	Tick       int        `json:"tick"`
	RaidActive bool       `json:"raidActive"`
	Colonists  []Colonist `json:"colonists"`
	Hostiles   []Hostile  `json:"hostiles"`
	Fires      []Fire     `json:"fires"`
	Items      []Item     `json:"items"`
	MapWidth   int        `json:"mapWidth"`
	MapHeight  int        `json:"mapHeight"`
}

// Point is a map cell position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// TaskRef describes the work a colonist is currently performing, as reported
// by the host. Priority is the host's priority class for that work; InProgress
// means the task has passed its setup phase and should not be interrupted by
// equal-or-lower priority commands.
type TaskRef struct {
	Kind       string `json:"kind"`
	Priority   int    `json:"priority"`
	InProgress bool   `json:"inProgress"`
	TargetID   int    `json:"targetId"`
}

// Colonist is a simulated agent. The engine holds these only for the duration
// of one decision pass; only the ID survives across ticks (in cooldown keys).
type Colonist struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"maxHp"`
	Downed   bool   `json:"downed"`
	Bleeding bool   `json:"bleeding"`

	CanMove       bool `json:"canMove"`
	CanManipulate bool `json:"canManipulate"`
	CanFight      bool `json:"canFight"`

	Shooting int `json:"shooting"`
	Melee    int `json:"melee"`
	Medicine int `json:"medicine"`

	Weapon *Item `json:"weapon,omitempty"` // equipped weapon, nil if unarmed
	Armor  *Item `json:"armor,omitempty"`  // worn armor, nil if unarmored

	CurrentTask TaskRef `json:"currentTask"`
}

func (c Colonist) Pos() Point { return Point{c.X, c.Y} }

// Capable reports whether the colonist is a usable worker at all: alive
// enough to move and handle things. Downed colonists are targets, not workers.
func (c Colonist) Capable() bool {
	return !c.Downed && c.CanMove && c.CanManipulate
}

// Hostile is an enemy pawn or threat actor.
type Hostile struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
}

func (h Hostile) Pos() Point { return Point{h.X, h.Y} }

// Fire is a burning cell group.
type Fire struct {
	ID   int     `json:"id"`
	X    int     `json:"x"`
	Y    int     `json:"y"`
	Size float64 `json:"size"`
}

func (f Fire) Pos() Point { return Point{f.X, f.Y} }

// Item categories reported by the host.
const (
	CategoryWeapon = "weapon"
	CategoryArmor  = "armor"
)

// Item is a targetable piece of equipment lying on the map.
type Item struct {
	ID       int     `json:"id"`
	Category string  `json:"category"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	HP       int     `json:"hp"`
	MaxHP    int     `json:"maxHp"`
	Quality  int     `json:"quality"`  // 0 (awful) .. 6 (legendary)
	Damage   float64 `json:"damage"`   // weapons: damage per second
	Armor    float64 `json:"armor"`    // armor: protection rating 0..1
	Range    float64 `json:"range"`    // weapons: effective range in cells
	Reserved bool    `json:"reserved"` // host-side reservation by another job
}

func (i Item) Pos() Point { return Point{i.X, i.Y} }

// ConditionFraction is remaining durability, 0..1.
func (i Item) ConditionFraction() float64 {
	if i.MaxHP <= 0 {
		return 0
	}
	return float64(i.HP) / float64(i.MaxHP)
}

// ColonistByID returns the colonist with the given ID, or nil.
func (s *Snapshot) ColonistByID(id int) *Colonist {
	for idx := range s.Colonists {
		if s.Colonists[idx].ID == id {
			return &s.Colonists[idx]
		}
	}
	return nil
}

// HostileByID returns the hostile with the given ID, or nil.
func (s *Snapshot) HostileByID(id int) *Hostile {
	for idx := range s.Hostiles {
		if s.Hostiles[idx].ID == id {
			return &s.Hostiles[idx]
		}
	}
	return nil
}

// FireByID returns the fire with the given ID, or nil.
func (s *Snapshot) FireByID(id int) *Fire {
	for idx := range s.Fires {
		if s.Fires[idx].ID == id {
			return &s.Fires[idx]
		}
	}
	return nil
}

// ItemByID returns the item with the given ID, or nil.
func (s *Snapshot) ItemByID(id int) *Item {
	for idx := range s.Items {
		if s.Items[idx].ID == id {
			return &s.Items[idx]
		}
	}
	return nil
}

// BleedingColonists returns colonists that are bleeding but still standing.
// Downed colonists are handled by rescue, not medical.
func (s *Snapshot) BleedingColonists() []Colonist {
	var out []Colonist
	for _, c := range s.Colonists {
		if c.Bleeding && !c.Downed {
			out = append(out, c)
		}
	}
	return out
}

// DownedColonists returns colonists that need rescue.
func (s *Snapshot) DownedColonists() []Colonist {
	var out []Colonist
	for _, c := range s.Colonists {
		if c.Downed {
			out = append(out, c)
		}
	}
	return out
}
