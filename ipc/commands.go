package ipc

// Command type constants — must stay in sync with the host plugin's executor.
const (
	TypeRescue     = "rescue"
	TypeTend       = "tend"
	TypeExtinguish = "extinguish"
	TypeEquip      = "equip"
	TypeAttack     = "attack"
	TypeMoveTo     = "move_to"
	TypeRetreat    = "retreat"
)

// Every command carries a Seq so the host's command_result can be matched
// back to the issuing decision.

type RescueCommand struct {
	Seq      uint64 `json:"seq"`
	ActorID  int    `json:"actor_id"`
	TargetID int    `json:"target_id"`
}

type TendCommand struct {
	Seq      uint64 `json:"seq"`
	ActorID  int    `json:"actor_id"`
	TargetID int    `json:"target_id"`
}

type ExtinguishCommand struct {
	Seq     uint64 `json:"seq"`
	ActorID int    `json:"actor_id"`
	FireID  int    `json:"fire_id"`
}

type EquipCommand struct {
	Seq     uint64 `json:"seq"`
	ActorID int    `json:"actor_id"`
	ItemID  int    `json:"item_id"`
}

type AttackCommand struct {
	Seq      uint64 `json:"seq"`
	ActorID  int    `json:"actor_id"`
	TargetID int    `json:"target_id"`
}

type MoveToCommand struct {
	Seq     uint64 `json:"seq"`
	ActorID int    `json:"actor_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type RetreatCommand struct {
	Seq     uint64 `json:"seq"`
	ActorID int    `json:"actor_id"`
}
