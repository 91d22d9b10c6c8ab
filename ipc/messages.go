package ipc

// These constants must stay in sync with the message type enum in the host plugin.
const (
	TypeHello         = "hello"
	TypeAck           = "ack"
	TypeWorldState    = "world_state"
	TypeCommandResult = "command_result"
)

type HelloMessage struct {
	Colony  string       `json:"colony"`
	Tick    int          `json:"tick"`
	Terrain *TerrainData `json:"terrain,omitempty"`
}

// TerrainData carries the coarse passability grid from the host plugin.
// Optional — if absent the engine continues without terrain awareness.
type TerrainData struct {
	Cols  int   `json:"cols"`
	Rows  int   `json:"rows"`
	CellW int   `json:"cellW"`
	CellH int   `json:"cellH"`
	Grid  []int `json:"grid"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// CommandResultMessage reports the host's verdict on a previously sent
// command. Seq echoes the command's sequence number. A rejected command is a
// transient failure to the engine, never an error.
type CommandResultMessage struct {
	Seq      uint64 `json:"seq"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}
