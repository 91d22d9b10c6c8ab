package agent

import (
	"log/slog"

	"github.com/wardenlabs/warden-core/engine"
	"github.com/wardenlabs/warden-core/ipc"
)

// maxPending bounds the in-flight command table; the host normally answers
// every command, but a buggy plugin must not leak memory here.
const maxPending = 1024

// commandSender is the ipc-backed executor. TryIssue reports whether the
// command made it onto the wire; the host's definitive accept/reject arrives
// later as a command_result keyed by Seq.
type commandSender struct {
	conn    *ipc.Connection
	seq     uint64
	pending map[uint64]engine.TargetRef
}

func newCommandSender(conn *ipc.Connection) *commandSender {
	return &commandSender{conn: conn, pending: make(map[uint64]engine.TargetRef)}
}

func (s *commandSender) TryIssue(cmd engine.Command) bool {
	s.seq++
	seq := s.seq

	var err error
	switch cmd.Kind {
	case engine.CmdRescue:
		err = s.conn.Send(ipc.TypeRescue, ipc.RescueCommand{Seq: seq, ActorID: cmd.AgentID, TargetID: cmd.Target.ID})
	case engine.CmdTend:
		err = s.conn.Send(ipc.TypeTend, ipc.TendCommand{Seq: seq, ActorID: cmd.AgentID, TargetID: cmd.Target.ID})
	case engine.CmdExtinguish:
		err = s.conn.Send(ipc.TypeExtinguish, ipc.ExtinguishCommand{Seq: seq, ActorID: cmd.AgentID, FireID: cmd.Target.ID})
	case engine.CmdEquip:
		err = s.conn.Send(ipc.TypeEquip, ipc.EquipCommand{Seq: seq, ActorID: cmd.AgentID, ItemID: cmd.Target.ID})
	case engine.CmdAttack:
		err = s.conn.Send(ipc.TypeAttack, ipc.AttackCommand{Seq: seq, ActorID: cmd.AgentID, TargetID: cmd.Target.ID})
	case engine.CmdMoveTo:
		err = s.conn.Send(ipc.TypeMoveTo, ipc.MoveToCommand{Seq: seq, ActorID: cmd.AgentID, X: cmd.Pos.X, Y: cmd.Pos.Y})
	case engine.CmdRetreat:
		err = s.conn.Send(ipc.TypeRetreat, ipc.RetreatCommand{Seq: seq, ActorID: cmd.AgentID})
	default:
		slog.Error("unknown command kind", "kind", string(cmd.Kind))
		return false
	}
	if err != nil {
		slog.Warn("command send failed", "kind", string(cmd.Kind), "agent", cmd.AgentID, "error", err)
		return false
	}

	if len(s.pending) < maxPending {
		s.pending[seq] = cmd.Target
	}
	return true
}

// take removes and returns the target recorded for a command sequence.
func (s *commandSender) take(seq uint64) (engine.TargetRef, bool) {
	target, ok := s.pending[seq]
	if ok {
		delete(s.pending, seq)
	}
	return target, ok
}
