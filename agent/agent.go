// Package agent owns one colony session: it binds the ipc connection to a
// tasking engine and feeds executor verdicts back into it.
package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/engine"
	"github.com/wardenlabs/warden-core/ipc"
	"github.com/wardenlabs/warden-core/model"
	"github.com/wardenlabs/warden-core/telemetry"
)

// Agent owns the decision-making for a single colony session.
type Agent struct {
	Conn   *ipc.Connection
	Colony string
	Engine *engine.Engine

	sender   *commandSender
	stats    telemetry.PassStats
	lastTick int
}

// New wires a fresh engine to the connection. provider supplies the config
// for each decision pass; rec may be nil to disable CSV telemetry.
func New(conn *ipc.Connection, provider func() config.Config, rec telemetry.Recorder) (*Agent, error) {
	sender := newCommandSender(conn)
	eng := engine.New(sender, provider, rec)

	// Operator rules compile once per session; a bad rule set is a startup
	// error, not something to trip over every tick.
	rules, err := engine.CompileRules(provider().Rules)
	if err != nil {
		return nil, fmt.Errorf("compile detection rules: %w", err)
	}
	eng.SetRules(rules)

	return &Agent{Conn: conn, Engine: eng, sender: sender}, nil
}

// HandleHello completes the handshake so the host knows the sidecar is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Colony = hello.Colony
	a.Conn.Colony = hello.Colony
	if hello.Terrain != nil {
		a.Engine.SetTerrain(terrainGrid(hello.Terrain))
	}
	slog.Info("colony identified", "colony", a.Colony, "tick", hello.Tick, "terrain", hello.Terrain != nil)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleWorldState runs one decision pass against the pushed snapshot.
func (a *Agent) HandleWorldState(env ipc.Envelope) (*ipc.Envelope, error) {
	var snap model.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal world state: %w", err)
	}
	a.lastTick = snap.Tick

	start := time.Now()
	a.Engine.RunTick(&snap)
	a.stats.Record(float64(time.Since(start).Microseconds()) / 1000.0)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleCommandResult feeds the host's verdict on an issued command back into
// the engine's failure ledger.
func (a *Agent) HandleCommandResult(env ipc.Envelope) (*ipc.Envelope, error) {
	var res ipc.CommandResultMessage
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal command result: %w", err)
	}

	target, ok := a.sender.take(res.Seq)
	if !ok {
		slog.Warn("command result for unknown seq", "seq", res.Seq)
		return nil, nil
	}
	if !res.Accepted {
		slog.Debug("host rejected command", "seq", res.Seq, "target", target.String(), "reason", res.Reason)
	}
	a.Engine.NoteResult(target, res.Accepted, a.lastTick)
	return nil, nil
}

// LogSessionStats reports session totals; called once after the read loop
// ends.
func (a *Agent) LogSessionStats() {
	mean, stddev := a.stats.Summary()
	slog.Info("session ended",
		"colony", a.Colony,
		"passes", a.Engine.PassesRun,
		"issued", a.Engine.CommandsIssued,
		"refused", a.Engine.CommandsRefused,
		"pass_ms_mean", fmt.Sprintf("%.3f", mean),
		"pass_ms_stddev", fmt.Sprintf("%.3f", stddev),
	)
}

func terrainGrid(t *ipc.TerrainData) *model.TerrainGrid {
	grid := make([]model.ZoneType, len(t.Grid))
	for i, v := range t.Grid {
		grid[i] = model.ZoneType(v)
	}
	return &model.TerrainGrid{
		Cols:  t.Cols,
		Rows:  t.Rows,
		CellW: t.CellW,
		CellH: t.CellH,
		Grid:  grid,
	}
}
