package agent

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/wardenlabs/warden-core/config"
	"github.com/wardenlabs/warden-core/engine"
	"github.com/wardenlabs/warden-core/ipc"
	"github.com/wardenlabs/warden-core/model"
)

func testProvider(t *testing.T) func() config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	return func() config.Config { return *cfg }
}

// pipeAgent builds an agent over one end of an in-memory pipe and returns
// the host side for reading what the agent sends.
func pipeAgent(t *testing.T) (*Agent, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	a, err := New(ipc.NewConnection(client, nil), testProvider(t), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, server
}

func TestHandleHello(t *testing.T) {
	a, _ := pipeAgent(t)

	env, err := ipc.NewEnvelope(ipc.TypeHello, ipc.HelloMessage{
		Colony: "ridgewater",
		Tick:   10,
		Terrain: &ipc.TerrainData{
			Cols: 2, Rows: 2, CellW: 16, CellH: 16,
			Grid: []int{0, 2, 0, 0},
		},
	})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	resp, err := a.HandleHello(env)
	if err != nil {
		t.Fatalf("HandleHello failed: %v", err)
	}
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Errorf("expected ack response, got %+v", resp)
	}
	if a.Colony != "ridgewater" {
		t.Errorf("colony = %q, want ridgewater", a.Colony)
	}
}

func TestHandleWorldStateRunsPass(t *testing.T) {
	a, _ := pipeAgent(t)

	snap := model.Snapshot{Tick: 7, MapWidth: 50, MapHeight: 50}
	env, err := ipc.NewEnvelope(ipc.TypeWorldState, snap)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	resp, err := a.HandleWorldState(env)
	if err != nil {
		t.Fatalf("HandleWorldState failed: %v", err)
	}
	if resp == nil || resp.Type != ipc.TypeAck {
		t.Errorf("expected ack response, got %+v", resp)
	}
	if a.Engine.PassesRun != 1 {
		t.Errorf("PassesRun = %d, want 1", a.Engine.PassesRun)
	}
	if a.stats.Count() != 1 {
		t.Errorf("recorded %d pass durations, want 1", a.stats.Count())
	}
}

func TestHandleWorldStateMalformed(t *testing.T) {
	a, _ := pipeAgent(t)
	if _, err := a.HandleWorldState(ipc.Envelope{Type: ipc.TypeWorldState, Data: []byte("{")}); err == nil {
		t.Fatal("malformed world state accepted")
	}
}

func TestSenderIssuesWireCommands(t *testing.T) {
	a, host := pipeAgent(t)

	envc := make(chan ipc.Envelope, 1)
	go func() {
		env, err := ipc.ReadEnvelope(host)
		if err != nil {
			close(envc)
			return
		}
		envc <- env
	}()

	target := engine.TargetRef{Kind: engine.TargetColonist, ID: 5}
	if !a.sender.TryIssue(engine.Command{AgentID: 2, Kind: engine.CmdRescue, Target: target}) {
		t.Fatal("TryIssue reported failure on a healthy pipe")
	}

	env, ok := <-envc
	if !ok {
		t.Fatal("no envelope reached the host")
	}
	if env.Type != ipc.TypeRescue {
		t.Errorf("wire type = %q, want %q", env.Type, ipc.TypeRescue)
	}
	var cmd ipc.RescueCommand
	if err := json.Unmarshal(env.Data, &cmd); err != nil {
		t.Fatalf("unmarshal command: %v", err)
	}
	if cmd.Seq != 1 || cmd.ActorID != 2 || cmd.TargetID != 5 {
		t.Errorf("command = %+v", cmd)
	}
}

// The full async feedback loop: issue a command, then feed the host's
// rejection back and observe the failure land in the ledger.
func TestHandleCommandResultFeedsLedger(t *testing.T) {
	a, host := pipeAgent(t)

	go func() {
		ipc.ReadEnvelope(host) // drain the outgoing command
	}()

	target := engine.TargetRef{Kind: engine.TargetFire, ID: 9}
	if !a.sender.TryIssue(engine.Command{AgentID: 1, Kind: engine.CmdExtinguish, Target: target}) {
		t.Fatal("TryIssue failed")
	}

	env, err := ipc.NewEnvelope(ipc.TypeCommandResult, ipc.CommandResultMessage{
		Seq: 1, Accepted: false, Reason: "fire already out",
	})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if _, err := a.HandleCommandResult(env); err != nil {
		t.Fatalf("HandleCommandResult failed: %v", err)
	}

	if got := a.Engine.Ledger().Failures(target); got != 1 {
		t.Errorf("ledger failures = %d, want 1", got)
	}
	// The seq is consumed; a duplicate result must not double-count.
	if _, err := a.HandleCommandResult(env); err != nil {
		t.Fatalf("duplicate HandleCommandResult failed: %v", err)
	}
	if got := a.Engine.Ledger().Failures(target); got != 1 {
		t.Errorf("duplicate result double-counted: failures = %d", got)
	}
}

func TestHandleCommandResultUnknownSeq(t *testing.T) {
	a, _ := pipeAgent(t)
	env, err := ipc.NewEnvelope(ipc.TypeCommandResult, ipc.CommandResultMessage{Seq: 99, Accepted: true})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}
	if _, err := a.HandleCommandResult(env); err != nil {
		t.Fatalf("unknown seq should be ignored, got error: %v", err)
	}
}

func TestNewRejectsBadRules(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	cfg.Rules = []config.RuleConfig{
		{Name: "broken", Condition: "this is not expr >", Task: "rescue", Target: "first_downed"},
	}

	if _, err := New(ipc.NewConnection(client, nil), func() config.Config { return *cfg }, nil); err == nil {
		t.Fatal("bad rule set accepted at session start")
	}
}
