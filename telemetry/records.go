// Package telemetry is the engine's side channel: structured CSV records of
// decisions and failures, rate-limited warning gates, and pass-duration
// stats. Nothing here may block or propagate errors back into the engine.
package telemetry

// DecisionRecord is one committed or skipped assignment decision.
type DecisionRecord struct {
	Tick    int    `csv:"tick"`
	Lane    string `csv:"lane"`
	Kind    string `csv:"kind"`
	AgentID int    `csv:"agent_id"`
	Target  string `csv:"target"`
	Outcome string `csv:"outcome"`
	Detail  string `csv:"detail"`
}

// FailureRecord is one recorded transient failure against a target.
type FailureRecord struct {
	Tick     int    `csv:"tick"`
	Target   string `csv:"target"`
	Failures int    `csv:"failures"`
	Reason   string `csv:"reason"`
}

// Recorder receives decision and failure records. Implementations must be
// cheap and must never return control-flow-altering signals to the caller.
type Recorder interface {
	Decision(d DecisionRecord)
	Failure(f FailureRecord)
}

// Nop discards all records; used when CSV output is disabled.
type Nop struct{}

func (Nop) Decision(DecisionRecord) {}
func (Nop) Failure(FailureRecord)   {}
