package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes decision and failure records as CSV. Write errors are
// logged and swallowed: telemetry must never fail a decision pass.
type OutputManager struct {
	dir          string
	decisionFile *os.File
	failureFile  *os.File

	decisionHeaderWritten bool
	failureHeaderWritten  bool
}

// NewOutputManager creates the output directory and CSV files.
// Returns nil if dir is empty (output disabled); a nil manager is valid and
// discards everything.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "decisions.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating decisions.csv: %w", err)
	}
	om.decisionFile = f

	f, err = os.Create(filepath.Join(dir, "failures.csv"))
	if err != nil {
		om.decisionFile.Close()
		return nil, fmt.Errorf("creating failures.csv: %w", err)
	}
	om.failureFile = f

	return om, nil
}

// Decision appends one decision record to decisions.csv.
func (om *OutputManager) Decision(d DecisionRecord) {
	if om == nil {
		return
	}
	records := []DecisionRecord{d}

	var err error
	if !om.decisionHeaderWritten {
		// First write includes headers
		err = gocsv.Marshal(records, om.decisionFile)
		om.decisionHeaderWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(records, om.decisionFile)
	}
	if err != nil {
		slog.Warn("writing decision record", "error", err)
	}
}

// Failure appends one failure record to failures.csv.
func (om *OutputManager) Failure(f FailureRecord) {
	if om == nil {
		return
	}
	records := []FailureRecord{f}

	var err error
	if !om.failureHeaderWritten {
		err = gocsv.Marshal(records, om.failureFile)
		om.failureHeaderWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(records, om.failureFile)
	}
	if err != nil {
		slog.Warn("writing failure record", "error", err)
	}
}

// Close flushes and closes the CSV files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	err1 := om.decisionFile.Close()
	err2 := om.failureFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
