package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProgressFormat selects how live scenario progress is rendered.
type ProgressFormat string

const (
	ProgressFormatText ProgressFormat = "text"
	ProgressFormatJSON ProgressFormat = "json"
	ProgressFormatTUI  ProgressFormat = "tui"
)

// ProgressReporter narrates a cmd/netfabric-demo scenario run call-by-call
// while it executes, ahead of the final ScenarioReport.
type ProgressReporter struct {
	format ProgressFormat
	logger *Logger
}

// NewProgressReporter builds a ProgressReporter for the given format.
func NewProgressReporter(format ProgressFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger}
}

// ReportPolicyChange narrates a call to SetReliable/SetLongReordering/SetLongDelays.
func (pr *ProgressReporter) ReportPolicyChange(knob string, value bool) {
	switch pr.format {
	case ProgressFormatJSON:
		pr.printJSON(map[string]interface{}{
			"event": "policy_change",
			"knob":  knob,
			"value": value,
		})
	case ProgressFormatTUI:
		pr.clearLine()
		fmt.Printf("⚙ %s -> %t\n", knob, value)
	default:
		fmt.Printf("[POLICY] %s -> %t\n", knob, value)
	}
}

// ReportCallOutcome narrates one scripted ClientEnd.Call's result as it
// completes.
func (pr *ProgressReporter) ReportCallOutcome(c CallOutcome) {
	switch pr.format {
	case ProgressFormatJSON:
		pr.printJSON(map[string]interface{}{
			"event": "call_outcome",
			"call":  c,
		})
	case ProgressFormatTUI:
		pr.clearLine()
		if c.Success {
			fmt.Printf("✓ %s -> %s (%s)\n", c.EndName, c.FQName, c.Elapsed)
		} else {
			fmt.Printf("✗ %s -> %s: %s (%s)\n", c.EndName, c.FQName, c.Error, c.Elapsed)
		}
	default:
		if c.Success {
			fmt.Printf("[CALL] OK   %s -> %s (%s)\n", c.EndName, c.FQName, c.Elapsed)
		} else {
			fmt.Printf("[CALL] FAIL %s -> %s: %s (%s)\n", c.EndName, c.FQName, c.Error, c.Elapsed)
		}
	}
}

// ReportRunCompleted narrates the final outcome of a scenario run.
func (pr *ProgressReporter) ReportRunCompleted(r *ScenarioReport) {
	switch pr.format {
	case ProgressFormatJSON:
		pr.printJSON(map[string]interface{}{
			"event":  "run_completed",
			"report": r,
		})
	case ProgressFormatTUI:
		pr.clearLine()
		pr.printTUISummary(r)
	default:
		pr.printTextSummary(r)
	}
}

func (pr *ProgressReporter) printJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		if pr.logger != nil {
			pr.logger.Error("failed to marshal progress event", Err(err))
		}
		return
	}
	fmt.Println(string(data))
}

func (pr *ProgressReporter) printTUISummary(r *ScenarioReport) {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  Scenario: %s (%s)\n", r.Scenario, r.RunID)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("Status:   %s\n", r.Status)
	fmt.Printf("Duration: %s\n", r.Duration)
	fmt.Printf("Calls:    %d/%d succeeded\n", r.SuccessCount(), len(r.Calls))
	fmt.Println(strings.Repeat("-", 72))
}

func (pr *ProgressReporter) printTextSummary(r *ScenarioReport) {
	fmt.Printf("\n[RUN SUMMARY] %s\n", r.Status)
	fmt.Printf("  Scenario: %s\n", r.Scenario)
	fmt.Printf("  Run ID:   %s\n", r.RunID)
	fmt.Printf("  Duration: %s\n", r.Duration)
	fmt.Printf("  Calls:    %d/%d succeeded\n", r.SuccessCount(), len(r.Calls))
	fmt.Println()
}

func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
