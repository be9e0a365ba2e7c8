package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat selects how a ScenarioReport is rendered. Only text and
// JSON are supported; the demo CLI has no browser-facing surface an
// HTML report would serve.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Formatter renders ScenarioReport values as text or JSON.
type Formatter struct {
	logger *Logger
	format OutputFormat
}

// NewFormatter builds a Formatter for the given format, defaulting to text
// on an unrecognized value.
func NewFormatter(logger *Logger, format OutputFormat) *Formatter {
	f := &Formatter{logger: logger, format: FormatText}
	if format == FormatJSON {
		f.format = FormatJSON
	}
	return f
}

// Format renders r according to the Formatter's configured format.
func (f *Formatter) Format(r *ScenarioReport) (string, error) {
	switch f.format {
	case FormatJSON:
		return f.formatJSON(r)
	default:
		return f.formatText(r), nil
	}
}

func (f *Formatter) formatJSON(r *ScenarioReport) (string, error) {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		if f.logger != nil {
			f.logger.Error("failed to marshal scenario report", Str("run_id", r.RunID), Err(err))
		}
		return "", fmt.Errorf("reporting: marshal report: %w", err)
	}
	return string(buf), nil
}

func (f *Formatter) formatText(r *ScenarioReport) string {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Scenario:  %s\n", r.Scenario)
	fmt.Fprintf(&b, "Run ID:    %s\n", r.RunID)
	fmt.Fprintf(&b, "Status:    %s\n", r.Status)
	fmt.Fprintf(&b, "Duration:  %s\n", r.Duration)
	fmt.Fprintf(&b, "Policy:    reliable=%t long_delays=%t long_reordering=%t\n",
		r.Policy.Reliable, r.Policy.LongDelays, r.Policy.LongReordering)
	fmt.Fprintf(&b, "Calls:     %d total, %d succeeded, %d failed\n",
		len(r.Calls), r.SuccessCount(), len(r.Calls)-r.SuccessCount())
	fmt.Fprintf(&b, "Accepted:  %d\n", r.TotalAccepted)

	if len(r.ServerCounts) > 0 {
		b.WriteString("Server dispatch counts:\n")
		for name, count := range r.ServerCounts {
			fmt.Fprintf(&b, "  %-16s %d\n", name, count)
		}
	}

	if len(r.Calls) > 0 {
		b.WriteString("\nCall log:\n")
		for i, c := range r.Calls {
			status := "OK"
			detail := ""
			if !c.Success {
				status = "FAIL"
				detail = " (" + c.Error + ")"
			}
			fmt.Fprintf(&b, "  [%3d] %-4s %-8s -> %-24s %s%s\n",
				i, status, c.EndName, c.FQName, c.Elapsed, detail)
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
