// Package validator checks a scenario.Scenario for issues before
// cmd/netfabric-demo wires it up into a live Network — unknown client
// targets, duplicate server names, missing script fields — so a typo
// in a scenario file fails fast instead of surfacing as a confusing
// runtime timeout.
package validator

import (
	"fmt"
	"strings"

	"github.com/jihwankim/netfabric/pkg/scenario"
)

// Validator accumulates fatal errors and non-fatal warnings while
// checking a Scenario.
type Validator struct {
	Warnings []string
	Errors   []string
}

// New builds an empty Validator.
func New() *Validator {
	return &Validator{Warnings: make([]string, 0), Errors: make([]string, 0)}
}

// Validate checks s, returning an error if any fatal issue was found.
// Non-fatal issues accumulate in v.Warnings and do not fail the call.
func (v *Validator) Validate(s *scenario.Scenario) error {
	v.Warnings = v.Warnings[:0]
	v.Errors = v.Errors[:0]

	v.validateMetadata(s)
	v.validateServers(s)
	v.validateClients(s)
	v.validateScript(s)

	if len(v.Errors) > 0 {
		return fmt.Errorf("validation failed with %d error(s)", len(v.Errors))
	}
	return nil
}

// HasWarnings reports whether the last Validate call produced warnings.
func (v *Validator) HasWarnings() bool { return len(v.Warnings) > 0 }

// Report renders the accumulated errors and warnings as plain text.
func (v *Validator) Report() string {
	var sb strings.Builder
	if len(v.Errors) > 0 {
		sb.WriteString("ERRORS:\n")
		for _, e := range v.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}
	if len(v.Warnings) > 0 {
		sb.WriteString("WARNINGS:\n")
		for _, w := range v.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", w)
		}
	}
	return sb.String()
}

func (v *Validator) validateMetadata(s *scenario.Scenario) {
	if s.Metadata.Name == "" {
		v.Errors = append(v.Errors, "metadata.name is required")
	}
}

func (v *Validator) validateServers(s *scenario.Scenario) {
	if len(s.Spec.Servers) == 0 {
		v.Errors = append(v.Errors, "spec.servers must have at least one entry")
		return
	}
	seen := make(map[string]bool, len(s.Spec.Servers))
	for i, srv := range s.Spec.Servers {
		if srv.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.servers[%d].name is required", i))
			continue
		}
		if seen[srv.Name] {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.servers[%d] reuses name %q; the later mount replaces the earlier one", i, srv.Name))
		}
		seen[srv.Name] = true
	}
}

func (v *Validator) validateClients(s *scenario.Scenario) {
	servers := make(map[string]bool, len(s.Spec.Servers))
	for _, srv := range s.Spec.Servers {
		servers[srv.Name] = true
	}

	if len(s.Spec.Clients) == 0 {
		v.Errors = append(v.Errors, "spec.clients must have at least one entry")
		return
	}
	for i, c := range s.Spec.Clients {
		if c.Name == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.clients[%d].name is required", i))
		}
		if c.ConnectsTo == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.clients[%d].connects_to is required", i))
			continue
		}
		if !servers[c.ConnectsTo] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.clients[%d].connects_to references unknown server %q", i, c.ConnectsTo))
		}
		if !c.Enabled {
			v.Warnings = append(v.Warnings, fmt.Sprintf("spec.clients[%d] (%s) starts disabled; its calls will synthesize timeouts until enabled", i, c.Name))
		}
	}
}

func (v *Validator) validateScript(s *scenario.Scenario) {
	clients := make(map[string]bool, len(s.Spec.Clients))
	for _, c := range s.Spec.Clients {
		clients[c.Name] = true
	}
	for i, call := range s.Spec.Script {
		if call.Client == "" || !clients[call.Client] {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.script[%d].client references unknown client %q", i, call.Client))
		}
		if call.Service == "" || call.Method == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("spec.script[%d] requires both service and method", i))
		}
	}
}
