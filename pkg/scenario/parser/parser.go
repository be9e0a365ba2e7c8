// Package parser loads scenario.Scenario documents from YAML, supporting
// ${VAR} / $VAR substitution from the environment so a scenario file can
// be checked in while its per-run values come from the caller's shell.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/netfabric/pkg/scenario"
)

var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Parser parses scenario YAML, substituting variables before unmarshaling.
type Parser struct {
	Variables map[string]string
}

// New builds a Parser with optional substitution variables.
func New(variables map[string]string) *Parser {
	if variables == nil {
		variables = make(map[string]string)
	}
	return &Parser{Variables: variables}
}

// ParseFile reads path and parses it as a Scenario.
func (p *Parser) ParseFile(path string) (*scenario.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return p.Parse(data)
}

// Parse parses a Scenario from YAML bytes, after variable substitution.
func (p *Parser) Parse(data []byte) (*scenario.Scenario, error) {
	substituted := p.substituteVariables(string(data))

	var s scenario.Scenario
	if err := yaml.Unmarshal([]byte(substituted), &s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := p.validateRequiredFields(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Parser) substituteVariables(content string) string {
	return varPattern.ReplaceAllStringFunc(content, func(match string) string {
		var name string
		if strings.HasPrefix(match, "${") {
			name = match[2 : len(match)-1]
		} else {
			name = match[1:]
		}
		if val, ok := p.Variables[name]; ok {
			return val
		}
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// SetVariable sets a single substitution variable.
func (p *Parser) SetVariable(key, value string) {
	p.Variables[key] = value
}

// ApplyOverrides applies --set key=value CLI overrides onto a loaded
// Scenario. Only the top-level policy keys are supported; anything
// deeper would need a path-aware setter this CLI has no use for.
func ApplyOverrides(s *scenario.Scenario, overrides map[string]string) error {
	for key, value := range overrides {
		switch key {
		case "policy.reliable", "reliable":
			s.Spec.Policy.Reliable = value == "true"
		case "policy.long_delays", "long_delays":
			s.Spec.Policy.LongDelays = value == "true"
		case "policy.long_reordering", "long_reordering":
			s.Spec.Policy.LongReordering = value == "true"
		default:
			return fmt.Errorf("unsupported override key: %s", key)
		}
	}
	return nil
}

func (p *Parser) validateRequiredFields(s *scenario.Scenario) error {
	if s.APIVersion == "" {
		return fmt.Errorf("apiVersion is required")
	}
	if s.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if s.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}
	if len(s.Spec.Servers) == 0 {
		return fmt.Errorf("spec.servers is required and must have at least one entry")
	}
	if len(s.Spec.Clients) == 0 {
		return fmt.Errorf("spec.clients is required and must have at least one entry")
	}
	return nil
}
