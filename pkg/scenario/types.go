// Package scenario defines the declarative YAML document cmd/netfabric-demo
// can load with --scenario, as an alternative to spelling every server,
// client, and call out as flags.
package scenario

// Scenario is a complete declarative netfabric-demo run.
type Scenario struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata carries a scenario's identifying information.
type Metadata struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Spec describes the fabric topology, policy, and scripted calls.
type Spec struct {
	// Servers to mount, each with an Echo.Call handler.
	Servers []ServerSpec `yaml:"servers"`

	// Clients to create, each connected to one server by name.
	Clients []ClientSpec `yaml:"clients"`

	// Policy is the fault policy applied before the script runs.
	Policy PolicySpec `yaml:"policy"`

	// Script is the ordered list of calls to make. If empty, the demo
	// falls back to its built-in round-robin script.
	Script []CallSpec `yaml:"script,omitempty"`
}

// ServerSpec names one server to mount on the Network.
type ServerSpec struct {
	Name string `yaml:"name"`
}

// ClientSpec names one client end and the server it connects to.
type ClientSpec struct {
	Name       string `yaml:"name"`
	ConnectsTo string `yaml:"connects_to"`
	Enabled    bool   `yaml:"enabled"`
}

// PolicySpec mirrors netfabric.PolicyConfig's Policy block.
type PolicySpec struct {
	Reliable       bool `yaml:"reliable"`
	LongDelays     bool `yaml:"long_delays"`
	LongReordering bool `yaml:"long_reordering"`
}

// CallSpec is one scripted ClientEnd.Call.
type CallSpec struct {
	Client  string `yaml:"client"`
	Service string `yaml:"service"`
	Method  string `yaml:"method"`
	Payload string `yaml:"payload"`
}
