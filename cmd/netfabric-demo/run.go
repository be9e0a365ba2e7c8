package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jihwankim/netfabric/pkg/netfabric"
	"github.com/jihwankim/netfabric/pkg/reporting"
	"github.com/jihwankim/netfabric/pkg/scenario"
	"github.com/jihwankim/netfabric/pkg/scenario/parser"
	"github.com/jihwankim/netfabric/pkg/scenario/validator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run a scripted batch of calls through a netfabric Network",
	Long: `Builds a Network, mounts toy servers and client ends on it, and fires
a scripted batch of calls under the configured fault policy. The topology
and script can be spelled out as flags, or loaded from a --scenario YAML
file for anything beyond the simplest round-robin shape.`,
	RunE: runDemo,
}

func init() {
	runCmd.Flags().String("scenario", "", "path to a scenario YAML file (overrides --servers/--clients and the policy flags; --calls still applies when the scenario has no script)")
	runCmd.Flags().StringArray("set", nil, "override scenario policy values (e.g. --set reliable=false)")
	runCmd.Flags().Int("servers", 3, "number of toy servers to mount")
	runCmd.Flags().Int("clients", 5, "number of client ends to create")
	runCmd.Flags().Int("calls", 50, "number of scripted calls to fire")
	runCmd.Flags().Int("disabled-ends", 0, "number of client ends to leave disabled, demonstrating a synthesized timeout")
	runCmd.Flags().Bool("reliable", true, "reliable network (no drops or short delays; reordering is set by --long-reordering)")
	runCmd.Flags().Bool("long-reordering", false, "enable long-reordering of replies")
	runCmd.Flags().Bool("long-delays", false, "enable long-delay policy knob")
	runCmd.Flags().Int("workers", 0, "processor pool size override (0 = auto-sized)")
	runCmd.Flags().String("format", "text", "progress/report output format (text, json, tui)")
	runCmd.Flags().String("output-dir", "./netfabric-reports", "directory scenario reports are saved under")
	runCmd.Flags().Bool("dry-run", false, "validate the topology and policy and exit without running anything")
}

// topology is the fully-resolved shape of a run, whether it came from
// --scenario or from the plain flag defaults.
type topology struct {
	name       string
	servers    []string
	clients    []scenario.ClientSpec
	policy     scenario.PolicySpec
	script     []scenario.CallSpec
	useDefault bool // true when the run has no script (no scenario file, or one without a script): synthesize one
}

func runDemo(cmd *cobra.Command, args []string) error {
	scenarioPath, _ := cmd.Flags().GetString("scenario")
	setFlags, _ := cmd.Flags().GetStringArray("set")
	workers, _ := cmd.Flags().GetInt("workers")
	format, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	calls, _ := cmd.Flags().GetInt("calls")

	logLevel := reporting.LogLevelInfo
	if verbose {
		logLevel = reporting.LogLevelDebug
	}
	logger := reporting.NewLogger(reporting.LoggerConfig{Level: logLevel, Format: reporting.LogFormatText})

	top, err := resolveTopology(cmd, scenarioPath, setFlags, logger)
	if err != nil {
		return err
	}

	cfg, err := netfabric.LoadPolicyConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load policy config: %w", err)
	}
	cfg.Network.Name = top.name
	cfg.Policy.Reliable = top.policy.Reliable
	cfg.Policy.LongReordering = top.policy.LongReordering
	cfg.Policy.LongDelays = top.policy.LongDelays
	if workers > 0 {
		cfg.Network.Workers = workers
	}
	if verbose {
		cfg.Logging.Level = netfabric.LogLevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid policy config: %w", err)
	}

	logger.Info("netfabric-demo starting",
		reporting.Str("version", version),
		reporting.Str("scenario", top.name),
		reporting.Int("servers", len(top.servers)),
		reporting.Int("clients", len(top.clients)))

	if dryRun {
		fmt.Println("topology and policy config are valid (dry-run)")
		return nil
	}

	net := netfabric.NewNetwork(cfg.Options()...)
	cfg.ApplyPolicy(net)

	for _, name := range top.servers {
		net.AddServer(buildEchoServer(name))
	}

	ends := make(map[string]*netfabric.ClientEnd, len(top.clients))
	orderedEndNames := make([]string, 0, len(top.clients))
	for _, c := range top.clients {
		end := net.CreateEnd(c.Name)
		net.Connect(c.Name, c.ConnectsTo)
		net.Enable(c.Name, c.Enabled)
		ends[c.Name] = end
		orderedEndNames = append(orderedEndNames, c.Name)
	}

	progress := reporting.NewProgressReporter(reporting.ProgressFormat(format), logger)

	report := &reporting.ScenarioReport{
		RunID:     uuid.New().String()[:8],
		Scenario:  top.name,
		StartTime: time.Now(),
	}
	report.Policy.Reliable = top.policy.Reliable
	report.Policy.LongDelays = top.policy.LongDelays
	report.Policy.LongReordering = top.policy.LongReordering

	progress.ReportPolicyChange("reliable", top.policy.Reliable)
	progress.ReportPolicyChange("long_reordering", top.policy.LongReordering)
	progress.ReportPolicyChange("long_delays", top.policy.LongDelays)

	script := top.script
	if top.useDefault {
		script = synthesizeScript(orderedEndNames, calls)
	}

	for _, call := range script {
		end, ok := ends[call.Client]
		if !ok {
			logger.Warn("script references unknown client, skipping", reporting.Str("client", call.Client))
			continue
		}
		fqName := netfabric.FQName(call.Service, call.Method)
		req := []byte(call.Payload)

		start := time.Now()
		reply, callErr := end.Call(fqName, req)
		elapsed := time.Since(start)

		outcome := reporting.CallOutcome{
			EndName: end.Name(),
			FQName:  fqName,
			Success: callErr == nil,
			Elapsed: elapsed,
		}
		if callErr != nil {
			outcome.Error = callErr.Error()
		} else {
			outcome.Success = outcome.Success && len(reply) > 0
		}

		report.Calls = append(report.Calls, outcome)
		progress.ReportCallOutcome(outcome)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime).String()
	report.Status = reporting.StatusCompleted
	report.TotalAccepted = net.TotalCount()

	report.ServerCounts = make(map[string]uint64, len(top.servers))
	for _, name := range top.servers {
		report.ServerCounts[name] = net.Count(name)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := net.Stop(stopCtx); err != nil {
		logger.Warn("network did not drain cleanly", reporting.Err(err))
		report.Errors = append(report.Errors, err.Error())
	}

	progress.ReportRunCompleted(report)

	storage, err := reporting.NewStorage(outputDir, 20, logger)
	if err != nil {
		return fmt.Errorf("failed to create report storage: %w", err)
	}
	path, err := storage.SaveReport(report)
	if err != nil {
		return fmt.Errorf("failed to save scenario report: %w", err)
	}
	logger.Info("scenario report saved", reporting.Str("path", path))

	return nil
}

// resolveTopology loads --scenario if given, else builds a topology from
// the --servers/--clients/--reliable/... flags.
func resolveTopology(cmd *cobra.Command, scenarioPath string, setFlags []string, logger *reporting.Logger) (*topology, error) {
	if scenarioPath == "" {
		servers, _ := cmd.Flags().GetInt("servers")
		clients, _ := cmd.Flags().GetInt("clients")
		disabledEnds, _ := cmd.Flags().GetInt("disabled-ends")
		reliable, _ := cmd.Flags().GetBool("reliable")
		longReordering, _ := cmd.Flags().GetBool("long-reordering")
		longDelays, _ := cmd.Flags().GetBool("long-delays")

		serverNames := make([]string, servers)
		for i := range serverNames {
			serverNames[i] = fmt.Sprintf("server-%d", i)
		}
		clientSpecs := make([]scenario.ClientSpec, clients)
		for i := range clientSpecs {
			clientSpecs[i] = scenario.ClientSpec{
				Name:       fmt.Sprintf("client-%d", i),
				ConnectsTo: serverNames[i%len(serverNames)],
				Enabled:    i >= disabledEnds,
			}
		}

		return &topology{
			name:    "netfabric-demo scripted run",
			servers: serverNames,
			clients: clientSpecs,
			policy: scenario.PolicySpec{
				Reliable:       reliable,
				LongDelays:     longDelays,
				LongReordering: longReordering,
			},
			useDefault: true,
		}, nil
	}

	p := parser.New(nil)
	s, err := p.ParseFile(scenarioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if len(setFlags) > 0 {
		overrides, err := parseSetFlags(setFlags)
		if err != nil {
			return nil, err
		}
		if err := parser.ApplyOverrides(s, overrides); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	v := validator.New()
	if err := v.Validate(s); err != nil {
		return nil, fmt.Errorf("scenario validation failed:\n%s", v.Report())
	}
	if v.HasWarnings() {
		logger.Warn("scenario has warnings", reporting.Str("detail", v.Report()))
	}

	serverNames := make([]string, len(s.Spec.Servers))
	for i, srv := range s.Spec.Servers {
		serverNames[i] = srv.Name
	}

	return &topology{
		name:       s.Metadata.Name,
		servers:    serverNames,
		clients:    s.Spec.Clients,
		policy:     s.Spec.Policy,
		script:     s.Spec.Script,
		useDefault: len(s.Spec.Script) == 0,
	}, nil
}

func parseSetFlags(setFlags []string) (map[string]string, error) {
	overrides := make(map[string]string, len(setFlags))
	for _, flag := range setFlags {
		var key, value string
		for i := 0; i < len(flag); i++ {
			if flag[i] == '=' {
				key, value = flag[:i], flag[i+1:]
				break
			}
		}
		if key == "" {
			return nil, fmt.Errorf("invalid override %q (expected key=value)", flag)
		}
		overrides[key] = value
	}
	return overrides, nil
}

func synthesizeScript(endNames []string, calls int) []scenario.CallSpec {
	script := make([]scenario.CallSpec, calls)
	for i := 0; i < calls; i++ {
		script[i] = scenario.CallSpec{
			Client:  endNames[i%len(endNames)],
			Service: "Echo",
			Method:  "Call",
			Payload: fmt.Sprintf("ping-%d", i),
		}
	}
	return script
}

func buildEchoServer(name string) *netfabric.Server {
	return netfabric.NewServerBuilder(name).
		AddHandler(netfabric.FQName("Echo", "Call"), func(req []byte) ([]byte, error) {
			reply := make([]byte, len(req))
			copy(reply, req)
			return reply, nil
		}).
		Build()
}
