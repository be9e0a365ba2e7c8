package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "netfabric-demo",
	Short: "Drive scripted calls through an in-process netfabric Network",
	Long: `netfabric-demo builds a netfabric Network, mounts a handful of
toy servers and client ends on it, and fires a scripted batch of RPCs
through it under a configurable fault policy (drops, delays,
reordering), producing a ScenarioReport of what happened.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file for workers and logging (default: none, built-in defaults); its policy values are replaced by the run's flags or --scenario")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
