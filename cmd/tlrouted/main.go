// Command tlrouted is the local host process for the routing engine: it
// ingests a road network, then either finds a path between two coordinates
// or maps every traffic light to its containing suburb. It is scaffolding
// around the engine package, not the core library itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tlrouted: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	var flags commonFlags

	root := &cobra.Command{
		Use:   "tlrouted",
		Short: "host process for the time-dependent road routing engine",
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (defaults to built-in constants)")
	root.PersistentFlags().StringVar(&flags.nodesPath, "nodes", "", "node wire file (required)")
	root.PersistentFlags().StringVar(&flags.lightsPath, "lights", "", "traffic-light wire file")
	root.PersistentFlags().StringVar(&flags.suburbsPath, "suburbs", "", "suburb wire file")

	root.AddCommand(newIngestCmd(logger, &flags))
	root.AddCommand(newRouteCmd(logger, &flags))
	root.AddCommand(newComputeCmd(logger, &flags))
	return root
}

// commonFlags are the persistent, ingest-related flags every subcommand
// shares.
type commonFlags struct {
	configPath  string
	nodesPath   string
	lightsPath  string
	suburbsPath string
}
