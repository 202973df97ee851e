package main

import (
	"io"
	"os"

	"github.com/arclight/tlrouter/config"
	"github.com/arclight/tlrouter/engine"
	"github.com/arclight/tlrouter/ingest"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func loadConfig(flags *commonFlags) (config.Config, error) {
	if flags.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(flags.configPath)
}

// buildEngine loads config, constructs an Engine, and ingests whichever of
// --nodes/--lights/--suburbs the caller supplied. Lights, if present, are
// associated to nodes immediately so a subsequent route/compute sees
// up-to-date Node.Flag values.
func buildEngine(logger *zap.Logger, flags *commonFlags, legacyNodeFormat bool) (*engine.Engine, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if legacyNodeFormat {
		cfg.NodeWireFormat = ingest.NodeFormatLegacy
	}
	e := engine.New(cfg, logger)

	if flags.nodesPath != "" {
		if err := ingestFile(flags.nodesPath, e.SendNodes); err != nil {
			return nil, err
		}
	}
	if flags.lightsPath != "" {
		if err := ingestFile(flags.lightsPath, e.SendTrafficLights); err != nil {
			return nil, err
		}
		e.AssociateLightsToNodes()
	}
	if flags.suburbsPath != "" {
		if err := ingestFile(flags.suburbsPath, e.SendSuburbs); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func ingestFile(path string, send func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return send(f)
}

func newIngestCmd(logger *zap.Logger, flags *commonFlags) *cobra.Command {
	var legacyNodeFormat bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "load a road network and report record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.nodesPath == "" {
				return cmd.Usage()
			}
			e, err := buildEngine(logger, flags, legacyNodeFormat)
			if err != nil {
				return err
			}
			cmd.Printf("nodes: %d\nlights: %d\nsuburbs: %d\n", e.NodeCount(), e.LightCount(), e.SuburbCount())
			return nil
		},
	}
	cmd.Flags().BoolVar(&legacyNodeFormat, "legacy-node-format", false, "decode --nodes using the pre-versioning record shape")
	return cmd
}
