package main

import (
	"fmt"

	"github.com/arclight/tlrouter/engine"
	"github.com/arclight/tlrouter/geom"
	"github.com/arclight/tlrouter/network"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func parseMethod(s string) (network.SearchMethod, error) {
	switch s {
	case "fastest", "":
		return network.Fastest, nil
	case "shortest":
		return network.Shortest, nil
	case "avoid":
		return network.Avoid, nil
	default:
		return 0, fmt.Errorf("unknown method %q (want fastest, shortest, or avoid)", s)
	}
}

func newRouteCmd(logger *zap.Logger, flags *commonFlags) *cobra.Command {
	var (
		srcX, srcY, dstX, dstY float64
		methodName             string
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "find a path between two coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := parseMethod(methodName)
			if err != nil {
				return err
			}

			e, err := buildEngine(logger, flags, false)
			if err != nil {
				return err
			}

			h := e.BuildSolver(method)
			if h == engine.InvalidHandle {
				return fmt.Errorf("route: no solver available (pool exhausted or no nodes ingested)")
			}
			defer e.DestroySolver(h)

			path, err := e.FindPath(h, geom.Position{X: srcX, Y: srcY}, geom.Position{X: dstX, Y: dstY})
			if err != nil {
				return err
			}
			if !path.Found() {
				cmd.Println("no path found")
				return nil
			}
			cmd.Printf("distance: %.3f\ntime: %.3fh\nnodes: %v\n", path.Distance, path.Time, path.Indices)
			return nil
		},
	}
	cmd.Flags().Float64Var(&srcX, "src-x", 0, "source longitude")
	cmd.Flags().Float64Var(&srcY, "src-y", 0, "source latitude")
	cmd.Flags().Float64Var(&dstX, "dst-x", 0, "destination longitude")
	cmd.Flags().Float64Var(&dstY, "dst-y", 0, "destination latitude")
	cmd.Flags().StringVar(&methodName, "method", "fastest", "fastest, shortest, or avoid")
	return cmd
}
