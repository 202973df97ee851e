package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newComputeCmd(logger *zap.Logger, flags *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "map each ingested traffic light to its smallest containing suburb",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(logger, flags, false)
			if err != nil {
				return err
			}
			pairs, err := e.Compute()
			if err != nil {
				return err
			}
			for _, p := range pairs {
				cmd.Printf("%d -> %d\n", p.LightID, p.SuburbID)
			}
			return nil
		},
	}
}
