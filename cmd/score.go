package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/proxima-gis/proximity/internal/proximity"
)

var scoreRadius int

var scoreCmd = &cobra.Command{
	Use:   "score <address>",
	Short: "Score a single address and print the report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closer, err := newService(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		report, err := svc.Evaluate(cmd.Context(), args[0], scoreRadius)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	scoreCmd.Flags().IntVar(&scoreRadius, "radius", proximity.DefaultRadiusM, "search radius in meters (100-5000)")
	rootCmd.AddCommand(scoreCmd)
}
