package main

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/proxima-gis/proximity/internal/proximity"
)

var (
	batchRadius      int
	batchConcurrency int
)

// batchResult is one output line of the batch command.
type batchResult struct {
	Address string            `json:"address"`
	Report  *proximity.Report `json:"report,omitempty"`
	Error   string            `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score one address per line of a file, JSON lines to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addresses, err := readAddressFile(args[0])
		if err != nil {
			return err
		}
		if len(addresses) == 0 {
			return eris.New("batch: no addresses in file")
		}

		svc, closer, err := newService(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		zap.L().Info("batch scoring",
			zap.Int("addresses", len(addresses)),
			zap.Int("concurrency", batchConcurrency),
		)

		// Requests are independent; individual failures don't stop the batch.
		results := make([]batchResult, len(addresses))
		eg, ctx := errgroup.WithContext(cmd.Context())
		eg.SetLimit(batchConcurrency)
		for i, address := range addresses {
			i, address := i, address
			eg.Go(func() error {
				report, evalErr := svc.Evaluate(ctx, address, batchRadius)
				if evalErr != nil {
					results[i] = batchResult{Address: address, Error: evalErr.Error()}
					return nil
				}
				results[i] = batchResult{Address: address, Report: report}
				return nil
			})
		}
		_ = eg.Wait()

		enc := json.NewEncoder(os.Stdout)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return eris.Wrap(err, "batch: encode result")
			}
		}
		return nil
	},
}

// readAddressFile reads one address per line, skipping blanks and comments.
func readAddressFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var addresses []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addresses = append(addresses, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	return addresses, nil
}

func init() {
	batchCmd.Flags().IntVar(&batchRadius, "radius", proximity.DefaultRadiusM, "search radius in meters (100-5000)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "max parallel scoring pipelines")
	rootCmd.AddCommand(batchCmd)
}
