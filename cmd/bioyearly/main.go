// Command bioyearly converts per-variable bioclimatic NetCDF time series into
// one multi-band GeoTIFF per year.
//
// Usage:
//
//	bioyearly [--input DIR] [--output DIR] [--strict] [--concurrency N]
//	bioyearly list [--output DIR] [--verbose]
//
// Settings not given as flags come from the environment (INPUT_DIR,
// OUTPUT_DIR, STRICT, CONCURRENCY, LOG_LEVEL, LOG_FORMAT, METRICS_TEXTFILE, ...).
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rtm0/bioyearly/internal/app"
	"github.com/rtm0/bioyearly/internal/config"
	"github.com/rtm0/bioyearly/internal/observability"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		a       *app.App
	)

	root := &cobra.Command{
		Use:   "bioyearly",
		Short: "Convert bioclimatic NetCDF time series into yearly multi-band GeoTIFFs",
		Long: `Reads one NetCDF file per bioclimatic variable (IPEDClim_BIO01.nc ...),
each holding a (year, lat, lon) grid, and writes one GeoTIFF per year with
one band per variable, then lists the files produced.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			a = app.New(cfg, logger, observability.NewMetrics(), cmd.OutOrStdout())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			convErr := a.Convert(cmd.Context())
			return errors.Join(convErr, a.List(verbose))
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the yearly GeoTIFFs already in the output directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.List(verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.String("input", "", "directory holding the per-variable NetCDF files (INPUT_DIR)")
	pf.String("output", "", "directory receiving the yearly GeoTIFFs (OUTPUT_DIR)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "list the bands of each GeoTIFF")
	root.Flags().Bool("strict", false, "fail when a file lacks its expected variable (STRICT)")
	root.Flags().IntP("concurrency", "j", 0, "number of years encoded in parallel (CONCURRENCY)")

	root.AddCommand(list)
	return root
}

// loadConfig reads the environment and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.InputDir, _ = fs.GetString("input")
	}
	if fs.Changed("output") {
		cfg.OutputDir, _ = fs.GetString("output")
	}
	if fs.Changed("strict") {
		cfg.Strict, _ = fs.GetBool("strict")
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency, _ = fs.GetInt("concurrency")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
