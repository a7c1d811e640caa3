package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/drblury/fakeflow"
)

func newSampleCommand(opts *globalOptions) *cobra.Command {
	var (
		configPath string
		count      int
		seed       uint64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print generated records to stdout",
		Long:  "Generate a few records from a configuration and print them as indented JSON without publishing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}
			conf, err := fakeflow.LoadConfig(configPath)
			if err != nil {
				return err
			}
			conf.TargetCount = count
			conf.Interval = 0
			conf.Schedule = ""
			if cmd.Flags().Changed("seed") {
				conf.Seed = seed
			}
			log, err := opts.logger(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sink := fakeflow.FuncSink(func(_ context.Context, rec fakeflow.Record) error {
				data, err := fakeflow.MarshalIndent(rec.Plain(), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			})
			g, err := fakeflow.NewGenerator(cmd.Context(), conf, log, fakeflow.GeneratorDependencies{
				Sink:              sink,
				MetricsRegisterer: prometheus.NewRegistry(),
			})
			if err != nil {
				return err
			}
			runErr := g.Run(cmd.Context())
			return errors.Join(runErr, g.Close())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of records to print")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible sample")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
