package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/drblury/fakeflow"
)

func newValidateCommand(opts *globalOptions) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration without producing anything",
		Long:  "Validate the settings, compile every field rule and check that the transport is registered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := fakeflow.LoadConfig(configPath)
			if err != nil {
				return err
			}
			log, err := opts.logger(cmd)
			if err != nil {
				return err
			}
			if !fakeflow.DefaultTransportRegistry.Has(conf.PubSubSystem) {
				return fmt.Errorf("unknown transport %q", conf.PubSubSystem)
			}

			// A discarding sink compiles the rules without connecting anywhere.
			discard := fakeflow.FuncSink(func(context.Context, fakeflow.Record) error { return nil })
			g, err := fakeflow.NewGenerator(cmd.Context(), conf, log, fakeflow.GeneratorDependencies{
				Sink:              discard,
				MetricsRegisterer: prometheus.NewRegistry(),
			})
			if err != nil {
				return err
			}
			defer g.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d field rules, transport %s, topic %s)\n",
				configPath, len(conf.FieldRules), conf.PubSubSystem, conf.Topic)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML configuration")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
