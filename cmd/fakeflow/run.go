package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/drblury/fakeflow"
)

type runOptions struct {
	configPath string
	count      int
	seed       uint64
	schedule   string
	pubsub     string
	topic      string
}

func newRunCommand(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate records and publish them",
		Long: `Generate records from a configuration file and publish them to the configured
transport. The run stops after target_count records, on SIGINT/SIGTERM, or never
when target_count is 0. With a schedule the run is repeated on every cron tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cmd, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.configPath, "config", "c", "", "Path to the YAML configuration")
	cmd.Flags().IntVar(&ro.count, "count", 0, "Override target_count (0 runs until stopped)")
	cmd.Flags().Uint64Var(&ro.seed, "seed", 0, "Override seed for a reproducible run")
	cmd.Flags().StringVar(&ro.schedule, "schedule", "", "Override schedule with a cron expression")
	cmd.Flags().StringVar(&ro.pubsub, "pubsub", "", "Override pubsub_system")
	cmd.Flags().StringVar(&ro.topic, "topic", "", "Override topic")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

// loadConfig reads the file and applies only the flags the user set, so a
// zero flag value never clobbers the file.
func (ro *runOptions) loadConfig(cmd *cobra.Command) (*fakeflow.Config, error) {
	conf, err := fakeflow.LoadConfig(ro.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("count") {
		conf.TargetCount = ro.count
	}
	if flags.Changed("seed") {
		conf.Seed = ro.seed
	}
	if flags.Changed("schedule") {
		conf.Schedule = ro.schedule
	}
	if flags.Changed("pubsub") {
		conf.PubSubSystem = ro.pubsub
	}
	if flags.Changed("topic") {
		conf.Topic = ro.topic
	}
	return conf, nil
}

func runGenerate(ctx context.Context, cmd *cobra.Command, opts *globalOptions, ro *runOptions) error {
	conf, err := ro.loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := opts.logger(cmd)
	if err != nil {
		return err
	}

	if conf.MetricsEnabled {
		go func() {
			if err := fakeflow.ServeMetrics(ctx, conf.MetricsPort, nil, log); err != nil {
				log.Error("Metrics server failed", err, fakeflow.LogFields{"port": conf.MetricsPort})
			}
		}()
	}

	if conf.Schedule == "" {
		return generateOnce(ctx, conf, log)
	}
	return runScheduled(ctx, conf, log)
}

func generateOnce(ctx context.Context, conf *fakeflow.Config, log fakeflow.ServiceLogger) error {
	g, err := fakeflow.NewGenerator(ctx, conf, log, fakeflow.GeneratorDependencies{})
	if err != nil {
		return err
	}
	runErr := g.Run(ctx)
	return errors.Join(runErr, g.Close())
}

// runScheduled starts a fresh generator on every tick. A tick that fires while
// the previous run is still producing is skipped.
func runScheduled(ctx context.Context, conf *fakeflow.Config, log fakeflow.ServiceLogger) error {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))
	_, err := c.AddFunc(conf.Schedule, func() {
		if err := generateOnce(ctx, conf, log); err != nil {
			log.Error("Scheduled run failed", err, fakeflow.LogFields{"schedule": conf.Schedule})
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", conf.Schedule, err)
	}

	c.Start()
	log.Info("Generator scheduled", fakeflow.LogFields{"schedule": conf.Schedule})
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's logr-style calls into the service logger.
type cronLogger struct {
	log fakeflow.ServiceLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, err, fields(keysAndValues))
}

func fields(keysAndValues []any) fakeflow.LogFields {
	out := make(fakeflow.LogFields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
