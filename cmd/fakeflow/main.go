package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/drblury/fakeflow"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel  string
	logFormat string
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "fakeflow",
		Short: "Synthetic event generator",
		Long: `fakeflow builds fake records from a list of field rules and publishes them
to a message broker, a database or a file. Rules reference generators such as
"Name.first_name" or hold literals that may interpolate earlier fields with %{field}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newSampleCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newGeneratorsCommand())
	rootCmd.AddCommand(newTransportsCommand())

	return rootCmd
}

// logger writes to the command's error stream so stdout stays clean for
// commands that print records.
func (o *globalOptions) logger(cmd *cobra.Command) (fakeflow.ServiceLogger, error) {
	log, err := fakeflow.NewLogger(cmd.ErrOrStderr(), fakeflow.LogOptions{Level: o.logLevel, Format: o.logFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
