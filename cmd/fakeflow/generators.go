package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drblury/fakeflow"
)

func newGeneratorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generators [family...]",
		Short: "List the generator references usable in field rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := fakeflow.DefaultGeneratorRegistry
			families := args
			if len(families) == 0 {
				families = registry.Families()
			}
			out := cmd.OutOrStdout()
			for _, family := range families {
				methods := registry.Methods(family)
				if len(methods) == 0 {
					return fmt.Errorf("%w: %s", fakeflow.ErrUnknownGenerator, family)
				}
				fmt.Fprintf(out, "%s: %s\n", family, strings.Join(methods, ", "))
			}
			return nil
		},
	}
}

func newTransportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transports",
		Short: "List the registered transports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range fakeflow.DefaultTransportRegistry.Names() {
				caps := fakeflow.DefaultTransportRegistry.GetCapabilities(name)
				fmt.Fprintf(out, "%s\tdurable=%t\tordering=%t\n", name, caps.Durable, caps.SupportsOrdering)
			}
			return nil
		},
	}
}
