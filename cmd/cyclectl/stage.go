package main

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
)

func newStageCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stage",
		Short: "Print the day, week and stage of a batch at a given instant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := g.location()
			if err != nil {
				return err
			}
			start, err := g.start(loc)
			if err != nil {
				return err
			}
			now, err := g.instant(loc)
			if err != nil {
				return err
			}

			cc, err := cycle.ContextAt(start, now, loc)
			if err != nil {
				return err
			}
			return g.render(cmd.OutOrStdout(), cc)
		},
	}
}
