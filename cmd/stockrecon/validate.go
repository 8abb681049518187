package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iho/stockrecon/internal/adapter/ledgerfile"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [ledger]",
		Short: "Check every ledger entry without producing a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.buildPipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer p.Close()

			src := ledgerfile.NewSource(a.ledgerPath(args))
			raws, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}

			entries, err := p.reconciler.Validate(cmd.Context(), raws)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "%s: %d entries OK\n", src.Path(), len(entries))
			return nil
		},
	}
}
