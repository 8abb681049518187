package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iho/stockrecon/internal/adapter/ledgerfile"
	"github.com/iho/stockrecon/internal/adapter/report"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		format   string
		textfile string
	)

	cmd := &cobra.Command{
		Use:   "report [ledger]",
		Short: "Reconcile the ledger and print the profit and inventory report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := report.New(format)
			if err != nil {
				return err
			}
			if textfile != "" {
				a.cfg.MetricsTextfile = textfile
			}

			p, err := a.buildPipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.reconciler.ReconcileSource(cmd.Context(), ledgerfile.NewSource(a.ledgerPath(args)))
			a.writeMetrics(p)
			if err != nil {
				return err
			}

			if err := renderer.Render(a.stdout, result.Summary); err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatText,
		fmt.Sprintf("Output format: %s", strings.Join(report.Formats(), ", ")))
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "Write run metrics to this node-exporter textfile (overrides METRICS_TEXTFILE)")

	return cmd
}
