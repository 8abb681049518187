package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRatesCmd(a *app) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "rates YYYY-MM-DD",
		Short: "Show the USD-based exchange rates used for a date",
		Long: `Looks up the exchange-rate table for a date through the configured
rate cache, fetching and storing it on a miss.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q: want YYYY-MM-DD", args[0])
			}

			p, err := a.buildPipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer p.Close()

			table, err := p.provider.Rates(cmd.Context(), day)
			if err != nil {
				return err
			}

			if currency != "" {
				code := strings.ToUpper(currency)
				rate, ok := table[code]
				if !ok {
					return fmt.Errorf("no %s rate for %s", code, args[0])
				}
				fmt.Fprintf(a.stdout, "%s\t%s\n", code, rate.String())
				return nil
			}

			codes := make([]string, 0, len(table))
			for code := range table {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "1 USD on %s\n", args[0])
			for _, code := range codes {
				fmt.Fprintf(tw, "%s\t%s\n", code, table[code].String())
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&currency, "currency", "c", "", "Print only this currency")
	return cmd
}
