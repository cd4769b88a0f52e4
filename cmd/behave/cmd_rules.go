package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LouYuanbo1/pagebehavior/internal/behavior/click"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules <hostname>",
		Short: "Show the selectors that apply to a hostname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := a.table.Match(args[0])
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintf(out, "no rules for %s\n", args[0])
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SELECTOR\tMODE\tTHROTTLE")
			for _, r := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Selector, r.Flags, r.ThrottleOr(click.DefaultThrottle))
			}
			return w.Flush()
		},
	}
}
