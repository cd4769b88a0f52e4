package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/LouYuanbo1/pagebehavior/internal/infra/crawler/collector"
	"github.com/LouYuanbo1/pagebehavior/internal/service/behavior"
)

func newPlanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <url>",
		Short: "Fetch the static HTML of a page and list what the click engine would click",
		Long: `plan downloads the page without a browser, runs one discovery pass over the
static markup and prints the matched rules and every element that would be
clicked. Content rendered by scripts is not visible to plan.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := collector.InitCollyCrawler(a.cfg, a.logger)
			if err != nil {
				return err
			}
			plan, err := behavior.PlanPage(cmd.Context(), fetcher, a.table, args[0], a.logger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
}
