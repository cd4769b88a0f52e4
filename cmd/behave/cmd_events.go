package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LouYuanbo1/pagebehavior/internal/domain/model"
	"github.com/LouYuanbo1/pagebehavior/internal/infra/persistence/es"
)

func newEventsCmd(a *app) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "events <session>",
		Short: "Print the behaviour events stored in Elasticsearch for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Elasticsearch.Enabled {
				return errors.New("配置中未启用 elasticsearch")
			}
			client, err := es.InitTypedEsClient[*model.BehaviorEventDoc](a.cfg, a.logger)
			if err != nil {
				return err
			}
			total, err := client.CountDocs(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := es.SessionEvents(cmd.Context(), client, args[0], size)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, doc := range docs {
				if err := enc.Encode(doc); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d events for session %s (%d in index)\n", len(docs), args[0], total)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 1000, "Maximum number of events to fetch")
	return cmd
}
