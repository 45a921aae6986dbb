package main

import (
	"forumdump/pkg/archiver"
	"forumdump/pkg/ui"

	"github.com/spf13/cobra"
)

func newJSONCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "json <baseURL>",
		Short: "Crawl categories, subcategories and topics into the JSON archive",
		Long: `Crawl the forum depth-first and store every API response under <output>/<host>/.

Topics listed by a category but by none of its subcategories are stored under
<category>/_topics_without_a_subcategory/. Resources already on disk are not
requested again.`,
		Example: `  forumdump json https://forum.example.com
  forumdump json https://forum.example.com --output ./archives --delay 1s`,
		Args: requireBaseURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.setup(cmd, nil)
			if err != nil {
				return err
			}

			a, err := archiver.New(cfg, args[0], log)
			if err != nil {
				return err
			}
			ui.PrintInfo("Forum", args[0])
			ui.PrintInfo("Archive", a.HostDir())

			report, stats, err := a.Crawl(cmd.Context())
			if err != nil {
				log.WithError(err).Error("crawl failed")
				return err
			}

			ui.PrintSummary("Crawl summary",
				ui.Stat{Label: "categories", Value: report.Categories},
				ui.Stat{Label: "subcategories", Value: report.Subcategories},
				ui.Stat{Label: "topics", Value: report.Topics},
				ui.Stat{Label: "loners", Value: report.Loners},
				ui.Stat{Label: "dropped", Value: report.Dropped},
				ui.Stat{Label: "fetched", Value: stats.Fetched},
				ui.Stat{Label: "skipped", Value: stats.Skipped},
				ui.Stat{Label: "unavailable", Value: stats.Unavailable},
			)
			ui.PrintSuccess("Crawl completed")
			return nil
		},
	}
}
