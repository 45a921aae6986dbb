package main

import (
	"forumdump/pkg/archiver"
	"forumdump/pkg/ui"

	"github.com/spf13/cobra"
)

func newPicsCmd(flags *globalFlags) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "pics <baseURL>",
		Short: "Download the largest variant of every image in the archived posts",
		Long: `Scan the JSON archive of the forum for <img srcset> elements and download the
highest-scale candidate of each one next to the topic that references it.

Images already on disk are skipped unless --overwrite is given.`,
		Example: `  forumdump pics https://forum.example.com
  forumdump pics https://forum.example.com --overwrite`,
		Args: requireBaseURL,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra map[string]interface{}
			if cmd.Flags().Changed("overwrite") {
				extra = map[string]interface{}{"overwrite": overwrite}
			}

			cfg, log, err := flags.setup(cmd, extra)
			if err != nil {
				return err
			}

			a, err := archiver.New(cfg, args[0], log)
			if err != nil {
				return err
			}
			ui.PrintInfo("Archive", a.HostDir())

			walk, summary, err := a.Pictures(cmd.Context())
			if err != nil {
				log.WithError(err).Error("image download failed")
				return err
			}

			ui.PrintSummary("Image summary",
				ui.Stat{Label: "topics", Value: walk.Topics},
				ui.Stat{Label: "images", Value: summary.Total},
				ui.Stat{Label: "saved", Value: summary.Saved},
				ui.Stat{Label: "skipped", Value: summary.Skipped},
				ui.Stat{Label: "failed", Value: summary.Failed},
				ui.Stat{Label: "bad artifacts", Value: walk.Skipped},
			)
			ui.PrintSuccess("Image download completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "download images even if the file already exists")
	return cmd
}
