package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/config"
	"github.com/techtrail/techtrail/internal/news"
)

func newNewsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Show the tech news feed",
		Long:  "Fetches headlines from the configured feed aggregators and GitHub release streams. Falls back to a built-in demo list when every source is unreachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNews(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runNews(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fetcher := news.NewFetcher(cfg.News)
	items := fetcher.Refresh(cmd.Context())

	out := cmd.OutOrStdout()
	if fetcher.LastUpdated() == "demo" {
		fmt.Fprintln(out, "All sources unreachable, showing the demo list.")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTITLE\tSOURCE\tDATE")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.Category, truncate(item.Title, 60), item.Source, item.Date)
	}
	w.Flush()
	return nil
}
