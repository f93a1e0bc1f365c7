package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/dashboard"
	"github.com/techtrail/techtrail/internal/news"
	"github.com/techtrail/techtrail/internal/notify"
	"github.com/techtrail/techtrail/internal/profile"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long:  "Serves the Techtrail dashboard with a live collection view, import/export, news feed and auto-refresh. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, kv, col, err := openCollection(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Dashboard.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := news.NewFetcher(cfg.News)
	if _, err := fetcher.StartAutoRefresh(ctx, cfg.News.RefreshCron); err != nil {
		return err
	}

	notifier := notify.New(cfg.Notify, func() bool {
		return profile.LoadSettings(kv).Notifications
	})

	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop.")
	return dashboard.Start(ctx, dashboard.StartOpts{
		Deps: dashboard.Deps{
			Collection: col,
			KV:         kv,
			News:       fetcher,
			Notifier:   notifier,
		},
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
