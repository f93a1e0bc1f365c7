package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/config"
	"github.com/techtrail/techtrail/internal/store"
	"github.com/techtrail/techtrail/internal/tech"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tt",
		Short: "Techtrail — track your progress learning technologies",
		Long:  "Techtrail keeps a local list of technologies you are learning: statuses, notes, roadmaps, import/export and a tech news feed.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newNotesCmd())
	cmd.AddCommand(newBulkStatusCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newRandomCmd())
	cmd.AddCommand(newCompleteAllCmd())
	cmd.AddCommand(newResetAllCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newRoadmapCmd())
	cmd.AddCommand(newNewsCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tt %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// openCollection loads config, opens the storage namespace and the
// technology collection. Shared by every state-touching command.
func openCollection(configPath string) (*config.Config, *store.Store, *tech.Collection, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	kv, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, kv, tech.Open(kv), nil
}

// addConfigFlag registers the shared --config flag.
func addConfigFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "techtrail.yaml", "path to Techtrail config file")
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
