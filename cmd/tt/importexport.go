package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/tech"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection to a JSON file",
		Long:  "Writes a versioned JSON snapshot of every tracked technology. The default filename is tech-tracker-export-<date>.json in the current directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, outPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default tech-tracker-export-<date>.json)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, outPath string) error {
	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}

	now := time.Now()
	data, err := tech.Export(col.List(), now)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = tech.ExportFilename(now)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d technologies to %s\n", len(col.List()), outPath)
	return nil
}

func newImportCmd() *cobra.Command {
	var (
		configPath string
		mode       string
	)

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import technologies from a JSON export",
		Long: "Validates and imports a JSON export. The whole file is checked before anything changes: one bad record " +
			"aborts the import. --mode picks what happens to your current list: replace it, or append the imported records after it " +
			"(append keeps duplicate ids as-is).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0], mode)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&mode, "mode", "", "merge mode: replace or append (required)")
	cmd.MarkFlagRequired("mode")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, path, modeArg string) error {
	mode, err := tech.ParseMergeMode(modeArg)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	if err := tech.CheckImportFile(path, info.Size()); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	records, err := tech.DecodeImport(data, time.Now())
	if err != nil {
		return err
	}

	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}
	total, err := col.Merge(records, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d technologies (%d total)\n", len(records), total)
	return nil
}

func newRoadmapCmd() *cobra.Command {
	var (
		configPath string
		mode       string
	)

	cmd := &cobra.Command{
		Use:   "roadmap <frontend|backend|fullstack>",
		Short: "Install a predefined roadmap",
		Long:  "Adds a predefined learning roadmap to the collection. Roadmap records carry fixed ids and are excluded from your personal statistics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoadmap(cmd, configPath, args[0], mode)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&mode, "mode", string(tech.MergeAppend), "merge mode: replace or append")
	return cmd
}

func runRoadmap(cmd *cobra.Command, configPath, name, modeArg string) error {
	mode, err := tech.ParseMergeMode(modeArg)
	if err != nil {
		return err
	}
	records, err := tech.Roadmap(name)
	if err != nil {
		return err
	}

	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}
	total, err := col.Merge(records, mode)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s roadmap: %d technologies (%d total)\n", name, len(records), total)
	return nil
}
