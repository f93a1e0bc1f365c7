package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/profile"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsThemeCmd())
	cmd.AddCommand(newSettingsNotificationsCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, kv, _, err := openCollection(configPath)
			if err != nil {
				return err
			}
			settings := profile.LoadSettings(kv)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Theme:         %s\n", settings.Theme)
			fmt.Fprintf(out, "Notifications: %v\n", settings.Notifications)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newSettingsThemeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "theme <dark|light>",
		Short: "Set the dashboard theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, kv, _, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := profile.SaveTheme(kv, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", args[0])
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newSettingsNotificationsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "notifications <on|off>",
		Short: "Toggle milestone notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("want on or off, got %q", args[0])
			}
			_, kv, _, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := profile.SaveNotifications(kv, enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notifications %s\n", args[0])
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
