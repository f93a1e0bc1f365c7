package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/profile"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var (
		configPath string
		username   string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the local profile",
		Long:  "Stores the session locally. Any non-empty username and password are accepted: there is no account server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath, username, password)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted without echo when omitted)")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath, username, password string) error {
	out := cmd.OutOrStdout()

	if username == "" {
		fmt.Fprint(out, "Username: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if password == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprint(out, "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = string(raw)
		} else {
			reader := bufio.NewReader(cmd.InOrStdin())
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
	}

	_, kv, _, err := openCollection(configPath)
	if err != nil {
		return err
	}
	if err := profile.Login(kv, username, password); err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as %s\n", strings.TrimSpace(username))
	return nil
}

func newLogoutCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, kv, _, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := profile.Logout(kv); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, kv, _, err := openCollection(configPath)
			if err != nil {
				return err
			}
			session := profile.LoadSession(kv)
			out := cmd.OutOrStdout()
			if !session.LoggedIn {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "Logged in as %s\n", session.Username)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
