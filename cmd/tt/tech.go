package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/techtrail/techtrail/internal/tech"
)

func newListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		search     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked technologies",
		Long:  "Lists technologies with optional status filtering and substring search. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, configPath, status, search)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&status, "status", tech.FilterAll, "filter by status (all, not-started, in-progress, completed)")
	cmd.Flags().StringVar(&search, "search", "", "substring search across title, description and notes")
	return cmd
}

func runList(cmd *cobra.Command, configPath, status, search string) error {
	if status != tech.FilterAll {
		if _, err := tech.ParseStatus(status); err != nil {
			return err
		}
	}

	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}

	records := tech.Project(col.List(), status, search)
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No technologies found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCATEGORY\tPRI\tNOTES")
	for _, t := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(t.Title, 40), t.Status, t.Category, t.Priority, truncate(t.Notes, 30))
	}
	w.Flush()
	return nil
}

func newAddCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		description string
		category    string
		difficulty  string
		priority    string
		deadline    string
		hours       int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a technology to track",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := tech.Technology{
				Title:          title,
				Description:    description,
				Category:       category,
				Difficulty:     difficulty,
				Deadline:       deadline,
				EstimatedHours: hours,
				Notes:          notes,
			}
			if priority != "" {
				p, err := tech.ParsePriority(priority)
				if err != nil {
					return err
				}
				t.Priority = p
			}
			return runAdd(cmd, configPath, t)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&title, "title", "", "technology title (required)")
	cmd.Flags().StringVar(&description, "description", "", "what to learn (required)")
	cmd.Flags().StringVar(&category, "category", "", "category (defaults to other)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty (defaults to beginner)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high, critical)")
	cmd.Flags().StringVar(&deadline, "deadline", "", "target date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&hours, "hours", 0, "estimated hours (1-1000)")
	cmd.Flags().StringVar(&notes, "notes", "", "initial notes")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	return cmd
}

func runAdd(cmd *cobra.Command, configPath string, t tech.Technology) error {
	if t.EstimatedHours < 0 || t.EstimatedHours > 1000 {
		return fmt.Errorf("estimated hours must be between 1 and 1000")
	}

	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}
	added, err := col.Add(t)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q with id %d\n", added.Title, added.ID)
	return nil
}

func newShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show technology details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runShow(cmd, configPath, id)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runShow(cmd *cobra.Command, configPath string, id int64) error {
	_, _, col, err := openCollection(configPath)
	if err != nil {
		return err
	}

	for _, t := range col.List() {
		if t.ID != id {
			continue
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:          %d\n", t.ID)
		fmt.Fprintf(out, "Title:       %s\n", t.Title)
		fmt.Fprintf(out, "Description: %s\n", t.Description)
		fmt.Fprintf(out, "Status:      %s\n", t.Status)
		fmt.Fprintf(out, "Category:    %s\n", t.Category)
		fmt.Fprintf(out, "Difficulty:  %s\n", t.Difficulty)
		fmt.Fprintf(out, "Priority:    %s\n", t.Priority)
		if t.Deadline != "" {
			fmt.Fprintf(out, "Deadline:    %s\n", t.Deadline)
		}
		if t.EstimatedHours > 0 {
			fmt.Fprintf(out, "Est. hours:  %d\n", t.EstimatedHours)
		}
		if t.Notes != "" {
			fmt.Fprintf(out, "Notes:       %s\n", t.Notes)
		}
		return nil
	}
	return fmt.Errorf("no technology with id %d", id)
}

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status <id> <not-started|in-progress|completed>",
		Short: "Set a technology's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := tech.ParseStatus(args[1])
			if err != nil {
				return err
			}
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.SetStatus(id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Technology %d is now %s\n", id, status)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newNotesCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "notes <id> <text>",
		Short: "Replace a technology's notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.SetNotes(id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated notes for %d\n", id)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newBulkStatusCmd() *cobra.Command {
	var (
		configPath string
		ids        []int64
	)

	cmd := &cobra.Command{
		Use:   "bulk-status <not-started|in-progress|completed>",
		Short: "Set one status on several technologies at once",
		Long:  "Applies the given status to every technology selected with --id. Unknown ids are ignored; all matched records change in a single write.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := tech.ParseStatus(args[0])
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("at least one --id is required")
			}
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.BulkSetStatus(ids, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %d technologies\n", status, len(ids))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().Int64SliceVar(&ids, "id", nil, "technology id (repeatable)")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a technology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", id)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newRandomCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Pick a random not-started technology and start it",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			picked, err := col.PickRandomNotStarted()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if picked == nil {
				fmt.Fprintln(out, "Nothing left to pick: no not-started technologies.")
				return nil
			}
			fmt.Fprintf(out, "Next up: %q (id %d), now in-progress\n", picked.Title, picked.ID)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newCompleteAllCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete-all",
		Short: "Mark every technology completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.MarkAllCompleted(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All technologies marked completed.")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newResetAllCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Reset every technology to not-started",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			if err := col.ResetAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All statuses reset to not-started.")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, col, err := openCollection(configPath)
			if err != nil {
				return err
			}
			records := col.List()
			all := tech.Summarize(records)
			owned := tech.SummarizeOwned(records)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Progress:    %d%%\n", all.Progress())
			fmt.Fprintf(out, "Total:       %d\n", all.Total)
			fmt.Fprintf(out, "Completed:   %d\n", all.Completed)
			fmt.Fprintf(out, "In progress: %d\n", all.InProgress)
			fmt.Fprintf(out, "Not started: %d\n", all.NotStarted)
			if owned.Total != all.Total {
				fmt.Fprintf(out, "Yours:       %d of %d (rest came from roadmaps)\n", owned.Total, all.Total)
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
