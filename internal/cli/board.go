package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai-janitor/ghproj/internal/projects"
)

func (a *app) listCmd() *cobra.Command {
	var (
		status  string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the board's tasks grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			tasks, err := board.Items(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				tasks = projects.FilterStatus(tasks, status)
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			renderBoard(cmd.OutOrStdout(), a.styles, tasks)
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only tasks in this status column")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	_ = cmd.RegisterFlagCompletionFunc("status", a.completeStatuses)
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var (
		exact   bool
		status  string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "search TERMS...",
		Short: "Search task titles and bodies",
		Long: `Search matches case-insensitively against task titles and bodies. By
default every term must appear in the title or every term in the body;
--exact instead looks for the joined terms as one substring.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			tasks, err := board.Items(cmd.Context())
			if err != nil {
				return err
			}
			results := projects.Search(tasks, strings.Join(args, " "), exact, status)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			renderTasks(cmd.OutOrStdout(), a.styles, results)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&exact, "exact", "e", false, "Match the terms as one exact substring")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only tasks in this status column")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	_ = cmd.RegisterFlagCompletionFunc("status", a.completeStatuses)
	return cmd
}

func (a *app) statusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List the board's status columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			statuses, err := board.Statuses(cmd.Context())
			if err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.styles.dim.Render("the board has no Status field"))
				return nil
			}
			for _, status := range statuses {
				fmt.Fprintln(cmd.OutOrStdout(), status)
			}
			return nil
		},
	}
}

func (a *app) metricsCmd() *cobra.Command {
	var (
		byStatus bool
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show who holds the board's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			tasks, err := board.Items(cmd.Context())
			if err != nil {
				return err
			}
			m := projects.Assignment(tasks, byStatus)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			renderMetrics(cmd.OutOrStdout(), a.styles, m)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byStatus, "by-status", false, "Break the counts down per status column")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:               "show ITEM_ID",
		Short:             "Show one task with its issue comments",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeItemIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			detail, err := board.Item(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), detail)
			}
			renderDetail(cmd.OutOrStdout(), a.styles, detail)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	return cmd
}

func (a *app) moveCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "move ITEM_ID STATUS",
		Short: "Move a task to another status column",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return a.completeItemIDs(cmd, args, toComplete)
			case 1:
				return a.completeStatuses(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if comment == "" {
				if err := board.Move(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s moved %s to %s\n", a.styles.ok.Render("✓"), args[0], args[1])
				return nil
			}

			outcomes, err := board.MoveMany(cmd.Context(), args[:1], args[1], comment)
			if err != nil {
				return err
			}
			o := outcomes[0]
			if !o.OK() {
				return o.Err
			}
			switch {
			case o.CommentErr != nil:
				fmt.Fprintf(out, "%s moved %s to %s (comment failed: %v)\n",
					a.styles.ok.Render("✓"), args[0], args[1], o.CommentErr)
			case o.Commented:
				fmt.Fprintf(out, "%s moved %s to %s (commented)\n",
					a.styles.ok.Render("✓"), args[0], args[1])
			default:
				fmt.Fprintf(out, "%s moved %s to %s\n", a.styles.ok.Render("✓"), args[0], args[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Comment to post on the item's issue after the move")
	return cmd
}

func (a *app) batchMoveCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "batch-move STATUS ITEM_ID...",
		Short: "Move several tasks to the same status column",
		Long: `batch-move moves every listed item to the given status. Items fail or
succeed independently; a failed item never stops the rest. With
--comment, each moved item's issue also gets the comment.`,
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return a.completeStatuses(cmd, args, toComplete)
			}
			return a.completeItemIDs(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := a.board()
			if err != nil {
				return err
			}
			status, ids := args[0], args[1:]

			outcomes, err := board.MoveMany(cmd.Context(), ids, status, comment)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, o := range outcomes {
				switch {
				case !o.OK():
					failed++
					fmt.Fprintf(out, "%s %s: %v\n", a.styles.fail.Render("✗"), o.ItemID, o.Err)
				case o.CommentErr != nil:
					fmt.Fprintf(out, "%s %s (comment failed: %v)\n", a.styles.ok.Render("✓"), o.ItemID, o.CommentErr)
				case o.Commented:
					fmt.Fprintf(out, "%s %s (commented)\n", a.styles.ok.Render("✓"), o.ItemID)
				default:
					fmt.Fprintf(out, "%s %s\n", a.styles.ok.Render("✓"), o.ItemID)
				}
			}
			fmt.Fprintf(out, "moved %d of %d to %s\n", len(outcomes)-failed, len(outcomes), status)

			if failed > 0 {
				return fmt.Errorf("%d of %d moves failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Comment to post on each moved item's issue")
	return cmd
}

func (a *app) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment ISSUE BODY...",
		Short: "Comment on an issue or pull request",
		Long: `comment posts the body on an issue or pull request. ISSUE is either a
full GitHub URL or a bare issue number in the configured repository.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gh, err := a.github()
			if err != nil {
				return err
			}
			body := strings.Join(args[1:], " ")

			if number, err := strconv.Atoi(args[0]); err == nil {
				if a.cfg.Owner == "" || a.cfg.Repo == "" {
					return errors.New("no repository configured, set GITHUB_OWNER and GITHUB_REPO or owner/repo in the config file")
				}
				if err := projects.PostIssueComment(cmd.Context(), gh, a.cfg.Owner, a.cfg.Repo, number, body); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s commented on %s/%s#%d\n",
					a.styles.ok.Render("✓"), a.cfg.Owner, a.cfg.Repo, number)
				return nil
			}

			if err := projects.PostComment(cmd.Context(), gh, args[0], body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s commented on %s\n",
				a.styles.ok.Render("✓"), args[0])
			return nil
		},
	}
}
