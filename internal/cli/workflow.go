package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai-janitor/ghproj/internal/actions"
	"github.com/ai-janitor/ghproj/internal/github"
)

func (a *app) workflowsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "List the repository's Actions workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.actionsClient()
			if err != nil {
				return err
			}
			workflows, err := client.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), workflows)
			}
			renderWorkflows(cmd.OutOrStdout(), a.styles, workflows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	return cmd
}

func (a *app) triggerCmd() *cobra.Command {
	var (
		ref    string
		inputs []string
	)
	cmd := &cobra.Command{
		Use:               "trigger WORKFLOW",
		Short:             "Dispatch a workflow by file name or ID",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeWorkflows,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.actionsClient()
			if err != nil {
				return err
			}

			pairs := make(map[string]string, len(inputs))
			for _, input := range inputs {
				k, v, ok := strings.Cut(input, "=")
				if !ok {
					return fmt.Errorf("%w: input %q is not key=value", github.ErrInvalidArgument, input)
				}
				pairs[k] = v
			}

			if err := client.Trigger(cmd.Context(), args[0], ref, pairs); err != nil {
				return err
			}

			shownRef := ref
			if shownRef == "" {
				shownRef = "main"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s dispatched %s on %s\n",
				a.styles.ok.Render("✓"), args[0], shownRef)
			return nil
		},
	}
	cmd.Flags().StringVarP(&ref, "ref", "r", "", "Branch or tag to run on (default main)")
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Workflow input as key=value (repeatable)")
	_ = cmd.RegisterFlagCompletionFunc("ref", a.completeBranches)
	return cmd
}

func (a *app) runsCmd() *cobra.Command {
	var (
		branch  string
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:               "runs WORKFLOW",
		Short:             "List a workflow's recent runs, newest first",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.completeWorkflows,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.actionsClient()
			if err != nil {
				return err
			}
			runs, err := client.Runs(cmd.Context(), args[0], branch, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			renderRuns(cmd.OutOrStdout(), a.styles, runs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Only runs on this branch")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "How many runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	_ = cmd.RegisterFlagCompletionFunc("branch", a.completeBranches)
	return cmd
}

func (a *app) runCmd() *cobra.Command {
	var (
		workflow string
		branch   string
		nth      int
		jsonOut  bool
	)
	cmd := &cobra.Command{
		Use:   "run [RUN_ID]",
		Short: "Show one workflow run",
		Long: `run shows one workflow run, named either directly by its run ID or as
the nth most recent run of a workflow (--workflow with --nth, 1 being
the latest).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.actionsClient()
			if err != nil {
				return err
			}

			sel := actions.RunSelector{Workflow: workflow, Branch: branch, Nth: nth}
			if len(args) == 1 {
				runID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("%w: run ID %q is not a number", github.ErrInvalidArgument, args[0])
				}
				sel.RunID = runID
			}

			run, err := client.Resolve(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), run)
			}
			renderRun(cmd.OutOrStdout(), a.styles, run)
			return nil
		},
	}
	cmd.Flags().StringVarP(&workflow, "workflow", "w", "", "Workflow whose nth recent run to pick")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Only consider runs on this branch")
	cmd.Flags().IntVarP(&nth, "nth", "n", 0, "Which recent run to pick, 1 being the latest")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	_ = cmd.RegisterFlagCompletionFunc("workflow", a.completeWorkflows)
	_ = cmd.RegisterFlagCompletionFunc("branch", a.completeBranches)
	return cmd
}

func (a *app) logsCmd() *cobra.Command {
	var (
		workflow string
		branch   string
		nth      int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "logs [RUN_ID]",
		Short: "Download a run's log archive",
		Long: `logs downloads the zipped log archive of one run, named either directly
by its run ID or as the nth most recent run of a workflow (--workflow
with --nth, 1 being the latest).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.actionsClient()
			if err != nil {
				return err
			}

			sel := actions.RunSelector{Workflow: workflow, Branch: branch, Nth: nth}
			if len(args) == 1 {
				runID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("%w: run ID %q is not a number", github.ErrInvalidArgument, args[0])
				}
				sel.RunID = runID
			}

			run, data, err := client.LogsFor(cmd.Context(), sel)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("run-%d-logs.zip", run.ID)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write logs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved logs of run %d to %s (%d bytes)\n",
				a.styles.ok.Render("✓"), run.ID, path, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&workflow, "workflow", "w", "", "Workflow whose nth recent run to pick")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Only consider runs on this branch")
	cmd.Flags().IntVarP(&nth, "nth", "n", 0, "Which recent run to pick, 1 being the latest")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the archive (default run-<id>-logs.zip)")
	_ = cmd.RegisterFlagCompletionFunc("workflow", a.completeWorkflows)
	_ = cmd.RegisterFlagCompletionFunc("branch", a.completeBranches)
	return cmd
}
