package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-janitor/ghproj/internal/ghurl"
	"github.com/ai-janitor/ghproj/internal/projects"
)

func (a *app) resolveCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "resolve URL",
		Short: "Resolve a GitHub project or repository URL",
		Long: `resolve turns a project URL (github.com/users/X/projects/N or
github.com/orgs/X/projects/N) into the project's node ID for the
configuration, and a repository URL into its owner and name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := ghurl.Parse(args[0])
			out := cmd.OutOrStdout()

			switch loc.Kind {
			case ghurl.KindUserProject, ghurl.KindOrgProject:
				gh, err := a.github()
				if err != nil {
					return err
				}
				ref, err := projects.ResolveProject(cmd.Context(), gh, loc.Owner, loc.Number, loc.Org)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(out, ref)
				}
				fmt.Fprintf(out, "%s  %s\n", a.styles.id.Render(ref.ID), a.styles.header.Render(ref.Title))
				fmt.Fprintf(out, "project %d of %s\n", ref.Number, loc.Owner)
				return nil

			case ghurl.KindRepository:
				if jsonOut {
					return writeJSON(out, map[string]string{"owner": loc.Owner, "repo": loc.Repo})
				}
				fmt.Fprintf(out, "owner: %s\n", loc.Owner)
				fmt.Fprintf(out, "repo: %s\n", loc.Repo)
				return nil
			}

			return fmt.Errorf("%q is not a GitHub project or repository URL", args[0])
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print raw JSON")
	return cmd
}
