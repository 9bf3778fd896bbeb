package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the completion cache",
	}
	cmd.AddCommand(a.cacheInfoCmd(), a.cacheClearCmd())
	return cmd
}

func (a *app) cacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cached entries and their freshness",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := a.cacheStore().Info()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, a.styles.dim.Render("cache is empty"))
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-40s %8s  age %-8s fast:%s slow:%s\n",
					e.Key.String(), humanSize(e.Size), humanAge(e.Age),
					validity(a.styles, e.ValidFast), validity(a.styles, e.ValidSlow))
			}
			return nil
		},
	}
}

func (a *app) cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [PATTERN]",
		Short: "Drop cached entries, all of them or those matching a substring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			n := a.cacheStore().Clear(pattern)
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
			return nil
		},
	}
}

func validity(st styles, valid bool) string {
	if valid {
		return st.ok.Render("valid")
	}
	return st.dim.Render("expired")
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func humanAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}
