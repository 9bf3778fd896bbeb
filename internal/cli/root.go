// Package cli wires the ghproj commands: board operations, workflow
// operations, the completion cache, and URL resolution.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ai-janitor/ghproj/internal/actions"
	"github.com/ai-janitor/ghproj/internal/cache"
	"github.com/ai-janitor/ghproj/internal/complete"
	"github.com/ai-janitor/ghproj/internal/config"
	"github.com/ai-janitor/ghproj/internal/github"
	"github.com/ai-janitor/ghproj/internal/projects"
)

// app holds the configuration and lazily built clients shared by the
// commands for one invocation.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	styles styles

	configPath   string
	flagToken    string
	flagProject  string
	flagOwner    string
	flagRepo     string
	flagCacheDir string
	flagLogLevel string
	flagNoCache  bool
	flagNoColor  bool

	gh        *github.Client
	manager   *projects.Manager
	workflows *actions.Client
	store     *cache.Cache
	completer *complete.Completer
}

// New builds the root command with all subcommands attached.
func New(version string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "ghproj",
		Short: "Manage tasks on a GitHub Projects v2 board",
		Long: `ghproj works a GitHub Projects v2 board from the terminal: list and
search tasks, move them between status columns, trigger and inspect
Actions workflows, and keep shell completion fast with a local cache.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.ghproj/config.yml)")
	flags.StringVar(&a.flagToken, "token", "", "GitHub token")
	flags.StringVar(&a.flagProject, "project", "", "Project node ID (PVT_ format)")
	flags.StringVar(&a.flagOwner, "owner", "", "Repository owner")
	flags.StringVar(&a.flagRepo, "repo", "", "Repository name")
	flags.StringVar(&a.flagCacheDir, "cache-dir", "", "Completion cache directory")
	flags.StringVar(&a.flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVar(&a.flagNoCache, "no-cache", false, "Keep the completion cache off disk")
	flags.BoolVar(&a.flagNoColor, "no-color", false, "Disable styled output")

	cmd.AddCommand(
		a.listCmd(),
		a.searchCmd(),
		a.statusesCmd(),
		a.metricsCmd(),
		a.showCmd(),
		a.moveCmd(),
		a.batchMoveCmd(),
		a.commentCmd(),
		a.workflowsCmd(),
		a.triggerCmd(),
		a.runsCmd(),
		a.runCmd(),
		a.logsCmd(),
		a.resolveCmd(),
		a.cacheCmd(),
	)
	return cmd
}

// setup loads the configuration layers and prepares logging and styling.
// Flags win over the environment, which wins over the file.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if a.flagToken != "" {
		cfg.Token = a.flagToken
	}
	if a.flagProject != "" {
		cfg.ProjectID = a.flagProject
	}
	if a.flagOwner != "" {
		cfg.Owner = a.flagOwner
	}
	if a.flagRepo != "" {
		cfg.Repo = a.flagRepo
	}
	if a.flagCacheDir != "" {
		cfg.CacheDir = a.flagCacheDir
	}
	if a.flagLogLevel != "" {
		cfg.LogLevel = a.flagLogLevel
	}
	if cmd.Flags().Changed("no-cache") {
		cfg.NoCache = a.flagNoCache
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	a.styles = newStyles(!a.flagNoColor)
	return nil
}

func (a *app) github() (*github.Client, error) {
	if a.gh != nil {
		return a.gh, nil
	}
	if a.cfg.Token == "" {
		return nil, errors.New("no GitHub token configured, set GITHUB_TOKEN or token in the config file")
	}

	opts := []github.Option{github.WithLogger(a.logger)}
	if a.cfg.GraphQLURL != "" || a.cfg.RESTURL != "" {
		gql, rest := a.cfg.GraphQLURL, a.cfg.RESTURL
		if gql == "" {
			gql = github.GraphQLURL
		}
		if rest == "" {
			rest = github.RESTURL
		}
		opts = append(opts, github.WithBaseURLs(gql, rest))
	}
	a.gh = github.New(a.cfg.Token, opts...)
	return a.gh, nil
}

func (a *app) board() (*projects.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}
	gh, err := a.github()
	if err != nil {
		return nil, err
	}
	if a.cfg.ProjectID == "" {
		return nil, errors.New("no project configured, set GITHUB_PROJECT_ID or project_id in the config file")
	}
	a.manager = projects.NewManager(gh, a.cfg.ProjectID)
	return a.manager, nil
}

func (a *app) actionsClient() (*actions.Client, error) {
	if a.workflows != nil {
		return a.workflows, nil
	}
	gh, err := a.github()
	if err != nil {
		return nil, err
	}
	if a.cfg.Owner == "" || a.cfg.Repo == "" {
		return nil, errors.New("no repository configured, set GITHUB_OWNER and GITHUB_REPO or owner/repo in the config file")
	}
	a.workflows = actions.NewClient(gh, a.cfg.Owner, a.cfg.Repo)
	return a.workflows, nil
}

func (a *app) cacheStore() *cache.Cache {
	if a.store != nil {
		return a.store
	}

	var store cache.Store
	if a.cfg.NoCache {
		store = cache.NewMemStore()
	} else if fs, err := cache.NewFileStore(a.cfg.CacheDir); err != nil {
		a.logger.Debug("cache directory unavailable, caching in memory", "error", err)
		store = cache.NewMemStore()
	} else {
		store = fs
	}
	a.store = cache.New(store, a.logger)
	return a.store
}

// completions builds the Completer. Unconfigured clients just produce no
// candidates; completion must never error out.
func (a *app) completions() *complete.Completer {
	if a.completer != nil {
		return a.completer
	}
	board, _ := a.board()
	workflows, _ := a.actionsClient()
	a.completer = complete.New(a.cacheStore(), board, workflows, a.cfg.Owner, a.cfg.Repo)
	return a.completer
}

func (a *app) completeItemIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return a.completions().ItemIDs(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (a *app) completeStatuses(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return a.completions().Statuses(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (a *app) completeWorkflows(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return a.completions().Workflows(cmd.Context(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (a *app) completeBranches(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return a.completions().Branches(toComplete), cobra.ShellCompDirectiveNoFileComp
}
