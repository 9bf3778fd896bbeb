// Package complete produces shell completion candidates backed by the
// tiered cache, so repeated tab presses stay off the network.
package complete

import (
	"context"
	"strings"

	"github.com/ai-janitor/ghproj/internal/actions"
	"github.com/ai-janitor/ghproj/internal/cache"
	"github.com/ai-janitor/ghproj/internal/projects"
)

// branches are common branch names, offered without any lookup.
var branches = []string{
	"main", "master",
	"development", "develop", "dev",
	"staging", "stage",
	"production", "prod",
	"release",
}

// maxItems caps item ID suggestions on very large boards.
const maxItems = 100

// Completer produces completion candidates. Lookups go through the cache
// first and fall back to the API; an API failure yields no candidates
// rather than an error, so completion never breaks the shell.
type Completer struct {
	cache    *cache.Cache
	projects *projects.Manager
	actions  *actions.Client
	owner    string
	repo     string
}

// New builds a Completer. projects and actions may be nil when the
// matching configuration is absent; their candidates are then empty.
func New(c *cache.Cache, p *projects.Manager, a *actions.Client, owner, repo string) *Completer {
	return &Completer{cache: c, projects: p, actions: a, owner: owner, repo: repo}
}

// ItemIDs suggests board item IDs starting with prefix.
func (c *Completer) ItemIDs(ctx context.Context, prefix string) []string {
	if c.projects == nil {
		return nil
	}
	key := cache.ItemsKey(c.projects.ProjectID())
	if items, ok := c.cache.Get(key); ok && len(items) > 0 {
		return filterPrefix(items, prefix)
	}

	tasks, err := c.projects.Items(ctx)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	if len(ids) > maxItems {
		ids = ids[:maxItems]
	}
	c.cache.Set(key, ids)
	return filterPrefix(ids, prefix)
}

// Statuses suggests status column names, matched case-insensitively.
func (c *Completer) Statuses(ctx context.Context, prefix string) []string {
	if c.projects == nil {
		return nil
	}
	key := cache.StatusesKey(c.projects.ProjectID())
	if statuses, ok := c.cache.Get(key); ok && len(statuses) > 0 {
		return filterPrefixFold(statuses, prefix)
	}

	statuses, err := c.projects.Statuses(ctx)
	if err != nil {
		return nil
	}
	c.cache.Set(key, statuses)
	return filterPrefixFold(statuses, prefix)
}

// Workflows suggests workflow file names starting with prefix.
func (c *Completer) Workflows(ctx context.Context, prefix string) []string {
	if c.actions == nil {
		return nil
	}
	key := cache.WorkflowsKey(c.owner, c.repo)
	if names, ok := c.cache.Get(key); ok && len(names) > 0 {
		return filterPrefix(names, prefix)
	}

	workflows, err := c.actions.List(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(workflows))
	for _, w := range workflows {
		names = append(names, w.FileName())
	}
	c.cache.Set(key, names)
	return filterPrefix(names, prefix)
}

// Branches suggests common branch names.
func (c *Completer) Branches(prefix string) []string {
	return filterPrefix(branches, prefix)
}

func filterPrefix(candidates []string, prefix string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func filterPrefixFold(candidates []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}
