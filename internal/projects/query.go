package projects

import "strings"

// StatusMatches reports whether two status names refer to the same column.
// Comparison ignores case and all spaces, so "To Do" matches "todo" and
// "TODO". An empty name matches nothing.
func StatusMatches(a, b string) bool {
	na, nb := normalizeStatus(a), normalizeStatus(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

func normalizeStatus(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// FilterStatus returns the tasks whose status matches status.
func FilterStatus(tasks []Task, status string) []Task {
	var out []Task
	for _, t := range tasks {
		if StatusMatches(t.Status, status) {
			out = append(out, t)
		}
	}
	return out
}

// Search returns the tasks matching terms, case-insensitively. With exact,
// terms is a phrase that must appear as a substring of the title or body.
// Otherwise terms splits into keywords that must all appear in the title,
// or all appear in the body. A non-empty status narrows the results
// afterwards.
func Search(tasks []Task, terms string, exact bool, status string) []Task {
	termsLower := strings.ToLower(terms)
	keywords := strings.Fields(termsLower)

	var out []Task
	for _, t := range tasks {
		title := strings.ToLower(t.Title)
		body := strings.ToLower(t.Body)

		var matches bool
		if exact {
			matches = strings.Contains(title, termsLower) || strings.Contains(body, termsLower)
		} else {
			matches = containsAll(title, keywords) || containsAll(body, keywords)
		}
		if !matches {
			continue
		}
		if status != "" && !StatusMatches(t.Status, status) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

// Metrics aggregates assignment counts across tasks. TotalAssignments is
// the denominator for shares: a task counts once per assignee, or once
// under Unassigned when it has none, so tasks with several assignees weigh
// more than single-assignee ones.
type Metrics struct {
	TotalItems       int                       `json:"total_items"`
	TotalAssignments int                       `json:"total_assignments"`
	Assignees        map[string]int            `json:"assignees"`
	Unassigned       int                       `json:"unassigned"`
	ByStatus         map[string]*StatusMetrics `json:"by_status,omitempty"`
}

// StatusMetrics is the per-status slice of Metrics.
type StatusMetrics struct {
	TotalItems int            `json:"total_items"`
	Assignees  map[string]int `json:"assignees"`
	Unassigned int            `json:"unassigned"`
}

// Percent returns count's share of the total assignments, or 0 on an empty
// board.
func (m Metrics) Percent(count int) float64 {
	if m.TotalAssignments == 0 {
		return 0
	}
	return float64(count) * 100 / float64(m.TotalAssignments)
}

// Assignment tallies who holds the tasks. With byStatus, the same counters
// are also kept per status name.
func Assignment(tasks []Task, byStatus bool) Metrics {
	m := Metrics{
		TotalItems: len(tasks),
		Assignees:  make(map[string]int),
	}
	if byStatus {
		m.ByStatus = make(map[string]*StatusMetrics)
	}

	for _, t := range tasks {
		var sm *StatusMetrics
		if byStatus {
			sm = m.ByStatus[t.Status]
			if sm == nil {
				sm = &StatusMetrics{Assignees: make(map[string]int)}
				m.ByStatus[t.Status] = sm
			}
			sm.TotalItems++
		}

		if len(t.Assignees) == 0 {
			m.Unassigned++
			m.TotalAssignments++
			if sm != nil {
				sm.Unassigned++
			}
			continue
		}
		for _, a := range t.Assignees {
			m.Assignees[a]++
			m.TotalAssignments++
			if sm != nil {
				sm.Assignees[a]++
			}
		}
	}
	return m
}
