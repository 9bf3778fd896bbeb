package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ai-janitor/ghproj/internal/actions"
	"github.com/ai-janitor/ghproj/internal/projects"
)

// renderBoard prints tasks grouped into status columns, in first-seen
// order.
func renderBoard(w io.Writer, st styles, tasks []projects.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, st.dim.Render("no tasks"))
		return
	}

	var order []string
	groups := make(map[string][]projects.Task)
	for _, t := range tasks {
		if _, ok := groups[t.Status]; !ok {
			order = append(order, t.Status)
		}
		groups[t.Status] = append(groups[t.Status], t)
	}

	for i, status := range order {
		if i > 0 {
			fmt.Fprintln(w)
		}
		group := groups[status]
		fmt.Fprintf(w, "%s (%d)\n", st.header.Render(status), len(group))
		for _, t := range group {
			fmt.Fprintln(w, "  "+taskLine(st, t))
		}
	}
}

// renderTasks prints tasks as flat rows with their status in front.
func renderTasks(w io.Writer, st styles, tasks []projects.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, st.dim.Render("no matches"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintf(w, "%s  %s\n", st.status.Render(t.Status), taskLine(st, t))
	}
}

func taskLine(st styles, t projects.Task) string {
	parts := []string{st.id.Render(t.ID)}
	if t.Number > 0 {
		parts = append(parts, st.dim.Render(fmt.Sprintf("#%d", t.Number)))
	}
	parts = append(parts, t.Title)
	if len(t.Labels) > 0 {
		parts = append(parts, st.label.Render("["+strings.Join(t.Labels, ", ")+"]"))
	}
	if len(t.Assignees) > 0 {
		parts = append(parts, st.dim.Render("@"+strings.Join(t.Assignees, " @")))
	}
	return strings.Join(parts, "  ")
}

func renderDetail(w io.Writer, st styles, d *projects.TaskDetail) {
	fmt.Fprintln(w, st.header.Render(d.Title))
	fmt.Fprintf(w, "%s  %s", st.id.Render(d.ID), st.status.Render(d.Status))
	if d.Number > 0 {
		fmt.Fprintf(w, "  #%d", d.Number)
	}
	if d.State != "" {
		fmt.Fprintf(w, "  %s", strings.ToLower(d.State))
	}
	fmt.Fprintln(w)
	if d.URL != "" {
		fmt.Fprintln(w, st.dim.Render(d.URL))
	}
	if len(d.Assignees) > 0 {
		fmt.Fprintln(w, "assignees: "+strings.Join(d.Assignees, ", "))
	}
	if len(d.Labels) > 0 {
		fmt.Fprintln(w, "labels: "+strings.Join(d.Labels, ", "))
	}

	if len(d.Fields) > 0 {
		names := make([]string, 0, len(d.Fields))
		for name := range d.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, d.Fields[name])
		}
	}

	if d.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Body)
	}

	if len(d.Comments) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.header.Render(fmt.Sprintf("comments (%d)", len(d.Comments))))
		for _, c := range d.Comments {
			header := c.Author
			if !c.CreatedAt.IsZero() {
				header += "  " + c.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintln(w, st.dim.Render(header))
			fmt.Fprintln(w, c.Body)
		}
	}
}

func renderMetrics(w io.Writer, st styles, m projects.Metrics) {
	fmt.Fprintf(w, "%s  %d tasks, %d assignments\n",
		st.header.Render("workload"), m.TotalItems, m.TotalAssignments)

	names := make([]string, 0, len(m.Assignees))
	for name := range m.Assignees {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if m.Assignees[names[i]] != m.Assignees[names[j]] {
			return m.Assignees[names[i]] > m.Assignees[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		count := m.Assignees[name]
		fmt.Fprintf(w, "  %-24s %3d  %5.1f%%\n", name, count, m.Percent(count))
	}
	if m.Unassigned > 0 {
		fmt.Fprintf(w, "  %-24s %3d  %5.1f%%\n", "unassigned", m.Unassigned, m.Percent(m.Unassigned))
	}

	if len(m.ByStatus) > 0 {
		statuses := make([]string, 0, len(m.ByStatus))
		for status := range m.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)

		fmt.Fprintf(w, "\n%s\n", st.header.Render("by status"))
		for _, status := range statuses {
			sm := m.ByStatus[status]
			fmt.Fprintf(w, "  %-24s %3d\n", status, sm.TotalItems)
		}
	}
}

func renderWorkflows(w io.Writer, st styles, workflows []actions.Workflow) {
	if len(workflows) == 0 {
		fmt.Fprintln(w, st.dim.Render("no workflows"))
		return
	}
	for _, wf := range workflows {
		line := fmt.Sprintf("%-28s %s", wf.FileName(), wf.Name)
		if wf.State != "active" && wf.State != "" {
			line += "  " + st.warn.Render(wf.State)
		}
		fmt.Fprintln(w, line)
	}
}

func renderRuns(w io.Writer, st styles, runs []actions.WorkflowRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, st.dim.Render("no runs"))
		return
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s %d  %s  %s  %s\n",
			runGlyph(st, run), run.ID, run.Branch, shortSHA(run.SHA), runState(run))
	}
}

func renderRun(w io.Writer, st styles, run *actions.WorkflowRun) {
	fmt.Fprintf(w, "%s %s", runGlyph(st, *run), st.header.Render(run.Name))
	if run.RunNumber > 0 {
		fmt.Fprintf(w, " #%d", run.RunNumber)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "id: %d\n", run.ID)
	fmt.Fprintf(w, "branch: %s @ %s\n", run.Branch, shortSHA(run.SHA))
	fmt.Fprintf(w, "state: %s\n", runState(*run))
	if run.Event != "" {
		fmt.Fprintf(w, "event: %s\n", run.Event)
	}
	if !run.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created: %s\n", run.CreatedAt.Format("2006-01-02 15:04"))
	}
	if run.URL != "" {
		fmt.Fprintln(w, st.dim.Render(run.URL))
	}
}

func runState(run actions.WorkflowRun) string {
	if run.Conclusion != "" {
		return run.Conclusion
	}
	return run.Status
}

func runGlyph(st styles, run actions.WorkflowRun) string {
	switch {
	case run.Conclusion == "success":
		return st.ok.Render("✓")
	case run.Conclusion == "failure":
		return st.fail.Render("✗")
	case run.Conclusion == "" && run.Status != "completed":
		return st.warn.Render("●")
	}
	return st.dim.Render("·")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
