package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorMuted   = lipgloss.Color("#6C7A89")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
)

// styles binds the console palette to one output so colour is only emitted to terminals.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Box     lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Foreground(colorError),
		Header:  r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Border:  r.NewStyle().Foreground(colorMuted),
		Box:     r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
	}
}

type renderer struct {
	out io.Writer
	st  styles
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, st: newStyles(out)}
}

func (r *renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *renderer) success(msg string) {
	r.printf("%s\n", r.st.Success.Render("✓ "+msg))
}

func (r *renderer) warn(msg string) {
	r.printf("%s\n", r.st.Warning.Render("⚠ "+msg))
}

func (r *renderer) failure(msg string) {
	r.printf("%s\n", r.st.Error.Render("✗ "+msg))
}

func (r *renderer) notification(n activitylog.Notification) {
	switch n.Level {
	case activitylog.NotificationError:
		r.failure(n.Message)
	default:
		r.success(n.Message)
	}
}

// logs prints the current page as a table followed by a pagination footer.
func (r *renderer) logs(snap activitylog.Snapshot) {
	if len(snap.Logs) == 0 {
		r.printf("%s\n", r.st.Muted.Render("No activity logs match the current filters."))
		r.footer(snap)
		return
	}

	rows := make([][]string, 0, len(snap.Logs))
	for _, entry := range snap.Logs {
		rows = append(rows, []string{
			strconv.FormatInt(entry.LogID, 10),
			entry.CreatedAt.Local().Format(timeLayout),
			string(entry.UserType),
			valueOr(entry.Actor(), "-"),
			entry.ActivityCategory,
			entry.ActivityType,
			truncate(entry.Description, 48),
			statusText(entry.ResponseStatus),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.st.Border).
		Headers("ID", "TIME", "USER TYPE", "ACTOR", "CATEGORY", "TYPE", "DESCRIPTION", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.Header
			}
			return r.st.Cell
		})

	r.printf("%s\n", t.Render())
	r.footer(snap)
}

func (r *renderer) footer(snap activitylog.Snapshot) {
	info := snap.PageInfo
	r.printf("%s\n", r.st.Muted.Render(fmt.Sprintf("Page %d of %d · %d total · %d per page",
		info.Page, info.TotalPages(), info.Total, info.PageSize)))
	if summary := filterSummary(snap.Filters); summary != "" {
		r.printf("%s\n", r.st.Muted.Render("Filters: "+summary))
	}
}

// entry prints every field of one log followed by its decoded payloads.
func (r *renderer) entry(entry activitylog.Entry) {
	fields := [][2]string{
		{"Log ID", strconv.FormatInt(entry.LogID, 10)},
		{"Time", entry.CreatedAt.Local().Format(timeLayout)},
		{"User type", string(entry.UserType)},
		{"Actor", valueOr(entry.Actor(), "-")},
		{"Category", entry.ActivityCategory},
		{"Type", entry.ActivityType},
		{"Description", entry.Description},
		{"Request", strings.TrimSpace(entry.Method + " " + entry.Endpoint)},
		{"Status", statusText(entry.ResponseStatus)},
		{"IP address", entry.IPAddress},
		{"User agent", entry.UserAgent},
	}
	if entry.AffectedResourceType != "" || entry.AffectedResourceID != "" {
		fields = append(fields, [2]string{"Resource", strings.TrimSpace(entry.AffectedResourceType + " " + string(entry.AffectedResourceID))})
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s %s\n", r.st.Label.Render(fmt.Sprintf("%-12s", f[0])), valueOr(f[1], "-"))
	}
	r.printf("%s\n", r.st.Box.Render(strings.TrimRight(b.String(), "\n")))

	r.payload("Request body", entry.RequestBody)
	r.payload("Metadata", entry.Metadata)
}

func (r *renderer) payload(title string, p activitylog.Payload) {
	if p.IsEmpty() {
		return
	}
	r.printf("%s\n%s\n", r.st.Title.Render(title), p.Indent())
}

func (r *renderer) stats(stats activitylog.Stats) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.st.Border).
		Headers("TOTAL", "TODAY", "USER", "ADMIN").
		Row(
			strconv.FormatInt(stats.TotalLogs, 10),
			strconv.FormatInt(stats.LogsToday, 10),
			strconv.FormatInt(stats.UserLogs, 10),
			strconv.FormatInt(stats.AdminLogs, 10),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.Header
			}
			return r.st.Cell
		})
	r.printf("%s\n", t.Render())
}

func (r *renderer) taxonomy(tax activitylog.Taxonomy) {
	byCategory := map[string][]string{}
	var generic []string
	for _, t := range tax.Types {
		if t.Category == "" {
			generic = append(generic, t.Value)
			continue
		}
		byCategory[t.Category] = append(byCategory[t.Category], t.Value)
	}

	r.printf("%s\n", r.st.Title.Render("Categories"))
	for _, c := range tax.Categories {
		r.printf("  %s %s\n", r.st.Label.Render(fmt.Sprintf("%-16s", c.Value)), r.st.Muted.Render(c.Label))
		if types := byCategory[c.Value]; len(types) > 0 {
			r.printf("    %s\n", strings.Join(types, ", "))
		}
	}
	if len(generic) > 0 {
		r.printf("%s\n  %s\n", r.st.Title.Render("Generic types"), strings.Join(generic, ", "))
	}
}

func (r *renderer) draft(buf activitylog.EditBuffer) {
	pairs := [][2]string{
		{activitylog.FacetUserType, buf.UserType},
		{activitylog.FacetUserID, buf.UserID},
		{activitylog.FacetActivityType, buf.ActivityType},
		{activitylog.FacetActivityCategory, buf.ActivityCategory},
		{activitylog.FacetStartDate, buf.StartDate},
		{activitylog.FacetEndDate, buf.EndDate},
	}
	if buf.Limit > 0 {
		pairs = append(pairs, [2]string{activitylog.FacetLimit, strconv.Itoa(buf.Limit)})
	}
	r.printf("%s\n", r.st.Title.Render("Pending edits"))
	for _, p := range pairs {
		r.printf("  %-18s %s\n", p[0], valueOr(p[1], r.st.Muted.Render("(any)")))
	}
}

func filterSummary(f activitylog.QueryFilters) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	add(activitylog.FacetUserType, string(f.UserType))
	if f.UserID > 0 {
		add(activitylog.FacetUserID, strconv.FormatInt(f.UserID, 10))
	}
	add(activitylog.FacetActivityType, f.ActivityType)
	add(activitylog.FacetActivityCategory, f.ActivityCategory)
	if !f.StartDate.IsZero() {
		add(activitylog.FacetStartDate, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		add(activitylog.FacetEndDate, f.EndDate.String())
	}
	return strings.Join(parts, " ")
}

func statusText(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func truncate(value string, n int) string {
	runes := []rune(value)
	if len(runes) <= n {
		return value
	}
	return string(runes[:n-1]) + "…"
}
