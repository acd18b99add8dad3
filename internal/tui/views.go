package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/siftcat/sift/internal/session"
	"github.com/siftcat/sift/internal/taxonomy"
)

const (
	colIndex    = 4
	colDate     = 11
	colCategory = 22
	colGroup    = 16
)

// View renders the full screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width > 0 && (m.width < minWidth || m.height < minHeight) {
		return m.theme.Flash.Render(
			fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d; resize to continue.",
				m.width, m.height, minWidth, minHeight))
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("sift — categorize transactions"))
	b.WriteString("\n\n")
	b.WriteString(m.viewTaxonomy())
	b.WriteString("\n")
	b.WriteString(m.viewTable())
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	if m.session.QuitPrompt() {
		return m.overlayQuitPrompt()
	}
	return b.String()
}

// viewTaxonomy renders the category reference panel: one line per group,
// each category prefixed with its display id. Entries matching the live
// digit buffer are highlighted.
func (m Model) viewTaxonomy() string {
	digits := m.session.Digits()
	byGroup := make(map[string][]taxonomy.DisplayID)
	var order []string
	for _, d := range m.session.Taxonomy().DisplayIDs() {
		if _, seen := byGroup[d.Group]; !seen {
			order = append(order, d.Group)
		}
		byGroup[d.Group] = append(byGroup[d.Group], d)
	}

	var lines []string
	for _, g := range order {
		var cells []string
		for _, d := range byGroup[g] {
			cell := fmt.Sprintf("%d %s", d.ID, d.Category)
			if digits != "" && strings.HasPrefix(fmt.Sprint(d.ID), digits) {
				cell = m.theme.Highlighted.Render(cell)
			} else {
				cell = m.theme.Normal.Render(cell)
			}
			cells = append(cells, cell)
		}
		lines = append(lines,
			m.theme.GroupHeader.Render(g)+"  "+strings.Join(cells, "   "))
	}
	if digits != "" {
		lines = append(lines, m.theme.Muted.Render("jump: ")+m.theme.Highlighted.Render(digits))
	}
	return strings.Join(lines, "\n") + "\n"
}

// viewTable renders the transaction rows with the focus cell, edit buffer,
// and ghost completion.
func (m Model) viewTable() string {
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		colIndex, "#",
		colDate, "Date",
		m.descWidth(), "Description",
		colCategory, "Category",
		colGroup, "Group")
	lines := []string{m.theme.Muted.Render(header)}

	first, last := m.rowWindow()
	for i := first; i <= last; i++ {
		lines = append(lines, m.viewRow(i))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) descWidth() int {
	w := m.width - colIndex - colDate - colCategory - colGroup - 6
	if w < 12 {
		w = 12
	}
	return w
}

// rowWindow keeps the cursor visible when there are more rows than fit.
func (m Model) rowWindow() (first, last int) {
	n := m.session.RowCount()
	visible := m.height - len(m.session.Taxonomy().Groups) - 8
	if visible < 3 {
		visible = 3
	}
	if n <= visible {
		return 0, n - 1
	}
	first = m.session.Cursor() - visible/2
	if first < 0 {
		first = 0
	}
	last = first + visible - 1
	if last >= n {
		last = n - 1
		first = last - visible + 1
	}
	return first, last
}

func (m Model) viewRow(i int) string {
	row := m.session.Row(i)
	focused := i == m.session.Cursor()

	marker := m.statusMarker(m.session.RowStatus(i))
	date := row.TransactionDate
	if date == "" {
		date = row.StatementDate
	}

	cat := m.viewCell(row.Category, focused && m.session.Field() == session.FieldCategory, colCategory)
	grp := m.viewCell(row.Group, focused && m.session.Field() == session.FieldGroup, colGroup)

	return fmt.Sprintf("%s%-*d %-*s %-*s %s %s",
		marker,
		colIndex-1, i+1,
		colDate, pad(date, colDate),
		m.descWidth(), pad(row.Description, m.descWidth()),
		cat, grp)
}

// viewCell renders one assignment cell. The focused cell shows either the
// highlighted value or, during an edit, the buffer with caret and the
// dimmed ghost completion.
func (m Model) viewCell(value string, focused bool, width int) string {
	if !focused {
		return m.theme.Normal.Render(pad(value, width))
	}
	if !m.session.Editing() {
		return m.theme.FocusCell.Render(pad(value, width))
	}

	buf := m.session.Buffer()
	runes := []rune(buf.Text)
	var cell strings.Builder
	cell.WriteString(m.theme.EditCell.Render(string(runes[:buf.Caret])))
	if buf.Caret < len(runes) {
		cell.WriteString(m.theme.Caret.Render(string(runes[buf.Caret])))
		cell.WriteString(m.theme.EditCell.Render(string(runes[buf.Caret+1:])))
	} else {
		cell.WriteString(m.theme.Caret.Render(" "))
	}
	if ghost := m.session.GhostCompletion(); ghost != "" {
		cell.WriteString(m.theme.Ghost.Render(ghost))
	}
	used := len(runes) + 1 + len([]rune(m.session.GhostCompletion()))
	if used < width {
		cell.WriteString(strings.Repeat(" ", width-used))
	}
	return cell.String()
}

func (m Model) statusMarker(st session.Status) string {
	switch st {
	case session.StatusConfirmed:
		return m.theme.Confirmed.Render("✓")
	case session.StatusSuggested:
		return m.theme.Suggested.Render("~")
	default:
		return m.theme.Unset.Render("·")
	}
}

func (m Model) viewFooter() string {
	var parts []string
	confirmed := 0
	for i := 0; i < m.session.RowCount(); i++ {
		if m.session.RowStatus(i) == session.StatusConfirmed {
			confirmed++
		}
	}
	parts = append(parts, m.theme.Footer.Render(
		fmt.Sprintf("%d/%d confirmed", confirmed, m.session.RowCount())))

	if m.session.Editing() && m.session.Field() == session.FieldCategory {
		if line := m.viewMatches(); line != "" {
			parts = append(parts, line)
		}
	}
	if m.session.AllConfirmed() {
		parts = append(parts, m.theme.SaveBanner.Render("ALL CONFIRMED — Ctrl+S to save"))
	}
	if m.flash != "" {
		parts = append(parts, m.theme.Flash.Render(m.flash))
	}
	parts = append(parts, m.theme.Footer.Render(m.help.View(m.keymap)))
	return strings.Join(parts, "\n")
}

// viewMatches previews the top-ranked candidates for the text being typed;
// Enter accepts the first.
func (m Model) viewMatches() string {
	results := m.session.CategoryMatches(m.session.Buffer().Text, 3)
	if len(results) == 0 {
		return ""
	}
	labels := make([]string, 0, len(results))
	for i, r := range results {
		label := r.Item.Label
		if i == 0 {
			label = m.theme.Highlighted.Render(label)
		}
		labels = append(labels, label)
	}
	return m.theme.Muted.Render("matches: ") + strings.Join(labels, m.theme.Muted.Render(", "))
}

func (m Model) overlayQuitPrompt() string {
	prompt := m.theme.Overlay.Render(
		"Unsaved changes\n\n" +
			"s  save and quit\n" +
			"q  quit without saving\n" +
			"esc  keep working")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, prompt,
		lipgloss.WithWhitespaceChars(" "))
}

func pad(s string, w int) string {
	runes := []rune(s)
	if len(runes) > w {
		return string(runes[:w-1]) + "…"
	}
	return s + strings.Repeat(" ", w-len(runes))
}
