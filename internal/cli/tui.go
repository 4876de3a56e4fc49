package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Gauravv801/QA-Eval/pkg/report"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// bucketStyles maps each priority section to its display color.
var bucketStyles = []lipgloss.Style{
	lipgloss.NewStyle().Bold(true).Foreground(colorGreen),
	lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	lipgloss.NewStyle().Bold(true).Foreground(colorYellow),
	lipgloss.NewStyle().Bold(true).Foreground(colorDim),
}

// bucketTitles are the section headings shown in the browser.
var bucketTitles = []string{
	"P0 Golden Paths",
	"P1 Required Variations",
	"P2 Loop Stress Tests",
	"P3 Redundant Paths",
}

// =============================================================================
// reportModel - Interactive priority bucket browser
// =============================================================================

// reportEntry is one selectable row: a path in one of the four buckets.
type reportEntry struct {
	bucket int
	record report.PathRecord
}

// reportModel is the bubbletea model for browsing a prioritized report.
type reportModel struct {
	doc     *report.Document
	entries []reportEntry
	cursor  int
	offset  int
	height  int
	detail  bool // showing the detail view for the selected path
}

// newReportModel creates a browser over the document's priority buckets.
func newReportModel(doc *report.Document) reportModel {
	m := reportModel{doc: doc, height: 20}
	for bucket, records := range doc.Buckets() {
		for _, rec := range records {
			m.entries = append(m.entries, reportEntry{bucket: bucket, record: rec})
		}
	}
	return m
}

func (m reportModel) Init() tea.Cmd {
	return nil
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if !m.detail && m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if !m.detail && m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.entries) > 0 {
				m.detail = !m.detail
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m reportModel) View() string {
	if m.detail {
		return m.detailView()
	}
	return m.listView()
}

// listView renders the scrollable path list grouped by bucket.
func (m reportModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Prioritized Test Paths"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(listDimStyle.Render("  (no paths)"))
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}

	lastBucket := -1
	for i := m.offset; i < end; i++ {
		e := m.entries[i]
		if e.bucket != lastBucket {
			b.WriteString(bucketStyles[e.bucket].Render(bucketTitles[e.bucket]))
			b.WriteString("\n")
			lastBucket = e.bucket
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-6s %3d steps  %s", cursor, e.record.ID, e.record.Length, joinLabels(e.record))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  P0=%d P1=%d P2=%d P3=%d",
		m.cursor+1, len(m.entries),
		len(m.doc.P0), len(m.doc.P1), len(m.doc.P2), len(m.doc.P3))))

	return b.String()
}

// detailView renders the selected path transition by transition.
func (m reportModel) detailView() string {
	e := m.entries[m.cursor]

	var b strings.Builder
	b.WriteString(bucketStyles[e.bucket].Render(e.record.ID + "  " + bucketTitles[e.bucket]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	b.WriteString("  " + StyleValue.Render("("+e.record.Start+")") + "\n")
	for _, seg := range e.record.Segments {
		b.WriteString("    " + StyleHighlight.Render(iconArrow+" "+seg.Label))
		if seg.Action != "" {
			b.WriteString(listDimStyle.Render("  " + seg.Action))
		}
		b.WriteString("\n")
		b.WriteString("  " + StyleValue.Render("("+seg.To+")") + "\n")
	}

	return b.String()
}
