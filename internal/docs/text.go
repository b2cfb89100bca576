package docs

import (
	"strings"

	docs "google.golang.org/api/docs/v1"
)

// PlainText flattens a document into text. Tabbed documents list each tab
// under a "=== title ===" heading; table cells are tab separated.
func PlainText(doc *docs.Document) string {
	if doc == nil {
		return ""
	}

	var b strings.Builder
	if doc.Title != "" {
		b.WriteString(doc.Title)
		b.WriteString("\n\n")
	}

	if len(doc.Tabs) == 0 {
		if doc.Body != nil {
			writeElements(&b, doc.Body.Content)
		}
		return b.String()
	}

	writeTabs(&b, doc.Tabs, 0)
	return b.String()
}

func writeTabs(b *strings.Builder, tabs []*docs.Tab, depth int) {
	for _, tab := range tabs {
		if tab.TabProperties != nil && tab.TabProperties.Title != "" {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString("=== ")
			b.WriteString(tab.TabProperties.Title)
			b.WriteString(" ===\n\n")
		}
		if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
			writeElements(b, tab.DocumentTab.Body.Content)
		}
		writeTabs(b, tab.ChildTabs, depth+1)
		b.WriteString("\n")
	}
}

func writeElements(b *strings.Builder, elements []*docs.StructuralElement) {
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			writeParagraph(b, el.Paragraph)
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					var cb strings.Builder
					writeElements(&cb, cell.Content)
					cells = append(cells, strings.TrimRight(cb.String(), "\n"))
				}
				b.WriteString(strings.Join(cells, "\t"))
				b.WriteString("\n")
			}
		}
	}
}

func writeParagraph(b *strings.Builder, p *docs.Paragraph) {
	for _, el := range p.Elements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Content)
		}
	}
}
