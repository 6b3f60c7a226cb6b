// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medichat/internal/core/domain"
)

// DocumentList displays stored documents in a navigable list.
type DocumentList struct {
	documents []domain.StoredDocument
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the document list.
func (d *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (d *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			d.MoveUp()
		case "down", "j":
			d.MoveDown()
		}
	}
	return d, nil
}

// View renders the document list.
func (d *DocumentList) View() string {
	if len(d.documents) == 0 {
		return d.styles.Muted.Render("No documents uploaded")
	}

	lines := make([]string, 0, len(d.documents)+2)
	lines = append(lines, d.styles.Subtitle.Render(fmt.Sprintf("Documents (%d)", len(d.documents))), "")

	// One line per document; the header takes two.
	visibleCount := d.height - 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if d.selected >= visibleCount {
		start = d.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(d.documents))

	for i := start; i < end; i++ {
		lines = append(lines, d.renderDocument(i, &d.documents[i]))
	}

	return strings.Join(lines, "\n")
}

// renderDocument formats a single document row.
func (d *DocumentList) renderDocument(index int, doc *domain.StoredDocument) string {
	indicator := "  "
	if index == d.selected {
		indicator = "> "
	}

	name := doc.Filename
	maxNameLen := max(d.width-30, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	meta := humanize.Bytes(uint64(max(doc.SizeBytes, 0)))
	if !doc.LastModified.IsZero() {
		meta += "  " + humanize.Time(doc.LastModified)
	}

	if index == d.selected {
		return d.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, meta))
	}
	return d.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
		d.styles.Muted.Render(meta)
}

// SetDocuments replaces the listed documents.
func (d *DocumentList) SetDocuments(docs []domain.StoredDocument) {
	d.documents = docs
	d.selected = 0
}

// Documents returns the listed documents.
func (d *DocumentList) Documents() []domain.StoredDocument {
	return d.documents
}

// Selected returns the index of the selected document.
func (d *DocumentList) Selected() int {
	return d.selected
}

// SelectedDocument returns the currently selected document, or nil if none.
func (d *DocumentList) SelectedDocument() *domain.StoredDocument {
	if d.selected < 0 || d.selected >= len(d.documents) {
		return nil
	}
	return &d.documents[d.selected]
}

// MoveUp moves selection up.
func (d *DocumentList) MoveUp() {
	if d.selected > 0 {
		d.selected--
	}
}

// MoveDown moves selection down.
func (d *DocumentList) MoveDown() {
	if d.selected < len(d.documents)-1 {
		d.selected++
	}
}

// SetDimensions sets the component dimensions.
func (d *DocumentList) SetDimensions(width, height int) {
	d.width = width
	d.height = height
}

// Count returns the number of documents.
func (d *DocumentList) Count() int {
	return len(d.documents)
}
