// Package menu is the TUI start screen.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/styles"
)

// Item is one entry of the menu. Selecting a Quit item exits the app.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// defaultItems are the entries shown on the start screen. Each is also
// reachable by its 1-based number.
func defaultItems() []Item {
	return []Item{
		{Label: "Chat", Description: "Ask questions about your medical documents", View: messages.ViewChat},
		{Label: "Documents", Description: "Browse stored documents and re-index them", View: messages.ViewDocuments},
		{Label: "Settings", Description: "Models, storage, index and email settings", View: messages.ViewSettings},
		{Label: "Help", Description: "Keys and chat commands", View: messages.ViewHelp},
		{Label: "Quit", Description: "Leave MediChat", Quit: true},
	}
}

// View is the start screen.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu with the cursor on Chat.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items:  defaultItems(),
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and opens the chosen view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.choose(v.selected)
		case "q":
			return v, tea.Quit
		default:
			if n := digit(key); n >= 1 && n <= len(v.items) {
				v.selected = n - 1
				return v, v.choose(v.selected)
			}
		}
	}
	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// digit returns the value of a single-digit key, or -1.
func digit(key string) int {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '0')
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("MediChat"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Medical Document Assistant"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d  %s", i+1, item.Label)
		if i == v.selected {
			b.WriteString(v.styles.Subtitle.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.items[v.selected].Description))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] move  [1-5] jump  [enter] open  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor index.
func (v *View) Selected() int {
	return v.selected
}

// SelectedItem returns the item under the cursor.
func (v *View) SelectedItem() Item {
	return v.items[v.selected]
}
