// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
)

// View lists the effective settings and edits one key at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	values   []driving.Setting
	selected int
	offset   int
	editing  bool
	input    textinput.Model
	notice   string
	err      error

	// Endpoint check results; checked is false until the first check returns.
	checked       bool
	checking      bool
	embeddingErr  error
	completionErr error

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 512

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           ti,
		width:           80,
		height:          24,
	}
}

// Init loads the settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		values, err := svc.Values()
		return messages.SettingsLoaded{Values: values, Err: err}
	}
}

func (v *View) saveSetting(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingSaved{Key: key, Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingSaved{Key: key, Err: svc.Set(key, value)}
	}
}

func (v *View) checkProviders() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			err := fmt.Errorf("settings service not available")
			return messages.ProvidersChecked{EmbeddingErr: err, CompletionErr: err}
		}
		return messages.ProvidersChecked{
			EmbeddingErr:  svc.ValidateEmbeddingConfig(),
			CompletionErr: svc.ValidateCompletionConfig(),
		}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.values = msg.Values
		v.err = nil
		if v.selected >= len(v.values) {
			v.selected = 0
			v.offset = 0
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case messages.ProvidersChecked:
		v.checking = false
		v.checked = true
		v.embeddingErr = msg.EmbeddingErr
		v.completionErr = msg.CompletionErr
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keyDown, "j":
		if v.selected < len(v.values)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keyEnter:
		if v.selected < len(v.values) {
			return v, v.startEdit(v.values[v.selected])
		}
	case "c":
		if !v.checking {
			v.checking = true
			return v, v.checkProviders()
		}
	case "r":
		v.notice = ""
		return v, v.loadSettings()
	case keyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.stopEdit()
		return v, nil
	case keyEnter:
		key := v.values[v.selected].Key
		value := v.input.Value()
		v.stopEdit()
		return v, v.saveSetting(key, value)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) startEdit(setting driving.Setting) tea.Cmd {
	v.editing = true
	v.notice = ""
	v.input.Reset()
	v.input.EchoMode = textinput.EchoNormal
	v.input.Placeholder = setting.Key
	if setting.Secret {
		v.input.EchoMode = textinput.EchoPassword
	} else {
		v.input.SetValue(setting.Value)
	}
	return v.input.Focus()
}

func (v *View) stopEdit() {
	v.editing = false
	v.input.Blur()
}

func (v *View) adjustScroll() {
	visible := v.visibleRows()
	if v.selected < v.offset {
		v.offset = v.selected
	} else if v.selected >= v.offset+visible {
		v.offset = v.selected - visible + 1
	}
}

// visibleRows is the number of settings rows that fit on screen.
func (v *View) visibleRows() int {
	return max(v.height-12, 3)
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.values) == 0 {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n\n")
	}

	keyWidth := 0
	for _, s := range v.values {
		keyWidth = max(keyWidth, len(s.Key))
	}

	end := min(v.offset+v.visibleRows(), len(v.values))
	for i := v.offset; i < end; i++ {
		b.WriteString(v.renderRow(i, keyWidth))
		b.WriteString("\n")
	}
	if len(v.values) > v.visibleRows() {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.offset+1, end, len(v.values))))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Edit " + v.values[v.selected].Key))
		b.WriteString("\n")
		b.WriteString(v.styles.InputField.Render(v.input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderChecks())
	b.WriteString(v.styles.Help.Render(v.helpText()))

	return b.String()
}

func (v *View) renderRow(index, keyWidth int) string {
	s := v.values[index]
	value := s.Value
	switch {
	case s.Secret && value != "":
		value = "********"
	case value == "":
		value = "(not set)"
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", keyWidth, s.Key, value))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", keyWidth, s.Key)) + v.styles.Muted.Render(value)
}

func (v *View) renderChecks() string {
	if v.checking {
		return v.styles.Muted.Render("Checking endpoints...") + "\n\n"
	}
	if !v.checked {
		return ""
	}
	return v.renderCheck("Embedding", v.embeddingErr) + "\n" +
		v.renderCheck("Completion", v.completionErr) + "\n\n"
}

func (v *View) renderCheck(name string, err error) string {
	if err != nil {
		return v.styles.Error.Render(fmt.Sprintf("%s: %v", name, err))
	}
	return v.styles.Success.Render(name + ": OK")
}

func (v *View) helpText() string {
	if v.editing {
		return "[enter] save  [esc] cancel"
	}
	return "[↑/↓] navigate  [enter] edit  [c] check endpoints  [r] reload  [esc] back"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = max(width-10, 20)
}

// Reset clears transient state before the view is shown again.
func (v *View) Reset() {
	v.stopEdit()
	v.notice = ""
	v.err = nil
	v.checked = false
	v.checking = false
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Selected returns the highlighted row index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
