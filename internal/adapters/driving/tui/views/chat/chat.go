// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// ErrNoChatService is returned when the view has no chat service.
var ErrNoChatService = errors.New("chat service not available")

// welcomeText is shown when a session starts.
var welcomeText = func() string {
	examples := make([]string, len(domain.ChatCommands))
	for i, c := range domain.ChatCommands {
		examples[i] = c.Example
	}
	return "Ask a question about your uploaded medical documents.\n" +
		"Commands: " + strings.Join(examples, ", ") + ".\n" +
		"Type /email <address> to set where summaries go, /clear to empty the index."
}()

const msgIndexCleared = "Index cleared. Upload or process documents to continue."

// reservedLines is the height taken by the header, input and status bar.
const reservedLines = 8

// entry is one rendered transcript line.
type entry struct {
	role   domain.Role
	text   string
	footer string
	failed bool
}

// View is the chat view: a scrolling transcript above a single-line input.
//
// The session is mutated by ChatService.Handle inside a tea.Cmd, so the view
// keeps its own transcript and reads session counters only after a reply
// has arrived.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	viewport  viewport.Model
	statusbar *status.Bar

	chatService driving.ChatService
	ctx         context.Context

	session    *domain.SessionState
	transcript []entry
	pending    bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(status.HintsChat)

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewChatInput(s),
		viewport:    viewport.New(80, 24-reservedLines),
		statusbar:   bar,
		chatService: chatService,
		ctx:         context.Background(),
	}
	v.SetDimensions(80, 24)
	v.ready = false
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts a session when none is active.
func (v *View) Init() tea.Cmd {
	if v.session != nil {
		return v.input.Focus()
	}
	return tea.Batch(v.input.Focus(), v.startSession())
}

func (v *View) startSession() tea.Cmd {
	svc := v.chatService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.SessionStarted{Err: ErrNoChatService}
		}
		session, err := svc.NewSession(ctx)
		return messages.SessionStarted{Session: session, Err: err}
	}
}

func (v *View) send(text string) tea.Cmd {
	svc := v.chatService
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		reply, err := svc.Handle(ctx, session, text)
		return messages.ChatReplied{Text: text, Reply: reply, Err: err}
	}
}

// clear empties the index. The reply arrives as an ordinary chat reply.
func (v *View) clear() tea.Cmd {
	svc := v.chatService
	ctx := v.ctx
	session := v.session
	return func() tea.Msg {
		if err := svc.ClearDocuments(ctx, session); err != nil {
			return messages.ChatReplied{Text: "/clear", Err: fmt.Errorf("clear failed: %w", err)}
		}
		return messages.ChatReplied{Text: "/clear", Reply: &driving.Reply{Text: msgIndexCleared}}
	}
}

// setReceiver applies an /email line. No turn is pending, so the session
// is not shared with a running command.
func (v *View) setReceiver(addr string) {
	e := entry{role: domain.RoleAssistant}
	if addr == "" {
		e.text, e.failed = "Usage: /email <address>", true
	} else if err := v.session.SetReceiverEmail(addr); err != nil {
		e.text, e.failed = "Invalid address: "+err.Error(), true
	} else {
		e.text = "Session summaries will be sent to " + addr
	}
	v.transcript = append(v.transcript, e)
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionStarted:
		v.handleSessionStarted(msg)
		return v, nil

	case messages.ChatReplied:
		v.handleReply(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(msg.String(), v.keymap.ScrollUp),
		keymap.Matches(msg.String(), v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(msg.String(), v.keymap.Send):
		text := strings.TrimSpace(v.input.Value())
		if text == "" || v.pending {
			return v, nil
		}
		if v.session == nil {
			v.setError(errors.New("no active session"))
			return v, nil
		}
		v.input.Reset()
		v.transcript = append(v.transcript, entry{role: domain.RoleUser, text: text})
		if strings.HasPrefix(text, "/email") {
			v.setReceiver(strings.TrimSpace(strings.TrimPrefix(text, "/email")))
			v.refresh()
			return v, nil
		}
		v.pending = true
		v.statusbar.SetState(status.StateThinking)
		v.refresh()
		if text == "/clear" {
			return v, v.clear()
		}
		return v, v.send(text)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleSessionStarted(msg messages.SessionStarted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.session = msg.Session
	v.err = nil
	v.transcript = append(v.transcript, entry{role: domain.RoleAssistant, text: welcomeText})
	v.syncStatus()
	v.refresh()
}

func (v *View) handleReply(msg messages.ChatReplied) {
	v.pending = false

	if msg.Err != nil {
		v.transcript = append(v.transcript, entry{role: domain.RoleAssistant, text: msg.Err.Error(), failed: true})
		v.setError(msg.Err)
		v.refresh()
		return
	}

	reply := msg.Reply
	e := entry{role: domain.RoleAssistant, text: reply.Text, failed: reply.Err != nil}
	e.footer = replyFooter(reply)
	v.transcript = append(v.transcript, e)

	v.err = reply.Err
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	if reply.Err != nil {
		v.statusbar.SetState(status.StateError)
	}
	v.syncStatus()
	v.refresh()
}

// replyFooter summarises insights and sources below an answer.
func replyFooter(reply *driving.Reply) string {
	var parts []string
	if reply.Insights != nil {
		parts = append(parts, "confidence "+reply.Insights.ConfidenceLabel())
		if len(reply.Insights.MedicalKeywords) > 0 {
			parts = append(parts, "keywords: "+strings.Join(reply.Insights.MedicalKeywords, ", "))
		}
	}
	if len(reply.Sources) > 0 {
		seen := make(map[string]bool)
		var docs []string
		for i := range reply.Sources {
			id := reply.Sources[i].Chunk.SourceDocumentID
			if id != "" && !seen[id] {
				seen[id] = true
				docs = append(docs, id)
			}
		}
		if len(docs) > 0 {
			parts = append(parts, "sources: "+strings.Join(docs, ", "))
		}
	}
	if reply.Elapsed > 0 {
		parts = append(parts, fmt.Sprintf("%.1fs", reply.Elapsed.Seconds()))
	}
	return strings.Join(parts, " | ")
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
}

func (v *View) syncStatus() {
	if v.session == nil {
		return
	}
	v.statusbar.SetSession(v.session.DocumentCount(), v.session.MessageCount(), v.session.IsIndexReady())
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))
	blocks := make([]string, 0, len(v.transcript)+1)

	for _, e := range v.transcript {
		var label string
		if e.role == domain.RoleUser {
			label = v.styles.UserMessage.Render("You")
		} else {
			label = v.styles.AssistantMessage.Render("MediChat")
		}

		body := wrap.Render(e.text)
		if e.failed {
			body = v.styles.Error.Render(body)
		}

		block := label + "\n" + body
		if e.footer != "" {
			block += "\n" + v.styles.Muted.Render(wrap.Render(e.footer))
		}
		blocks = append(blocks, block)
	}

	if v.pending {
		blocks = append(blocks, v.styles.Muted.Render("Thinking..."))
	}

	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("MediChat"),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.viewport.Width = width
	v.viewport.Height = max(height-reservedLines, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Session returns the active session, or nil before one has started.
func (v *View) Session() *domain.SessionState {
	return v.session
}

// Pending reports whether a reply is outstanding.
func (v *View) Pending() bool {
	return v.pending
}

// TranscriptLen returns the number of rendered transcript entries.
func (v *View) TranscriptLen() int {
	return len(v.transcript)
}

// Input returns the current input text.
func (v *View) Input() string {
	return v.input.Value()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}
