// Package documents provides the stored documents view for the TUI.
package documents

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medichat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// View lists the documents in the object store alongside the index status.
type View struct {
	styles        *styles.Styles
	list          *list.DocumentList
	ingestService driving.IngestService
	indexService  driving.IndexService
	ctx           context.Context

	status     *driving.IndexStatus
	notice     string
	width      int
	height     int
	ready      bool
	err        error
	loading    bool
	processing bool
}

// NewView creates a new documents view. indexService may be nil.
func NewView(
	s *styles.Styles,
	ingestService driving.IngestService,
	indexService driving.IndexService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:        s,
		list:          list.NewDocumentList(s),
		ingestService: ingestService,
		indexService:  indexService,
		ctx:           context.Background(),
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the documents and the index status.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.notice = ""
	return tea.Batch(v.loadDocuments(), v.loadStatus())
}

func (v *View) loadDocuments() tea.Cmd {
	svc := v.ingestService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: fmt.Errorf("ingest service not available")}
		}
		docs, err := svc.ListDocuments(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) loadStatus() tea.Cmd {
	svc := v.indexService
	ctx := v.ctx
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		status, err := svc.Status(ctx)
		return messages.IndexStatusLoaded{Status: status, Err: err}
	}
}

func (v *View) processStore() tea.Cmd {
	svc := v.ingestService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.StoreProcessed{Err: fmt.Errorf("ingest service not available")}
		}
		result, err := svc.ProcessStore(ctx)
		return messages.StoreProcessed{Result: result, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.list.SetDocuments(msg.Documents)
		return v, nil

	case messages.IndexStatusLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.status = msg.Status
		return v, nil

	case messages.StoreProcessed:
		v.processing = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = processNotice(msg.Result)
		return v, v.loadStatus()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	case "r":
		return v, v.Init()
	case "p":
		if v.processing {
			return v, nil
		}
		v.processing = true
		v.notice = ""
		return v, v.processStore()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func processNotice(result *domain.ProcessResult) string {
	if result == nil {
		return ""
	}
	notice := fmt.Sprintf("Indexed %d documents (%d chunks)", result.DocumentsProcessed, result.ChunksIndexed)
	if len(result.Failed) > 0 {
		notice += fmt.Sprintf(", %d failed", len(result.Failed))
	}
	return notice
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Documents"))
	b.WriteString("\n\n")

	if v.status != nil {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Index %s: %s, %d chunks from %d documents (%s)",
			v.status.Collection, v.status.State, v.status.ChunkCount, v.status.DocumentCount, v.status.EmbeddingModel)))
		b.WriteString("\n\n")
	}

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")

	if v.processing {
		b.WriteString(v.styles.Warning.Render("Processing stored documents..."))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [r] reload  [p] process all  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	// Title, status line, notice and help take eight lines.
	v.list.SetDimensions(width, max(height-8, 3))
}

// Documents returns the listed documents.
func (v *View) Documents() []domain.StoredDocument {
	return v.list.Documents()
}

// SelectedDocument returns the highlighted document, or nil.
func (v *View) SelectedDocument() *domain.StoredDocument {
	return v.list.SelectedDocument()
}

// Status returns the last loaded index status.
func (v *View) Status() *driving.IndexStatus {
	return v.status
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
