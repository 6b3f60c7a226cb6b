// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the conversation view.
	ViewChat
	// ViewDocuments lists stored documents.
	ViewDocuments
	// ViewSettings shows the effective settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SessionStarted carries a new chat session.
type SessionStarted struct {
	Session *domain.SessionState
	Err     error
}

// ChatReplied carries the reply to a submitted chat turn.
type ChatReplied struct {
	Text  string
	Reply *driving.Reply
	Err   error
}

// DocumentsLoaded carries the stored documents.
type DocumentsLoaded struct {
	Documents []domain.StoredDocument
	Err       error
}

// IndexStatusLoaded carries the vector index status.
type IndexStatusLoaded struct {
	Status *driving.IndexStatus
	Err    error
}

// SettingsLoaded carries the effective settings.
type SettingsLoaded struct {
	Values []driving.Setting
	Err    error
}

// ProvidersChecked carries the outcome of pinging the model endpoints.
type ProvidersChecked struct {
	EmbeddingErr  error
	CompletionErr error
}

// StoreProcessed carries the outcome of re-indexing every stored document.
type StoreProcessed struct {
	Result *domain.ProcessResult
	Err    error
}

// SettingSaved is sent after a setting has been written.
type SettingSaved struct {
	Key string
	Err error
}
