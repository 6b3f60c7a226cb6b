package services

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

const timestampLayout = "2006-01-02 15:04:05"

// Reporter renders prompts and notification emails from templates held in
// the prompt store. Without a store the built-in templates are used.
type Reporter struct {
	prompts driven.PromptStore
	now     func() time.Time
}

// NewReporter creates a reporter. prompts may be nil.
func NewReporter(prompts driven.PromptStore) *Reporter {
	return &Reporter{prompts: prompts, now: time.Now}
}

// SetPromptStore replaces the template source.
func (r *Reporter) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// AnswerPrompt frames a question with the retrieved context.
func (r *Reporter) AnswerPrompt(totalDocuments int, context, question string) (string, error) {
	return r.render(driven.PromptAnswerSystem, struct {
		TotalDocuments int
		Context        string
		Question       string
	}{totalDocuments, context, question})
}

// Report renders an analysis report email.
func (r *Reporter) Report(
	query, response string,
	insights domain.Insights,
	history []domain.ChatMessage,
) (subject, body string, err error) {
	ts := r.now().Format(timestampLayout)
	body, err = r.render(driven.PromptReportEmail, struct {
		Timestamp string
		Query     string
		Response  string
		Insights  domain.Insights
		Messages  []domain.ChatMessage
	}{ts, query, response, insights, history})
	if err != nil {
		return "", "", err
	}
	return "MediChat Pro Analysis Report - " + ts, body, nil
}

// Ticket renders a support ticket email. replyTo may be empty.
func (r *Reporter) Ticket(
	query, response, replyTo string,
	history []domain.ChatMessage,
) (subject, body string, err error) {
	ticketID := "TICKET-" + strings.ToUpper(uuid.NewString()[:8])
	body, err = r.render(driven.PromptSupportTicket, struct {
		TicketID  string
		Timestamp string
		ReplyTo   string
		Query     string
		Response  string
		Messages  []domain.ChatMessage
	}{ticketID, r.now().Format(timestampLayout), replyTo, query, response, history})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Support Ticket %s - MediChat Pro", ticketID), body, nil
}

// SessionSummary renders the email sent when a session is saved.
func (r *Reporter) SessionSummary(snapshot domain.SessionSnapshot) (subject, body string, err error) {
	ts := snapshot.Timestamp.Format(timestampLayout)
	body, err = r.render(driven.PromptSessionSummary, struct {
		Timestamp string
		Snapshot  domain.SessionSnapshot
		Insights  domain.Insights
	}{ts, snapshot, sessionSaveInsights(snapshot)})
	if err != nil {
		return "", "", err
	}
	return "MediChat Pro Session Summary - " + ts, body, nil
}

func (r *Reporter) render(name string, data any) (string, error) {
	text, err := r.load(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: template %s: %w", domain.ErrInvalidConfiguration, name, err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: render %s: %w", domain.ErrInvalidConfiguration, name, err)
	}
	return sb.String(), nil
}

func (r *Reporter) load(name string) (string, error) {
	if r.prompts != nil {
		text, err := r.prompts.Load(name)
		if err == nil {
			return text, nil
		}
		if _, ok := defaultTemplates[name]; !ok {
			return "", fmt.Errorf("load template %s: %w", name, err)
		}
	}
	text, ok := defaultTemplates[name]
	if !ok {
		return "", fmt.Errorf("%w: template %s", domain.ErrNotFound, name)
	}
	return text, nil
}
