package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/medichat/internal/core/domain"
	"github.com/custodia-labs/medichat/internal/core/ports/driven"
	"github.com/custodia-labs/medichat/internal/core/ports/driving"
	"github.com/custodia-labs/medichat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// History windows attached to notification emails.
const (
	reportHistory = 10
	ticketHistory = 5
)

// Fixed replies.
const (
	msgNotReady       = "Please upload and process documents first!"
	msgMissingEmail   = "Please provide a valid email address, e.g. send report to user@example.com"
	msgTicketFailed   = "Failed to create support ticket"
	msgNothingToIndex = "No documents could be processed from S3"
	msgSessionSaved   = "Session saved and summary sent to email!"
	msgSaveFailed     = "Failed to save session"
	msgSaveNeedsEmail = "Please enter a valid email address to save session"
)

const (
	answerTemperature = 0.2
	answerMaxTokens   = 2048
)

const (
	reportViaChatNote  = "Report sent via chat command"
	ticketViaChatReply = "Support ticket created via chat command."
	testEmailQuery     = "Test email configuration"
	testEmailCoverage  = "This is a test email to verify email configuration."
	testEmailResponse  = "This is a test email to verify that the email functionality is working correctly. " +
		"If you receive this email, the configuration is successful!"
)

// ChatService classifies chat turns and answers them.
type ChatService struct {
	router     *Router
	retriever  *Retriever
	manager    *IndexManager
	ingest     driving.IngestService
	completion driven.CompletionService
	notifier   driven.Notifier
	archive    driven.SessionArchive
	reporter   *Reporter
	topK       int
}

// NewChatService creates a chat service. completion, notifier and archive
// may be nil; the affected turns then reply with a failure.
func NewChatService(
	router *Router,
	retriever *Retriever,
	manager *IndexManager,
	ingest driving.IngestService,
	completion driven.CompletionService,
	notifier driven.Notifier,
	archive driven.SessionArchive,
	reporter *Reporter,
	topK int,
) *ChatService {
	if topK < 1 {
		topK = domain.DefaultTopK
	}
	if reporter == nil {
		reporter = NewReporter(nil)
	}
	return &ChatService{
		router:     router,
		retriever:  retriever,
		manager:    manager,
		ingest:     ingest,
		completion: completion,
		notifier:   notifier,
		archive:    archive,
		reporter:   reporter,
		topK:       topK,
	}
}

// NewSession creates a session. When the collection already holds chunks
// the session starts ready, counting the documents in the content store.
func (c *ChatService) NewSession(ctx context.Context) (*domain.SessionState, error) {
	session := domain.NewSessionState(uuid.NewString())

	count, err := c.manager.Count(ctx)
	if err != nil {
		logger.Warn("could not read existing index: %v", err)
		return session, nil
	}
	if count == 0 {
		return session, nil
	}

	session.SetIndexReady(true)
	if c.ingest != nil {
		docs, err := c.ingest.ListDocuments(ctx)
		if err != nil {
			logger.Warn("could not count stored documents: %v", err)
		} else {
			session.SetDocumentCount(len(docs))
		}
	}
	logger.Info("loaded existing index with %d chunks", count)
	return session, nil
}

// Handle answers one chat turn and records it on the session.
func (c *ChatService) Handle(ctx context.Context, session *domain.SessionState, text string) (*driving.Reply, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}
	start := time.Now()

	intent := c.router.Classify(text)
	logger.Debug("classified %q as %s", text, intent.Kind)

	var reply *driving.Reply
	switch intent.Kind {
	case domain.CommandSendReport:
		reply = c.sendReport(ctx, session, intent)
	case domain.CommandSupportTicket:
		reply = c.supportTicket(ctx, session, intent)
	case domain.CommandProcessStoreDocuments:
		reply = c.processStore(ctx, session)
	case domain.CommandSaveSession:
		reply = c.saveSession(ctx, session)
	default:
		reply = c.plainQuery(ctx, session, text)
	}

	reply.Intent = intent
	reply.Elapsed = time.Since(start)
	session.AppendTurn(text, reply.Text, reply.Insights)
	return reply, nil
}

// Ask answers a question from the index without a session.
func (c *ChatService) Ask(ctx context.Context, question string) (*driving.Reply, error) {
	start := time.Now()

	count, err := c.manager.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &driving.Reply{Text: msgNotReady, Err: domain.ErrEmptyIndex}, nil
	}

	docs := 0
	if c.ingest != nil {
		if stored, err := c.ingest.ListDocuments(ctx); err == nil {
			docs = len(stored)
		}
	}

	reply := c.answer(ctx, question, docs, 0)
	reply.Intent = domain.CommandIntent{Kind: domain.CommandPlainQuery, Text: question}
	reply.Elapsed = time.Since(start)
	return reply, nil
}

// RecordUpload adds indexed documents to the session counters.
func (c *ChatService) RecordUpload(session *domain.SessionState, result *domain.UploadResult) {
	if session == nil || result == nil {
		return
	}
	session.IncrementDocumentCount(result.DocumentsIndexed)
	if result.ChunksIndexed > 0 {
		session.SetIndexReady(true)
	}
}

// SendTestEmail sends a fixed report to verify notification settings.
func (c *ChatService) SendTestEmail(ctx context.Context, to string) error {
	if err := domain.ValidateEmail(to); err != nil {
		return err
	}
	insights := domain.Insights{
		ConfidenceScore:  1,
		QueryComplexity:  "Test",
		DocumentCoverage: testEmailCoverage,
		MedicalKeywords:  []string{"test", "email", "configuration"},
	}
	subject, body, err := c.reporter.Report(testEmailQuery, testEmailResponse, insights, nil)
	if err != nil {
		return err
	}
	return c.notify(ctx, func(n driven.Notifier) error {
		return n.SendReport(ctx, subject, body, to)
	})
}

// ClearDocuments deletes every indexed chunk and resets the session's
// document counters. Stored documents are kept.
func (c *ChatService) ClearDocuments(ctx context.Context, session *domain.SessionState) error {
	if _, err := c.manager.Clear(ctx); err != nil {
		return err
	}
	if session != nil {
		session.Reset()
	}
	return nil
}

// lastAnswer finds the most recent answered question in the session.
func (c *ChatService) lastAnswer(session *domain.SessionState) (string, domain.ChatMessage, bool) {
	msgs := session.Messages()
	for i := len(msgs) - 1; i > 0; i-- {
		answer, question := msgs[i], msgs[i-1]
		if answer.Role != domain.RoleAssistant || answer.Insights == nil || question.Role != domain.RoleUser {
			continue
		}
		if c.router.Classify(question.Content).IsCommand() {
			continue
		}
		return question.Content, answer, true
	}
	return "", domain.ChatMessage{}, false
}

func (c *ChatService) sendReport(ctx context.Context, session *domain.SessionState, intent domain.CommandIntent) *driving.Reply {
	if intent.Err != nil {
		if intent.Email == "" {
			return &driving.Reply{Text: msgMissingEmail, Err: intent.Err}
		}
		return &driving.Reply{Text: "Invalid email address: " + intent.Email, Err: intent.Err}
	}

	query := "Chat command: send report"
	response := fmt.Sprintf("Analysis report sent to %s as requested via chat command.", intent.Email)
	var insights domain.Insights
	if question, answer, ok := c.lastAnswer(session); ok {
		query, response = question, answer.Content
		insights = *answer.Insights
	}
	insights.TotalDocuments = session.DocumentCount()
	insights.MessageCount = session.MessageCount()
	insights.SessionSummary = reportViaChatNote

	err := c.deliver(ctx, func() (string, string, error) {
		return c.reporter.Report(query, response, insights, session.RecentMessages(reportHistory))
	}, func(n driven.Notifier, subject, body string) error {
		return n.SendReport(ctx, subject, body, intent.Email)
	})
	if err != nil {
		logger.Warn("send report to %s: %v", intent.Email, err)
		return &driving.Reply{Text: "Failed to send report to " + intent.Email, Err: err}
	}
	return &driving.Reply{Text: fmt.Sprintf("Analysis report sent to %s!", intent.Email)}
}

func (c *ChatService) supportTicket(ctx context.Context, session *domain.SessionState, intent domain.CommandIntent) *driving.Reply {
	replyTo := ""
	if session.HasValidReceiver() {
		replyTo = session.ReceiverEmail()
	}

	err := c.deliver(ctx, func() (string, string, error) {
		return c.reporter.Ticket(intent.Text, ticketViaChatReply, replyTo, session.RecentMessages(ticketHistory))
	}, func(n driven.Notifier, subject, body string) error {
		return n.SendTicket(ctx, subject, body, replyTo)
	})
	if err != nil {
		logger.Warn("support ticket: %v", err)
		return &driving.Reply{Text: msgTicketFailed, Err: err}
	}
	return &driving.Reply{Text: fmt.Sprintf("Support ticket created and sent to %s!", c.notifier.TicketRecipient())}
}

func (c *ChatService) processStore(ctx context.Context, session *domain.SessionState) *driving.Reply {
	if c.ingest == nil {
		return &driving.Reply{Text: msgNothingToIndex, Err: domain.ErrStoreUnavailable}
	}

	result, err := c.ingest.ProcessStore(ctx)
	if err != nil {
		logger.Warn("process store: %v", err)
		return &driving.Reply{Text: msgNothingToIndex, Err: err}
	}
	if result.DocumentsProcessed == 0 {
		return &driving.Reply{Text: msgNothingToIndex, Err: failuresError(result.Failed)}
	}

	session.SetDocumentCount(result.DocumentsProcessed)
	session.SetIndexReady(true)
	return &driving.Reply{
		Text: fmt.Sprintf("Successfully processed %d S3 documents with %d chunks! All S3 documents are now available for chat.",
			result.DocumentsProcessed, result.ChunksIndexed),
		Err: failuresError(result.Failed),
	}
}

func (c *ChatService) saveSession(ctx context.Context, session *domain.SessionState) *driving.Reply {
	if !session.HasValidReceiver() {
		return &driving.Reply{Text: msgSaveNeedsEmail, Err: domain.ErrInvalidEmailAddress}
	}

	snapshot := session.Snapshot()
	if c.archive != nil {
		if err := c.archive.Save(ctx, snapshot); err != nil {
			logger.Warn("archive session: %v", err)
			return &driving.Reply{Text: msgSaveFailed, Err: err}
		}
	}

	err := c.deliver(ctx, func() (string, string, error) {
		return c.reporter.SessionSummary(snapshot)
	}, func(n driven.Notifier, subject, body string) error {
		return n.SendReport(ctx, subject, body, snapshot.Email)
	})
	if err != nil {
		logger.Warn("session summary: %v", err)
		return &driving.Reply{Text: msgSaveFailed, Err: err}
	}
	insights := sessionSaveInsights(snapshot)
	return &driving.Reply{Text: msgSessionSaved, Insights: &insights}
}

func (c *ChatService) plainQuery(ctx context.Context, session *domain.SessionState, question string) *driving.Reply {
	if !session.IsIndexReady() {
		return &driving.Reply{Text: msgNotReady, Err: domain.ErrEmptyIndex}
	}
	// Counts the user and assistant messages of this turn.
	return c.answer(ctx, question, session.DocumentCount(), session.MessageCount()+2)
}

// answer retrieves context and asks the completion service.
func (c *ChatService) answer(ctx context.Context, question string, documents, messages int) *driving.Reply {
	start := time.Now()

	chunks, err := c.retriever.Retrieve(ctx, question, c.topK)
	if err != nil {
		logger.Warn("retrieve: %v", err)
		return &driving.Reply{Text: "Sorry, I could not search your documents: " + err.Error(), Err: err}
	}

	prompt, err := c.reporter.AnswerPrompt(len(chunks), c.retriever.AssembleContext(chunks), question)
	if err != nil {
		return &driving.Reply{Text: "Sorry, the answer prompt could not be built: " + err.Error(), Err: err}
	}

	if c.completion == nil {
		err := fmt.Errorf("%w: completion service not configured", domain.ErrCompletionService)
		return &driving.Reply{Text: "Sorry, I could not generate an answer: " + err.Error(), Sources: chunks, Err: err}
	}

	text, err := c.completion.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleUser, Content: prompt},
	}, driven.ChatOptions{MaxTokens: answerMaxTokens, Temperature: answerTemperature})
	if err != nil {
		if !errors.Is(err, domain.ErrCompletionService) {
			err = fmt.Errorf("%w: %w", domain.ErrCompletionService, err)
		}
		logger.Warn("completion: %v", err)
		return &driving.Reply{Text: "Sorry, I could not generate an answer: " + err.Error(), Sources: chunks, Err: err}
	}

	total, err := c.manager.Count(ctx)
	if err != nil {
		total = len(chunks)
	}

	return &driving.Reply{
		Text:     text,
		Sources:  chunks,
		Insights: buildInsights(question, text, chunks, total, documents, messages, time.Since(start)),
	}
}

// deliver renders a message and hands it to the notifier.
func (c *ChatService) deliver(
	ctx context.Context,
	render func() (subject, body string, err error),
	send func(n driven.Notifier, subject, body string) error,
) error {
	subject, body, err := render()
	if err != nil {
		return err
	}
	return c.notify(ctx, func(n driven.Notifier) error {
		return send(n, subject, body)
	})
}

func (c *ChatService) notify(ctx context.Context, send func(driven.Notifier) error) error {
	if c.notifier == nil {
		return domain.ErrNotifierUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return send(c.notifier)
}

// failuresError joins per-document failures, or returns nil.
func failuresError(failed []domain.UploadFailure) error {
	errs := make([]error, len(failed))
	for i, f := range failed {
		errs[i] = fmt.Errorf("%s: %s", f.Filename, f.Error)
	}
	return errors.Join(errs...)
}
