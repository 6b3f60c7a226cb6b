package services

import (
	"maps"
	"strings"
	"text/template"

	"github.com/custodia-labs/medichat/internal/core/ports/driven"
)

// defaultTemplates are the built-in text/template sources for prompts and
// email bodies. The file prompt store seeds user-editable copies from them.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultTemplates = map[string]string{
	driven.PromptAnswerSystem: `You are MediChat Pro, an intelligent medical document assistant with expertise in medical analysis.
Based on the following medical documents, provide accurate, comprehensive, and clinically relevant answers.

IMPORTANT INSTRUCTIONS:
1. Always base your response on the provided medical documents
2. If information is not in the documents, clearly state "Based on the provided documents, this information is not available"
3. Provide specific medical insights, potential concerns, and recommendations when appropriate
4. Use medical terminology accurately
5. Include relevant medical context and explanations
6. If discussing medications, mention dosage, side effects, and interactions when available
7. For symptoms, provide potential causes and recommended actions
8. Always emphasize that this is for informational purposes and not a substitute for professional medical advice
9. When asked for patient details or all documents, provide information from ALL available documents
10. If multiple patients are mentioned, organize the information by patient for clarity

Medical Documents Context (Total Documents: {{.TotalDocuments}}):
{{.Context}}

User Question: {{.Question}}

Please provide a comprehensive medical analysis and answer:`,

	driven.PromptReportEmail: `MediChat Pro Analysis Report
Generated: {{.Timestamp}}

Query:
{{.Query}}

Response:
{{.Response}}

Document Insights
  Total documents:  {{.Insights.TotalDocuments}}
  Total chunks:     {{.Insights.TotalChunks}}
  Relevant chunks:  {{.Insights.RelevantChunks}}
  Messages:         {{.Insights.MessageCount}}
  Confidence:       {{.Insights.ConfidenceLabel}}
  Response time:    {{.Insights.ResponseSeconds}}s
{{- if .Insights.QueryComplexity}}
  Query complexity: {{.Insights.QueryComplexity}}
{{- end}}
{{- if .Insights.DocumentCoverage}}
  Coverage:         {{.Insights.DocumentCoverage}}
{{- end}}
{{- if .Insights.MedicalKeywords}}
  Medical keywords: {{join .Insights.MedicalKeywords ", "}}
{{- end}}
{{- if .Insights.SessionSummary}}
  Note:             {{.Insights.SessionSummary}}
{{- end}}

Recent Conversation
{{range .Messages}}[{{.Role}}] {{truncate .Content 500}}
{{else}}(no messages)
{{end}}
This report is for informational purposes only and is not a substitute for professional medical advice.`,

	driven.PromptSupportTicket: `MediChat Pro Support Ticket
Ticket:    {{.TicketID}}
Created:   {{.Timestamp}}
Reply to:  {{if .ReplyTo}}{{.ReplyTo}}{{else}}(no address configured){{end}}

User request:
{{.Query}}

System response:
{{.Response}}

Recent Conversation
{{range .Messages}}[{{.Role}}] {{truncate .Content 500}}
{{else}}(no messages)
{{end}}`,

	driven.PromptSessionSummary: `MediChat Pro Session Summary
Session:   {{.Snapshot.SessionID}}
Saved:     {{.Timestamp}}
Documents: {{.Snapshot.DocumentCount}}
Messages:  {{.Snapshot.MessageCount}}
Index:     {{if .Snapshot.IndexReady}}ready{{else}}not ready{{end}}

{{.Insights.DocumentCoverage}}

Recent Conversation
{{range .Snapshot.RecentMessages}}[{{.Role}}] {{truncate .Content 500}}
{{else}}(no messages)
{{end}}`,
}

// DefaultTemplates returns a copy of the built-in templates keyed by prompt name.
func DefaultTemplates() map[string]string {
	return maps.Clone(defaultTemplates)
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "..."
	},
}
