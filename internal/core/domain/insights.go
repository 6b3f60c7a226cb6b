package domain

import (
	"fmt"
	"time"
)

// Insights summarises how an answer or session action was produced.
// It is attached to assistant messages and rendered into email reports.
type Insights struct {
	// TotalDocuments is the number of documents ingested in the session.
	TotalDocuments int `json:"total_documents" yaml:"total_documents"`

	// TotalChunks is the number of chunks in the index.
	TotalChunks int `json:"total_chunks" yaml:"total_chunks"`

	// RelevantChunks is the number of chunks retrieved for the answer.
	RelevantChunks int `json:"relevant_chunks" yaml:"relevant_chunks"`

	// MessageCount is the number of messages in the session.
	MessageCount int `json:"message_count" yaml:"message_count"`

	// ConfidenceScore is a 0-1 estimate derived from retrieval similarity.
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence_score"`

	// ResponseTime is how long retrieval plus completion took.
	ResponseTime time.Duration `json:"response_time" yaml:"response_time"`

	// QueryComplexity labels the question (Simple, Moderate, Complex) or the action.
	QueryComplexity string `json:"query_complexity" yaml:"query_complexity"`

	// DocumentCoverage is a one-line description of what the answer drew on.
	DocumentCoverage string `json:"document_coverage" yaml:"document_coverage"`

	// MedicalKeywords lists medical terms found in the question and answer.
	MedicalKeywords []string `json:"medical_keywords,omitempty" yaml:"medical_keywords,omitempty"`

	// SessionSummary is a free-text note used by command-driven reports.
	SessionSummary string `json:"session_summary,omitempty" yaml:"session_summary,omitempty"`
}

// ConfidenceLabel formats the confidence as a percentage, e.g. "95.0%".
func (i Insights) ConfidenceLabel() string {
	return fmt.Sprintf("%.1f%%", i.ConfidenceScore*100)
}

// ResponseSeconds formats the response time in seconds, e.g. "1.50".
func (i Insights) ResponseSeconds() string {
	return fmt.Sprintf("%.2f", i.ResponseTime.Seconds())
}
