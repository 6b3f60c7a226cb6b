package services

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// maxKeywords caps the medical keywords reported per answer.
const maxKeywords = 10

// medicalTerms are matched as whole words (or word sequences) against the
// question and answer.
var medicalTerms = []string{
	"allergy", "anemia", "antibiotic", "arrhythmia", "asthma", "biopsy",
	"blood pressure", "blood sugar", "bmi", "cancer", "cardiac", "cholesterol",
	"chronic", "creatinine", "ct scan", "diabetes", "diagnosis", "dosage",
	"ecg", "fever", "fracture", "glucose", "hba1c", "heart rate", "hemoglobin",
	"hypertension", "infection", "inflammation", "insulin", "kidney", "lab",
	"lipid", "liver", "lymphocytes", "medication", "mri", "patient",
	"platelets", "prescription", "prognosis", "pulse", "symptom", "symptoms",
	"surgery", "thyroid", "treatment", "triglycerides", "tumor", "ultrasound",
	"vaccine", "vitamin", "wbc", "x-ray",
}

// buildInsights derives answer metrics from the retrieval results.
func buildInsights(
	question, answer string,
	chunks []domain.RetrievedChunk,
	totalChunks, totalDocuments, messageCount int,
	elapsed time.Duration,
) *domain.Insights {
	return &domain.Insights{
		TotalDocuments:   totalDocuments,
		TotalChunks:      totalChunks,
		RelevantChunks:   len(chunks),
		MessageCount:     messageCount,
		ConfidenceScore:  confidence(chunks),
		ResponseTime:     elapsed,
		QueryComplexity:  complexity(question),
		DocumentCoverage: coverage(chunks),
		MedicalKeywords:  medicalKeywords(question + " " + answer),
	}
}

// confidence is the mean similarity of the top three chunks, clamped to [0, 1].
func confidence(chunks []domain.RetrievedChunk) float64 {
	n := min(3, len(chunks))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, c := range chunks[:n] {
		sum += c.Score
	}
	return max(0, min(1, sum/float64(n)))
}

func complexity(question string) string {
	switch words := len(strings.Fields(question)); {
	case words <= 5:
		return "Simple"
	case words <= 15:
		return "Moderate"
	default:
		return "Complex"
	}
}

func coverage(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No relevant document sections were found."
	}
	sources := make(map[string]struct{})
	for _, c := range chunks {
		sources[c.Chunk.SourceDocumentID] = struct{}{}
	}
	return fmt.Sprintf("Answer drew on %d relevant sections from %d documents.", len(chunks), len(sources))
}

// medicalKeywords returns the known medical terms in text, sorted.
func medicalKeywords(text string) []string {
	normalised := " " + strings.Join(strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}), " ") + " "

	var found []string
	for _, term := range medicalTerms {
		if strings.Contains(normalised, " "+term+" ") {
			found = append(found, term)
		}
	}
	sort.Strings(found)
	if len(found) > maxKeywords {
		found = found[:maxKeywords]
	}
	return found
}

// sessionSaveInsights describes a saved session for the summary email.
func sessionSaveInsights(snapshot domain.SessionSnapshot) domain.Insights {
	summary := fmt.Sprintf("Session saved with %d documents and %d messages.",
		snapshot.DocumentCount, snapshot.MessageCount)
	return domain.Insights{
		TotalDocuments:   snapshot.DocumentCount,
		MessageCount:     snapshot.MessageCount,
		ConfidenceScore:  1,
		QueryComplexity:  "Session Save",
		DocumentCoverage: summary,
		MedicalKeywords:  []string{"session", "save", "backup"},
	}
}
