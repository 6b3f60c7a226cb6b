package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/medichat/internal/core/domain"
)

// emailPattern finds the first email-shaped substring of a chat turn.
var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var (
	reportPhrases = []string{
		"send report to",
		"send analysis report to",
		"send analytics to",
		"send this report to",
		"email report to",
		"send this repot to",
	}

	ticketPhrases = []string{
		"create support ticket",
		"support ticket",
		"create a support ticket",
		"send support ticket",
		"create ticket",
		"generate ticket",
		"open ticket",
	}

	processPrefixes = []string{"process s3", "process all s3"}

	savePrefixes = []string{"save session", "save the session"}
)

// rule is one entry of the routing table. match sees the lower-cased text.
type rule struct {
	name  string
	match func(lower string) bool
	build func(text string) domain.CommandIntent
}

// Router classifies chat turns into commands. Rules are tried in order and
// the first match wins; anything unmatched is a plain query.
type Router struct {
	rules []rule
}

// NewRouter creates a router with the built-in rule table.
func NewRouter() *Router {
	return &Router{
		rules: []rule{
			{name: "send_report", match: matchesReport, build: buildReport},
			{name: "support_ticket", match: matchesTicket, build: kind(domain.CommandSupportTicket)},
			{name: "process_store", match: hasAnyPrefix(processPrefixes), build: kind(domain.CommandProcessStoreDocuments)},
			{name: "save_session", match: matchesSave, build: kind(domain.CommandSaveSession)},
		},
	}
}

// Classify returns the intent of text. The same text always yields the same intent.
func (r *Router) Classify(text string) domain.CommandIntent {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rl := range r.rules {
		if rl.match(lower) {
			return rl.build(text)
		}
	}
	return domain.CommandIntent{Kind: domain.CommandPlainQuery, Text: text}
}

// RuleNames returns the rule names in evaluation order.
func (r *Router) RuleNames() []string {
	names := make([]string, len(r.rules))
	for i, rl := range r.rules {
		names[i] = rl.name
	}
	return names
}

// ExtractEmail returns the first email-shaped substring of text, or "".
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

func matchesReport(lower string) bool {
	if containsAny(lower, reportPhrases) {
		return true
	}
	return strings.Contains(lower, "send") &&
		(strings.Contains(lower, "report") || strings.Contains(lower, "repot")) &&
		strings.Contains(lower, "@")
}

func buildReport(text string) domain.CommandIntent {
	intent := domain.CommandIntent{Kind: domain.CommandSendReport, Text: text}

	intent.Email = ExtractEmail(text)
	if intent.Email == "" {
		intent.Err = fmt.Errorf("%w: no address found", domain.ErrInvalidEmailAddress)
		return intent
	}
	intent.Err = domain.ValidateEmail(intent.Email)
	return intent
}

func matchesTicket(lower string) bool {
	return containsAny(lower, ticketPhrases) ||
		(strings.Contains(lower, "support") && strings.Contains(lower, "ticket"))
}

func matchesSave(lower string) bool {
	return strings.Contains(lower, "save session") || hasAnyPrefix(savePrefixes)(lower)
}

func kind(k domain.CommandKind) func(string) domain.CommandIntent {
	return func(text string) domain.CommandIntent {
		return domain.CommandIntent{Kind: k, Text: text}
	}
}

func hasAnyPrefix(prefixes []string) func(string) bool {
	return func(lower string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(lower, p) {
				return true
			}
		}
		return false
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
