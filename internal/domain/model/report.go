package model

import "time"

// Report is the writer's output: a Markdown document plus the short
// summary and follow-up questions that frame it.
type Report struct {
	ShortSummary      string   `json:"short_summary"`
	MarkdownReport    string   `json:"markdown_report"`
	FollowupQuestions []string `json:"followup_questions"`
}

// SearchSummary is the per-search slice of a finished job's payload.
type SearchSummary struct {
	Reason  string `json:"reason"`
	Query   string `json:"query"`
	Summary string `json:"summary"`
}

// ReportPayload is the structured artifact attached to a done status:
// enough for a UI to render a preview without refetching the email.
type ReportPayload struct {
	ShortSummary      string          `json:"short_summary"`
	FollowupQuestions []string        `json:"followup_questions,omitempty"`
	Searches          []SearchSummary `json:"searches,omitempty"`
}

// DeliveryReceipt records a successful hand-off to the mail provider.
type DeliveryReceipt struct {
	MessageID  string
	StatusCode int
	SentAt     time.Time
}
