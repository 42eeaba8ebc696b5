package domain

import (
	"fmt"
	"strings"
	"time"
)

// Lead is one message for the form relay.
type Lead struct {
	Name    string
	Email   string
	Subject string
	Message string

	// Service is the contact form's service label; empty for quiz leads.
	Service string

	// SubmissionID lets the relay side deduplicate retries.
	SubmissionID string
}

// Receipt is the relay's decoded answer to a delivered lead. The relay can
// answer 2xx and still refuse the message, so Accepted must be checked.
type Receipt struct {
	Service  string
	Accepted bool
	Message  string
	SentAt   time.Time
}

// Err returns nil for an accepted receipt and an UnavailableError naming the
// relay's message otherwise.
func (r Receipt) Err() error {
	if r.Accepted {
		return nil
	}

	reason := "relay reported failure"
	if r.Message != "" {
		reason += ": " + r.Message
	}

	return NewUnavailableError(r.Service, reason)
}

const notAnswered = "Not answered"

// NewQuizLead formats a completed funnel as a lead. Every question gets a line
// in number order, unanswered ones included.
func NewQuizLead(qs QuestionSet, answers map[int]string, name, email, submissionID string) Lead {
	var b strings.Builder

	b.WriteString("Quiz Results:\n\n")

	for _, q := range qs {
		answer := answers[q.Number]
		if answer == "" {
			answer = notAnswered
		}

		fmt.Fprintf(&b, "%d. %s: %s\n", q.Number, q.Label, answer)
	}

	return Lead{
		Name:         name,
		Email:        email,
		Subject:      "Action Plan Request from " + name,
		Message:      strings.TrimRight(b.String(), "\n"),
		SubmissionID: submissionID,
	}
}
