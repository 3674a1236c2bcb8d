package models

import (
	"regexp"
	"strconv"
	"time"

	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// EmailLog is a row of email_prio_logs: one processed email and the analyses
// produced by each model.
type EmailLog struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	Sender         string     `json:"sender"`
	Recipient      string     `json:"recipient"`
	Subject        string     `json:"subject"`
	Priority       string     `json:"priority"`
	Analysis       *string    `json:"analysis"`
	AnalysisClaude *string    `json:"analysis_claude"`
	AnalysisOpenAI *string    `json:"analysis_openai"`
	Date           *time.Time `json:"date"`
}

func EmailLogFromRecord(r remote.Record) (EmailLog, error) {
	var (
		e   EmailLog
		err error
	)
	if e.ID, err = r.String("id"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.CreatedAt, err = r.Time("created_at"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Sender, err = r.StringOr("email_sender", ""); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Recipient, err = r.StringOr("email_recipient", ""); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Subject, err = r.StringOr("email_subject", ""); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Priority, err = r.StringOr("email_priority", ""); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Analysis, err = r.NullString("email_analysis"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.AnalysisClaude, err = r.NullString("email_analysis_bedrock_claude"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.AnalysisOpenAI, err = r.NullString("email_analysis_openai41mini"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	if e.Date, err = r.NullTime("date"); err != nil {
		return e, malformed(remote.EmailPrioLogs, err)
	}
	return e, nil
}

var priorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Score de Priorité\s*:\s*(\d+)`),
	regexp.MustCompile(`(?i)Priority Score\s*:\s*(\d+)`),
}

// PriorityScore extracts the priority score from a model analysis. It returns
// 0 when analysis is nil or carries no score.
func PriorityScore(analysis *string) int {
	if analysis == nil {
		return 0
	}
	for _, re := range priorityPatterns {
		if m := re.FindStringSubmatch(*analysis); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

// Scores returns the priority score of each analysis in the order default,
// OpenAI, Claude.
func (e EmailLog) Scores() [3]int {
	return [3]int{
		PriorityScore(e.Analysis),
		PriorityScore(e.AnalysisOpenAI),
		PriorityScore(e.AnalysisClaude),
	}
}

// HasDifferentPriorities reports whether at least two models produced a
// positive score and those scores disagree.
func (e EmailLog) HasDifferentPriorities() bool {
	var positive []int
	for _, s := range e.Scores() {
		if s > 0 {
			positive = append(positive, s)
		}
	}
	if len(positive) < 2 {
		return false
	}
	for _, s := range positive[1:] {
		if s != positive[0] {
			return true
		}
	}
	return false
}

// SearchFields are matched by local filtering of already fetched pages.
func (e EmailLog) SearchFields() []string {
	return []string{e.Subject, e.Sender, e.Recipient}
}
