package domain

import (
	"context"
	"fmt"
	"strings"
)

// IssueSeverity grades a review issue.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Review issue types. ParseError and ReviewError are produced locally, never by the model.
const (
	IssueFactError          = "fact_error"
	IssueAnswerAmbiguous    = "answer_ambiguous"
	IssueUnclearStem        = "unclear_stem"
	IssueDifficultyMismatch = "difficulty_mismatch"
	IssueExplanationError   = "explanation_error"
	IssueOther              = "other"
	IssueParseError         = "parse_error"
	IssueReviewError        = "review_error"
)

// ReviewIssue is one problem reported by the reviewer.
type ReviewIssue struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Severity    IssueSeverity `json:"severity"`
}

// ReviewResult is the reviewer's verdict on one question.
type ReviewResult struct {
	IsApproved    bool               `json:"is_approved"`
	Issues        []ReviewIssue      `json:"issues"`
	FixedQuestion *GeneratedQuestion `json:"fixed_question,omitempty"`
	Comment       string             `json:"comment"`
}

// ErrorIssues returns only the error-severity issues.
func (r *ReviewResult) ErrorIssues() []ReviewIssue {
	if r == nil {
		return nil
	}
	var out []ReviewIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ReviewOutcomeKind drives the pipeline's repair state machine.
type ReviewOutcomeKind int

const (
	OutcomeApproved ReviewOutcomeKind = iota
	OutcomeNeedsFix
	OutcomeUnparseable
)

func (k ReviewOutcomeKind) String() string {
	switch k {
	case OutcomeApproved:
		return "approved"
	case OutcomeNeedsFix:
		return "needs_fix"
	case OutcomeUnparseable:
		return "unparseable"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome classifies the result. A synthetic parse_error or review_error issue
// means the verdict is unusable.
func (r *ReviewResult) Outcome() ReviewOutcomeKind {
	if r == nil {
		return OutcomeUnparseable
	}
	for _, issue := range r.Issues {
		if issue.Type == IssueParseError || issue.Type == IssueReviewError {
			return OutcomeUnparseable
		}
	}
	if r.IsApproved {
		return OutcomeApproved
	}
	return OutcomeNeedsFix
}

// FormatIssues renders issues as "- [type] description" lines.
func FormatIssues(issues []ReviewIssue) string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, fmt.Sprintf("- [%s] %s", issue.Type, issue.Description))
	}
	return strings.Join(lines, "\n")
}

// QuestionReviewer is the ReviewClient port.
type QuestionReviewer interface {
	// Review never returns an error for model or parse failures; those become
	// synthetic issues on an unapproved result.
	Review(ctx context.Context, q *GeneratedQuestion) *ReviewResult
	// Fix returns nil when no usable corrected question could be produced.
	Fix(ctx context.Context, q *GeneratedQuestion, issues []ReviewIssue) *GeneratedQuestion
}
