package report

import "time"

// Report statuses. ACCEPTED is terminal.
const (
	StatusPending  = "PENDING"
	StatusRevision = "REVISION"
	StatusAccepted = "ACCEPTED"
)

// Mentor decision actions.
const (
	ActionAccepted = StatusAccepted
	ActionRevision = StatusRevision
)

// transitions is the full status graph; anything not listed is invalid.
var transitions = map[string][]string{
	StatusPending:  {StatusAccepted, StatusRevision},
	StatusRevision: {StatusPending},
	StatusAccepted: {},
}

// CanTransition reports whether a report may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Report is one learner's standup submission for a given day.
type Report struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	DayNumber     int       `json:"day_number"`
	TextDone      string    `json:"text_done"`
	TextPlan      string    `json:"text_plan"`
	TextBlockers  string    `json:"text_blockers"`
	Status        string    `json:"status"`
	MentorComment string    `json:"mentor_comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// Revision is one historical snapshot of a report, taken on every status change.
type Revision struct {
	ID            int       `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Status        string    `json:"status"`
	MentorComment string    `json:"mentor_comment"`
	TextDone      string    `json:"text_done"`
	TextPlan      string    `json:"text_plan"`
	TextBlockers  string    `json:"text_blockers"`
}

// QueueEntry is a report in the mentor review queue, annotated with its author.
type QueueEntry struct {
	Report
	UserFullName string `json:"user_full_name"`
	UserEmail    string `json:"user_email"`
}

// NewReport contains information needed to submit a new report.
type NewReport struct {
	DayNumber    int    `json:"day_number" validate:"required,min=1"`
	TextDone     string `json:"text_done" validate:"notblank"`
	TextPlan     string `json:"text_plan" validate:"notblank"`
	TextBlockers string `json:"text_blockers" validate:"notblank"`
}

// ReportUpdate contains the corrected texts of a report under revision.
type ReportUpdate struct {
	TextDone     string `json:"text_done" validate:"notblank"`
	TextPlan     string `json:"text_plan" validate:"notblank"`
	TextBlockers string `json:"text_blockers" validate:"notblank"`
}

// MentorDecision is a reviewer's verdict on a pending report.
// MentorComment is required when the action is REVISION; see validators.go.
type MentorDecision struct {
	Action        string `json:"action" validate:"required,oneof=ACCEPTED REVISION"`
	MentorComment string `json:"mentor_comment"`
}
