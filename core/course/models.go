package course

import "time"

// Assignment statuses.
const (
	StatusAssigned   = "ASSIGNED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Filter modes for the "my courses" list.
const (
	FilterAll       = "ALL"
	FilterActive    = "ACTIVE"
	FilterCompleted = "COMPLETED"
)

type Lesson struct {
	ID          int    `json:"id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
}

// Assignment is one learner's relationship to one course.
// DeadlineAt keeps the backend's raw timestamp string so a malformed value
// degrades to "no deadline" instead of failing the whole list decode.
type Assignment struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	DeadlineAt      string   `json:"deadline_at"`
	ProgressPercent int      `json:"progress_percent"`
	Lessons         []Lesson `json:"lessons"`
}

// Progress returns the displayable completion percentage, clamped into [0,100].
func (a Assignment) Progress() int {
	return ClampPercent(a.ProgressPercent)
}

// Overdue derives whether the assignment is past its deadline.
// Never stored: false when the deadline is absent or unparseable, and always
// false for completed courses.
func (a Assignment) Overdue(now time.Time) bool {
	if a.DeadlineAt == "" || a.Status == StatusCompleted {
		return false
	}
	deadline, err := time.Parse(time.RFC3339, a.DeadlineAt)
	if err != nil {
		return false
	}
	return deadline.Before(now)
}

func ClampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Filter narrows a list by mode. ALL is the identity; ACTIVE keeps ASSIGNED
// and IN_PROGRESS; COMPLETED keeps completed courses. Unknown modes behave
// like ALL. Pure function.
func Filter(list []Assignment, mode string) []Assignment {
	switch mode {
	case FilterCompleted:
		out := make([]Assignment, 0, len(list))
		for _, a := range list {
			if a.Status == StatusCompleted {
				out = append(out, a)
			}
		}
		return out
	case FilterActive:
		out := make([]Assignment, 0, len(list))
		for _, a := range list {
			if a.Status == StatusAssigned || a.Status == StatusInProgress {
				out = append(out, a)
			}
		}
		return out
	default:
		return list
	}
}

// DedupeByID removes duplicate course ids, keeping the first occurrence.
// Catalog merges can hand us the same course twice.
func DedupeByID(list []Assignment) []Assignment {
	seen := make(map[int]struct{}, len(list))
	uniq := make([]Assignment, 0, len(list))
	for _, a := range list {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		uniq = append(uniq, a)
	}
	return uniq
}
