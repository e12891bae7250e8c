package report

import (
	"sort"
	"time"
)

// Streak summarizes a learner's submission regularity.
type Streak struct {
	Current int `json:"current_streak"`
	Max     int `json:"max_streak"`
}

// ComputeStreak derives the submission streak from a report list.
// Days are UTC-normalized; several submissions on one day count once.
// The current streak is the run of consecutive days ending at the latest
// submission, and is considered broken (0) once a full day has passed
// without a submission.
func ComputeStreak(reports []Report, now time.Time) Streak {
	if len(reports) == 0 {
		return Streak{}
	}

	seen := make(map[time.Time]struct{}, len(reports))
	days := make([]time.Time, 0, len(reports))
	for _, rpt := range reports {
		day := toDay(rpt.CreatedAt)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var st Streak
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > st.Max {
			st.Max = run
		}
	}
	if st.Max == 0 {
		st.Max = 1
	}

	today := toDay(now)
	latest := days[len(days)-1]
	if latest.Equal(today) || latest.Equal(today.Add(-24*time.Hour)) {
		st.Current = run
	}
	return st
}

func toDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
