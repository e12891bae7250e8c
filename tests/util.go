package testutil

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/corpacademy/client-go/core"
	"github.com/corpacademy/client-go/core/course"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
)

// NewValidator builds a validator with all app validations registered,
// the same way the entrypoints do.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidators()
	report.InitValidators(validate, translator)
	return validate, translator
}

func Employee(id int) user.User {
	return user.User{ID: id, FullName: "Test Employee", Email: "employee@test.test", Role: user.RoleEmployee}
}

func Mentor(id int) user.User {
	return user.User{ID: id, FullName: "Test Mentor", Email: "mentor@test.test", Role: user.RoleMentor}
}

func NewReport(day int) report.NewReport {
	return report.NewReport{
		DayNumber:    day,
		TextDone:     "implemented the search endpoint",
		TextPlan:     "wire pagination",
		TextBlockers: "waiting on staging access",
	}
}

func Assignment(id int, status string, lessons ...course.Lesson) course.Assignment {
	return course.Assignment{
		ID:          id,
		Title:       "Secure Coding 101",
		Description: "mandatory onboarding course",
		Status:      status,
		Lessons:     lessons,
	}
}

// MustNoErr fails the test immediately on error.
func MustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
