package report

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/corpacademy/client-go/core"
)

var (
	commentRequiredTag  = "comment_required"
	commentRequiredText = "a mentor comment is required when requesting a revision"
)

// InitValidators registers this package's validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(mentorDecisionStructValidation, MentorDecision{})
	core.RegisterCustomTranslation(validate, translator, commentRequiredTag, commentRequiredText)
}

// mentorDecisionStructValidation enforces the REVISION comment requirement.
func mentorDecisionStructValidation(sl validator.StructLevel) {
	if md, ok := sl.Current().Interface().(MentorDecision); ok {
		if md.Action == ActionRevision && strings.TrimSpace(md.MentorComment) == "" {
			sl.ReportError(md.MentorComment, "MentorComment", "mentor_comment", commentRequiredTag, "")
		}
	}
}
