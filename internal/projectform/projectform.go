// Package projectform validates project input from the web forms and the CLI
// before anything is sent to the API.
package projectform

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/geonosis/console/internal/model"
	"github.com/go-playground/validator/v10"
)

const MaxNameLength = 255

// Field names used in ValidationError.Field.
const (
	FieldName   = "name"
	FieldEpic   = "epic"
	FieldType   = "type"
	FieldStatus = "status"
)

// ValidationError is a single user-facing input problem.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type createInput struct {
	Name string `validate:"required,max=255"`
	Epic string `validate:"required"`
	Type string `validate:"omitempty,project_type"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("project_type", func(fl validator.FieldLevel) bool {
			return model.ProjectType(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("project_status", func(fl validator.FieldLevel) bool {
			return model.ProjectStatus(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Create trims and validates create-form values. The name is checked before
// the epic so the first problem reported matches the form order.
func Create(name, epic, projectType string) (model.ProjectCreate, error) {
	in := createInput{
		Name: strings.TrimSpace(name),
		Epic: strings.TrimSpace(epic),
		Type: strings.TrimSpace(projectType),
	}
	if err := validatorInstance().Struct(in); err != nil {
		return model.ProjectCreate{}, translate(err, in.Type)
	}
	return model.ProjectCreate{
		Name: in.Name,
		Epic: in.Epic,
		Type: model.ProjectType(in.Type),
	}, nil
}

// Patch validates a partial update. Nil fields are left out of the update;
// present name and epic values must be non-blank after trimming.
func Patch(name, epic, status *string) (model.ProjectUpdate, error) {
	var update model.ProjectUpdate
	v := validatorInstance()

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := v.Var(trimmed, "required,max=255"); err != nil {
			return model.ProjectUpdate{}, fieldError(FieldName, tagOf(err), trimmed)
		}
		update.Name = &trimmed
	}
	if epic != nil {
		trimmed := strings.TrimSpace(*epic)
		if err := v.Var(trimmed, "required"); err != nil {
			return model.ProjectUpdate{}, fieldError(FieldEpic, tagOf(err), trimmed)
		}
		update.Epic = &trimmed
	}
	if status != nil {
		trimmed := strings.TrimSpace(*status)
		if err := v.Var(trimmed, "required,project_status"); err != nil {
			return model.ProjectUpdate{}, fieldError(FieldStatus, tagOf(err), trimmed)
		}
		s := model.ProjectStatus(trimmed)
		update.Status = &s
	}

	if update.Empty() {
		return model.ProjectUpdate{}, &ValidationError{Message: "Nothing to update"}
	}
	return update, nil
}

// Edit validates the full edit form. Name and epic are always submitted; an
// empty status leaves the current one unchanged.
func Edit(name, epic, status string) (model.ProjectUpdate, error) {
	var statusPtr *string
	if strings.TrimSpace(status) != "" {
		statusPtr = &status
	}
	return Patch(&name, &epic, statusPtr)
}

func translate(err error, value string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	return fieldError(strings.ToLower(first.Field()), first.Tag(), value)
}

func tagOf(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Tag()
	}
	return ""
}

func fieldError(field, tag, value string) *ValidationError {
	return &ValidationError{Field: field, Message: message(field, tag, value)}
}

func message(field, tag, value string) string {
	switch field {
	case FieldName:
		if tag == "max" {
			return fmt.Sprintf("Project name must be at most %d characters", MaxNameLength)
		}
		return "Project name is required"
	case FieldEpic:
		return "Epic / Requirements is required"
	case FieldType:
		return fmt.Sprintf("Unknown project type %q", value)
	case FieldStatus:
		if tag == "required" {
			return "Project status is required"
		}
		return fmt.Sprintf("Unknown project status %q", value)
	default:
		return "Invalid " + field
	}
}
