package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"roster/internal/invite/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	pstrings "roster/pkg/platform/strings"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// OpenFlowRequest opens a flow, optionally for an existing group.
type OpenFlowRequest struct {
	GroupID string `json:"group_id" validate:"omitempty,uuid"`

	groupID *id.GroupID
}

func (r *OpenFlowRequest) Validate() error {
	r.GroupID = strings.TrimSpace(r.GroupID)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if r.GroupID == "" {
		return nil
	}
	groupID, err := id.ParseGroupID(r.GroupID)
	if err != nil {
		return err
	}
	r.groupID = &groupID
	return nil
}

// AddTextRequest carries the free-form text of the manual entry box.
type AddTextRequest struct {
	Text               string `json:"text" validate:"max=1000000"`
	ClearErroredEmails bool   `json:"clear_errored_emails"`
}

func (r *AddTextRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// EmailsRequest lists emails to select or remove. Entries are trimmed and
// exact repeats collapsed; case is preserved.
type EmailsRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,max=320"`
}

func (r *EmailsRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	r.Emails = pstrings.DedupeAndTrim(r.Emails)
	if len(r.Emails) == 0 {
		return dErrors.New(dErrors.CodeValidation, "emails must not be empty")
	}
	if len(r.Emails) > models.MaxEmailEntryLimit {
		return dErrors.New(dErrors.CodeValidation, "too many emails in one request")
	}
	return nil
}

// validationError turns validator output into a coded error naming the first
// offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return dErrors.New(dErrors.CodeValidation, fe.Field()+" failed "+fe.Tag()+" validation")
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request")
}
