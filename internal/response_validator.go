package internal

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

const requiredFieldMessage = "This field is required."

// ResponseValidator checks a set of answers against the JSON Schema derived
// from a form.
type ResponseValidator struct{}

var _ formwave.ResponseValidator = (*ResponseValidator)(nil)

func NewResponseValidator() *ResponseValidator {
	return &ResponseValidator{}
}

// Validate returns nil when answers satisfy form, or a RESPONSE_INVALID error
// naming the first offending field in form order. The field's custom error
// message is used when it has one.
func (v *ResponseValidator) Validate(form *formwave.Form, answers map[string]any) error {
	data, err := normalizeAnswers(answers)
	if err != nil {
		return formwave.NewInternalError("encode answers", err)
	}

	schema := formwave.BuildResponseSchema(form, data)
	required := NewSet(schema.Required...)

	for _, fieldID := range schema.Order {
		field, _ := form.FindField(fieldID)
		answer := data[fieldID]
		if isEmptyAnswer(answer) {
			if required.Contains(fieldID) {
				return responseError(form, field, requiredFieldMessage)
			}
			continue
		}

		resolved, err := resolveProperty(schema.Properties[fieldID])
		if err != nil {
			return formwave.NewError(formwave.ErrorTypeInternal, formwave.ErrCodeSchemaInvalid, "invalid response schema").
				WithForm(form.ID).
				WithField(fieldID).
				WithCause(err)
		}
		if err := resolved.Validate(answer); err != nil {
			zap.S().Debugw("answer rejected", "formId", form.ID, "fieldId", fieldID, "error", err)
			return responseError(form, field, fmt.Sprintf("%s: %v", field.Label, err)).WithCause(err)
		}
		if msg := checkFormat(schema.Properties[fieldID].Format, answer); msg != "" {
			return responseError(form, field, msg)
		}
	}
	return nil
}

// isEmptyAnswer reports whether answer counts as unanswered: absent, null, a
// blank string or an empty list.
func isEmptyAnswer(answer any) bool {
	switch v := answer.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

// normalizeAnswers round-trips answers through JSON so the validator only
// sees JSON value types.
func normalizeAnswers(answers map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(answers))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveProperty(p *formwave.PropertySchema) (*jsonschema.Resolved, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return schema.Resolve(&jsonschema.ResolveOptions{})
}

// checkFormat enforces the formats the schema declares but the validator
// treats as annotations.
func checkFormat(format string, answer any) string {
	s, ok := answer.(string)
	if !ok || s == "" {
		return ""
	}
	switch format {
	case "email":
		if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
			return "Please enter a valid email address."
		}
	case "uri":
		if u, err := url.ParseRequestURI(s); err != nil || u.Host == "" {
			return "Please enter a valid URL."
		}
	}
	return ""
}

func responseError(form *formwave.Form, field *formwave.Field, fallback string) *formwave.Error {
	msg := fallback
	if field.Validation != nil && field.Validation.CustomErrorMessage != "" {
		msg = field.Validation.CustomErrorMessage
	}
	return formwave.NewResponseInvalidError(field.ID, msg).WithForm(form.ID)
}
