package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/formwave"
)

func feedbackForm() *formwave.Form {
	return &formwave.Form{
		ID:    "feedback",
		Title: "Feedback",
		Fields: []formwave.Field{
			{ID: "name", Type: formwave.FieldTypeShortAnswer, Label: "Name", Required: true},
			{ID: "email", Type: formwave.FieldTypeEmail, Label: "Email",
				Validation: &formwave.FieldValidation{CustomErrorMessage: "We need a real address"}},
			{ID: "age", Type: formwave.FieldTypeNumber, Label: "Age",
				Validation: &formwave.FieldValidation{Min: formwave.Ptr(18.0), Max: formwave.Ptr(120.0)}},
			{ID: "plan", Type: formwave.FieldTypeDropdown, Label: "Plan",
				Options: []formwave.FieldOption{{ID: "a", Value: "Free"}, {ID: "b", Value: "Pro"}}},
			{ID: "extras", Type: formwave.FieldTypeCheckbox, Label: "Extras",
				Options: []formwave.FieldOption{{ID: "c", Value: "Support"}, {ID: "d", Value: "SSO"}}},
			{ID: "company", Type: formwave.FieldTypeShortAnswer, Label: "Company",
				Logic: &formwave.FieldLogic{
					RequiredWhen: []formwave.LogicRule{{FieldID: "plan", Condition: formwave.ConditionEquals, Value: "Pro"}},
				}},
			{ID: "site", Type: formwave.FieldTypeWebsite, Label: "Website"},
		},
	}
}

func TestResponseValidator_Valid(t *testing.T) {
	v := NewResponseValidator()
	err := v.Validate(feedbackForm(), map[string]any{
		"name":   "Ada",
		"email":  "ada@example.com",
		"age":    36,
		"plan":   "Free",
		"extras": []string{"SSO"},
		"site":   "https://example.com",
	})
	assert.NoError(t, err)
}

func TestResponseValidator_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]any
		field   string
		message string
	}{
		{"missing required", map[string]any{}, "name", "This field is required."},
		{"empty required", map[string]any{"name": ""}, "name", "This field is required."},
		{"blank required", map[string]any{"name": "   "}, "name", "This field is required."},
		{"null required", map[string]any{"name": nil}, "name", "This field is required."},
		{"custom message", map[string]any{"name": "Ada", "email": "not-an-email"}, "email", "We need a real address"},
		{"below minimum", map[string]any{"name": "Ada", "age": 12}, "age", ""},
		{"unknown option", map[string]any{"name": "Ada", "plan": "Enterprise"}, "plan", ""},
		{"unknown checkbox option", map[string]any{"name": "Ada", "extras": []any{"Cake"}}, "extras", ""},
		{"conditionally required", map[string]any{"name": "Ada", "plan": "Pro"}, "company", "This field is required."},
		{"bad url", map[string]any{"name": "Ada", "site": "example"}, "site", "Please enter a valid URL."},
		{"wrong type", map[string]any{"name": "Ada", "age": "old"}, "age", ""},
	}
	v := NewResponseValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(feedbackForm(), tt.answers)
			var fe *formwave.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, formwave.ErrCodeResponseInvalid, fe.Code)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, "feedback", fe.FormID)
			if tt.message != "" {
				assert.Equal(t, tt.message, fe.Message)
			}
		})
	}
}

func TestResponseValidator_IgnoresInvisibleFields(t *testing.T) {
	form := feedbackForm()
	form.Fields[2].IsHidden = true

	err := NewResponseValidator().Validate(form, map[string]any{"name": "Ada", "age": "not a number"})
	assert.NoError(t, err)
}

func TestResponseValidator_EmptyListIsMissing(t *testing.T) {
	form := feedbackForm()
	form.Fields[4].Required = true

	err := NewResponseValidator().Validate(form, map[string]any{"name": "Ada", "extras": []string{}})
	var fe *formwave.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "extras", fe.Field)
	assert.Equal(t, "This field is required.", fe.Message)

	// An optional field left blank is skipped rather than checked.
	assert.NoError(t, NewResponseValidator().Validate(feedbackForm(), map[string]any{"name": "Ada", "email": ""}))
}
