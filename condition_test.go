package formwave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateRule(t *testing.T) {
	answers := map[string]any{
		"name":    "Ada Lovelace",
		"age":     float64(36),
		"agePlus": "40",
		"langs":   []any{"go", "rust"},
		"tags":    []string{"a", "b"},
	}

	tests := []struct {
		name string
		rule LogicRule
		want bool
	}{
		{"equals match", LogicRule{FieldID: "name", Condition: ConditionEquals, Value: "Ada Lovelace"}, true},
		{"equals mismatch", LogicRule{FieldID: "name", Condition: ConditionEquals, Value: "Ada"}, false},
		{"not equals", LogicRule{FieldID: "name", Condition: ConditionNotEquals, Value: "Ada"}, true},
		{"contains substring", LogicRule{FieldID: "name", Condition: ConditionContains, Value: "Love"}, true},
		{"contains list item", LogicRule{FieldID: "langs", Condition: ConditionContains, Value: "go"}, true},
		{"contains string list item", LogicRule{FieldID: "tags", Condition: ConditionContains, Value: "b"}, true},
		{"list does not match partial", LogicRule{FieldID: "langs", Condition: ConditionContains, Value: "ru"}, false},
		{"not contains", LogicRule{FieldID: "langs", Condition: ConditionNotContains, Value: "java"}, true},
		{"greater than", LogicRule{FieldID: "age", Condition: ConditionGreaterThan, Value: "30"}, true},
		{"less than string answer", LogicRule{FieldID: "agePlus", Condition: ConditionLessThan, Value: "50"}, true},
		{"greater than non numeric", LogicRule{FieldID: "name", Condition: ConditionGreaterThan, Value: "1"}, false},
		{"missing answer equals", LogicRule{FieldID: "nope", Condition: ConditionEquals, Value: "x"}, false},
		{"missing answer not equals", LogicRule{FieldID: "nope", Condition: ConditionNotEquals, Value: "x"}, true},
		{"unknown condition", LogicRule{FieldID: "name", Condition: "matches", Value: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateRule(tt.rule, answers))
		})
	}
}

func TestVisibleFieldsAndRequired(t *testing.T) {
	form := &Form{
		Fields: []Field{
			{ID: "contact", Type: FieldTypeDropdown, Label: "Contact me"},
			{
				ID:    "email",
				Type:  FieldTypeEmail,
				Label: "Email",
				Logic: &FieldLogic{
					VisibleWhen:  []LogicRule{{FieldID: "contact", Condition: ConditionEquals, Value: "yes"}},
					RequiredWhen: []LogicRule{{FieldID: "contact", Condition: ConditionEquals, Value: "yes"}},
				},
			},
			{ID: "secret", Type: FieldTypeShortAnswer, IsHidden: true},
		},
	}

	visible := form.VisibleFields(map[string]any{"contact": "no"})
	if len(visible) != 1 || visible[0].ID != "contact" {
		t.Fatalf("expected only the contact field to be visible, got %+v", visible)
	}

	answers := map[string]any{"contact": "yes"}
	visible = form.VisibleFields(answers)
	assert.Len(t, visible, 2)
	assert.Equal(t, "email", visible[1].ID)

	email, ok := form.FindField("email")
	assert.True(t, ok)
	assert.True(t, email.IsRequiredFor(answers))
	assert.False(t, email.IsRequiredFor(map[string]any{"contact": "no"}))
}

func TestAnswerString(t *testing.T) {
	assert.Equal(t, "a; b", AnswerString([]any{"a", "b"}))
	assert.Equal(t, "3.5", AnswerString(3.5))
	assert.Equal(t, "", AnswerString(nil))
}
