package formwave

import (
	"fmt"
	"strconv"
	"strings"
)

// EvaluateRule reports whether rule holds for the given answers, keyed by
// field id. A rule on a field without an answer only holds for the negated
// conditions.
func EvaluateRule(rule LogicRule, answers map[string]any) bool {
	answer, ok := answers[rule.FieldID]
	if !ok || answer == nil {
		switch rule.Condition {
		case ConditionNotEquals, ConditionNotContains:
			return rule.Value != ""
		default:
			return false
		}
	}

	switch rule.Condition {
	case ConditionEquals:
		return answerString(answer) == rule.Value
	case ConditionNotEquals:
		return answerString(answer) != rule.Value
	case ConditionContains:
		return answerContains(answer, rule.Value)
	case ConditionNotContains:
		return !answerContains(answer, rule.Value)
	case ConditionGreaterThan, ConditionLessThan:
		left, lok := toNumber(answer)
		right, rok := tryParseNumber(rule.Value)
		if !lok || !rok {
			return false
		}
		if rule.Condition == ConditionGreaterThan {
			return left > right
		}
		return left < right
	default:
		return false
	}
}

// IsVisibleFor reports whether the field is shown for the given answers.
// Every visibleWhen rule must hold; hidden fields are never visible.
func (f *Field) IsVisibleFor(answers map[string]any) bool {
	if f.IsHidden {
		return false
	}
	if f.Logic == nil {
		return true
	}
	for _, rule := range f.Logic.VisibleWhen {
		if !EvaluateRule(rule, answers) {
			return false
		}
	}
	return true
}

// IsRequiredFor reports whether the field must be answered. A field is
// required when flagged so, or when any requiredWhen rule holds.
func (f *Field) IsRequiredFor(answers map[string]any) bool {
	if f.Required {
		return true
	}
	if f.Logic == nil {
		return false
	}
	for _, rule := range f.Logic.RequiredWhen {
		if EvaluateRule(rule, answers) {
			return true
		}
	}
	return false
}

// VisibleFields returns copies of the fields shown for the given answers, in
// form order.
func (f *Form) VisibleFields(answers map[string]any) []Field {
	out := make([]Field, 0, len(f.Fields))
	for i := range f.Fields {
		if f.Fields[i].IsVisibleFor(answers) {
			out = append(out, f.Fields[i].Clone())
		}
	}
	return out
}

// AnswerString renders an answer the way it is compared and exported:
// lists are joined with "; ".
func AnswerString(answer any) string {
	return answerString(answer)
}

func answerString(answer any) string {
	switch v := answer.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, "; ")
	case []any:
		parts := make([]string, len(v))
		for i := range v {
			parts[i] = answerString(v[i])
		}
		return strings.Join(parts, "; ")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func answerContains(answer any, value string) bool {
	switch v := answer.(type) {
	case []string:
		for _, item := range v {
			if item == value {
				return true
			}
		}
		return false
	case []any:
		for _, item := range v {
			if answerString(item) == value {
				return true
			}
		}
		return false
	default:
		return strings.Contains(answerString(answer), value)
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		return tryParseNumber(n)
	default:
		return 0, false
	}
}

func tryParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
