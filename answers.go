package formwave

import (
	"strings"
)

// ParseAnswers converts textual answers, keyed by field id or label, into
// the typed values stored in a response. Numbers become float64 and
// multi-select answers are split on commas. Keys matching no field are kept
// as plain strings.
func ParseAnswers(form *Form, raw map[string]string) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		field := lookupField(form, key)
		if field == nil {
			out[key] = value
			continue
		}
		out[field.ID] = parseAnswer(field, value)
	}
	return out
}

func lookupField(form *Form, key string) *Field {
	if f, ok := form.FindField(key); ok {
		return f
	}
	for i := range form.Fields {
		if strings.EqualFold(form.Fields[i].Label, key) {
			return &form.Fields[i]
		}
	}
	return nil
}

func parseAnswer(field *Field, value string) any {
	switch {
	case field.Type == FieldTypeNumber || field.Type == FieldTypeRating:
		if n, ok := tryParseNumber(value); ok {
			return n
		}
		return value
	case field.Type == FieldTypeCheckbox,
		field.Type == FieldTypeDropdown && field.AllowMultipleSelections:
		parts := strings.Split(value, ",")
		items := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		return items
	default:
		return value
	}
}
