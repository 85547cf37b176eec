package formwave

// ResponseSchema is the JSON Schema describing valid answers to a form.
type ResponseSchema struct {
	Type       string                     `json:"type"`
	Title      string                     `json:"title,omitempty"`
	Properties map[string]*PropertySchema `json:"properties"`
	Required   []string                   `json:"required,omitempty"`
	// Order keeps the field order of the form; it is not part of the schema.
	Order []string `json:"-"`
}

// PropertySchema defines the schema for a single answer.
type PropertySchema struct {
	Type      string          `json:"type"` // "string", "number", "array"
	Title     string          `json:"title,omitempty"`
	Format    string          `json:"format,omitempty"`
	Items     *PropertySchema `json:"items,omitempty"`
	Enum      []any           `json:"enum,omitempty"`
	Minimum   *float64        `json:"minimum,omitempty"`
	Maximum   *float64        `json:"maximum,omitempty"`
	MinLength *int            `json:"minLength,omitempty"`
	MaxLength *int            `json:"maxLength,omitempty"`
	MinItems  *int            `json:"minItems,omitempty"`
	Pattern   string          `json:"pattern,omitempty"`
}

const defaultMaxRating = 5

// BuildResponseSchema derives the answer schema of form for the given
// answers. Only fields visible for those answers are described; section
// breaks carry no answer.
func BuildResponseSchema(form *Form, answers map[string]any) *ResponseSchema {
	schema := &ResponseSchema{
		Type:       "object",
		Title:      form.Title,
		Properties: make(map[string]*PropertySchema),
	}

	for _, field := range form.VisibleFields(answers) {
		if field.Type == FieldTypeSectionBreak {
			continue
		}
		required := field.IsRequiredFor(answers)
		schema.Properties[field.ID] = propertyFor(&field, required)
		schema.Order = append(schema.Order, field.ID)
		if required {
			schema.Required = append(schema.Required, field.ID)
		}
	}
	return schema
}

func propertyFor(field *Field, required bool) *PropertySchema {
	p := &PropertySchema{Title: field.Label}

	switch field.Type {
	case FieldTypeNumber:
		p.Type = "number"
	case FieldTypeRating:
		p.Type = "number"
		maxRating := defaultMaxRating
		if field.MaxRating != nil {
			maxRating = *field.MaxRating
		}
		p.Minimum = Ptr(1.0)
		p.Maximum = Ptr(float64(maxRating))
	case FieldTypeCheckbox:
		p.Type = "array"
		p.Items = &PropertySchema{Type: "string", Enum: optionEnum(field)}
	case FieldTypeDropdown:
		if field.AllowMultipleSelections {
			p.Type = "array"
			p.Items = &PropertySchema{Type: "string", Enum: optionEnum(field)}
		} else {
			p.Type = "string"
			p.Enum = optionEnum(field)
		}
	case FieldTypeMultipleChoice:
		p.Type = "string"
		p.Enum = optionEnum(field)
	case FieldTypeEmail:
		p.Type = "string"
		p.Format = "email"
	case FieldTypeWebsite:
		p.Type = "string"
		p.Format = "uri"
	default:
		p.Type = "string"
	}

	if v := field.Validation; v != nil {
		switch p.Type {
		case "string":
			p.MinLength = v.MinLength
			p.MaxLength = v.MaxLength
			p.Pattern = v.Pattern
		case "number":
			if v.Min != nil {
				p.Minimum = v.Min
			}
			if v.Max != nil {
				p.Maximum = v.Max
			}
		}
	}

	if required {
		switch p.Type {
		case "string":
			if p.MinLength == nil || *p.MinLength < 1 {
				p.MinLength = Ptr(1)
			}
		case "array":
			p.MinItems = Ptr(1)
		}
	}
	return p
}

// optionEnum lists the option values of a choice field. A field offering an
// "other" option accepts free text, so it gets no enum.
func optionEnum(field *Field) []any {
	if len(field.Options) == 0 {
		return nil
	}
	values := make([]any, 0, len(field.Options))
	for _, opt := range field.Options {
		if opt.HasOtherOption {
			return nil
		}
		values = append(values, opt.Value)
	}
	return values
}
