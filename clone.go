package formwave

// Clone returns a deep copy of the form. Nested records, slices and default
// values share no memory with the receiver.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := *f
	out.Fields = cloneFields(f.Fields)
	out.Layout = f.Layout.Clone()
	out.Settings = f.Settings.Clone()
	if f.ResponseCount != nil {
		out.ResponseCount = Ptr(*f.ResponseCount)
	}
	return &out
}

// CloneWithFreshIDs deep-copies the form under formID, giving every field an
// id from newFieldID and every option an id from newOptionID. Logic rules
// pointing at fields of this form follow the renamed ids.
func (f *Form) CloneWithFreshIDs(formID string, newFieldID, newOptionID func() string) *Form {
	out := f.Clone()
	if out == nil {
		return nil
	}
	out.ID = formID

	renamed := make(map[string]string, len(out.Fields))
	for i := range out.Fields {
		id := newFieldID()
		renamed[out.Fields[i].ID] = id
		out.Fields[i].ID = id
		out.Fields[i].refreshOptionIDs(newOptionID)
	}
	for i := range out.Fields {
		out.Fields[i].Logic.remapFieldIDs(renamed)
	}
	return out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]FieldOption{}, f.Options...)
	}
	out.Appearance = f.Appearance.Clone()
	out.Validation = f.Validation.Clone()
	out.Logic = f.Logic.Clone()
	out.DefaultValue = cloneValue(f.DefaultValue)
	if f.AllowedFileTypes != nil {
		out.AllowedFileTypes = append([]string{}, f.AllowedFileTypes...)
	}
	if f.ColumnPosition != nil {
		out.ColumnPosition = Ptr(*f.ColumnPosition)
	}
	if f.MaxRating != nil {
		out.MaxRating = Ptr(*f.MaxRating)
	}
	if f.MaxFileSize != nil {
		out.MaxFileSize = Ptr(*f.MaxFileSize)
	}
	return out
}

// CloneWithFreshIDs deep-copies the field under fieldID with fresh option ids.
func (f Field) CloneWithFreshIDs(fieldID string, newOptionID func() string) Field {
	out := f.Clone()
	out.ID = fieldID
	out.refreshOptionIDs(newOptionID)
	return out
}

func (f *Field) refreshOptionIDs(newOptionID func() string) {
	for i := range f.Options {
		f.Options[i].ID = newOptionID()
	}
}

func (a *FieldAppearance) Clone() *FieldAppearance {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}

func (v *FieldValidation) Clone() *FieldValidation {
	if v == nil {
		return nil
	}
	out := *v
	if v.MinLength != nil {
		out.MinLength = Ptr(*v.MinLength)
	}
	if v.MaxLength != nil {
		out.MaxLength = Ptr(*v.MaxLength)
	}
	if v.Min != nil {
		out.Min = Ptr(*v.Min)
	}
	if v.Max != nil {
		out.Max = Ptr(*v.Max)
	}
	if v.Step != nil {
		out.Step = Ptr(*v.Step)
	}
	return &out
}

func (l *FieldLogic) Clone() *FieldLogic {
	if l == nil {
		return nil
	}
	out := *l
	if l.VisibleWhen != nil {
		out.VisibleWhen = append([]LogicRule{}, l.VisibleWhen...)
	}
	if l.RequiredWhen != nil {
		out.RequiredWhen = append([]LogicRule{}, l.RequiredWhen...)
	}
	return &out
}

func (l *FieldLogic) remapFieldIDs(renamed map[string]string) {
	if l == nil {
		return
	}
	for i := range l.VisibleWhen {
		if id, ok := renamed[l.VisibleWhen[i].FieldID]; ok {
			l.VisibleWhen[i].FieldID = id
		}
	}
	for i := range l.RequiredWhen {
		if id, ok := renamed[l.RequiredWhen[i].FieldID]; ok {
			l.RequiredWhen[i].FieldID = id
		}
	}
}

func (s *FormSettings) Clone() *FormSettings {
	if s == nil {
		return nil
	}
	out := *s
	out.Theme = s.Theme.Clone()
	if s.NotifyEmails != nil {
		out.NotifyEmails = append([]string{}, s.NotifyEmails...)
	}
	if s.LimitSubmissions != nil {
		out.LimitSubmissions = Ptr(*s.LimitSubmissions)
	}
	return &out
}

func (t *FormTheme) Clone() *FormTheme {
	if t == nil {
		return nil
	}
	out := *t
	if t.PatternOpacity != nil {
		out.PatternOpacity = Ptr(*t.PatternOpacity)
	}
	if t.AnimationsEnabled != nil {
		out.AnimationsEnabled = Ptr(*t.AnimationsEnabled)
	}
	return &out
}

func (l *FormLayout) Clone() *FormLayout {
	if l == nil {
		return nil
	}
	out := *l
	return &out
}

// CloneForms deep-copies a list of forms.
func CloneForms(forms []Form) []Form {
	if forms == nil {
		return nil
	}
	out := make([]Form, len(forms))
	for i := range forms {
		out[i] = *forms[i].Clone()
	}
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i := range fields {
		out[i] = fields[i].Clone()
	}
	return out
}

// cloneValue copies the slice shapes a default value or answer can take
// after a JSON round trip.
func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string{}, val...)
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = cloneValue(val[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
