package formwave

import (
	"strings"
	"time"
)

const (
	DefaultFormTitle           = "Untitled Form"
	DefaultSubmitButtonText    = "Submit"
	DefaultConfirmationMessage = "Your response has been submitted successfully."
	DefaultFontFamily          = "Inter"

	// CopySuffix is appended to the label or title of a duplicate.
	CopySuffix = " (Copy)"
)

type themePreset struct {
	primary    string
	background string
}

var themePresets = map[ThemeMode]themePreset{
	ThemeModeLight:    {primary: "#4f46e5", background: "#ffffff"},
	ThemeModeDark:     {primary: "#818cf8", background: "#1f2937"},
	ThemeModeColorful: {primary: "#ec4899", background: "#f0fdfa"},
}

// DefaultTheme is the baseline theme of a new form.
func DefaultTheme() *FormTheme {
	return &FormTheme{
		PrimaryColor:      themePresets[ThemeModeLight].primary,
		BackgroundColor:   themePresets[ThemeModeLight].background,
		FontFamily:        DefaultFontFamily,
		Mode:              ThemeModeLight,
		PatternType:       PatternNone,
		AnimationsEnabled: Ptr(true),
	}
}

// DefaultSettings is the baseline settings record of a new form.
func DefaultSettings() *FormSettings {
	return &FormSettings{
		SubmitButtonText:    DefaultSubmitButtonText,
		ShowProgressBar:     false,
		ConfirmationMessage: DefaultConfirmationMessage,
		Theme:               DefaultTheme(),
	}
}

// NewForm builds an empty, unsaved form document.
func NewForm(id string, now time.Time) *Form {
	return &Form{
		ID:        id,
		Title:     DefaultFormTitle,
		Fields:    []Field{},
		CreatedAt: now,
		UpdatedAt: now,
		Settings:  DefaultSettings(),
	}
}

// ThemePreset returns the color patch the theme switcher applies for mode.
func ThemePreset(mode ThemeMode) (ThemePatch, bool) {
	p, ok := themePresets[mode]
	if !ok {
		return ThemePatch{}, false
	}
	return ThemePatch{
		Mode:            Ptr(mode),
		PrimaryColor:    Ptr(p.primary),
		BackgroundColor: Ptr(p.background),
	}, true
}

// DefaultFieldLabel is the label a freshly added field of type t carries.
func DefaultFieldLabel(t FieldType) string {
	switch t {
	case FieldTypeShortAnswer:
		return "Short Answer Question"
	case FieldTypeLongAnswer:
		return "Long Answer Question"
	case FieldTypeMultipleChoice:
		return "Multiple Choice Question"
	case FieldTypeCheckbox:
		return "Checkbox Question"
	case FieldTypeDropdown:
		return "Dropdown Question"
	case FieldTypeDate:
		return "Date"
	case FieldTypeEmail:
		return "Email Address"
	case FieldTypePhone:
		return "Phone Number"
	case FieldTypeNumber:
		return "Number"
	case FieldTypeFileUpload:
		return "File Upload"
	}
	s := string(t)
	if s == "" {
		return "Question"
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Question"
}

// DefaultPlaceholder is the placeholder a freshly added field of type t carries.
func DefaultPlaceholder(t FieldType) string {
	switch t {
	case FieldTypeShortAnswer:
		return "Type your answer here"
	case FieldTypeLongAnswer:
		return "Type your detailed answer here"
	case FieldTypeEmail:
		return "email@example.com"
	case FieldTypePhone:
		return "(123) 456-7890"
	case FieldTypeNumber:
		return "0"
	case FieldTypeWebsite:
		return "https://example.com"
	default:
		return ""
	}
}

// DefaultOptions returns the three placeholder choices of a new choice field.
// Ids are left empty; the store assigns them.
func DefaultOptions() []FieldOption {
	return []FieldOption{
		{Value: "Option 1"},
		{Value: "Option 2"},
		{Value: "Option 3"},
	}
}

// NewField builds a field of type t with the palette defaults. The id is
// assigned when the field is added to a form.
func NewField(t FieldType) Field {
	f := Field{
		Type:        t,
		Label:       DefaultFieldLabel(t),
		Placeholder: DefaultPlaceholder(t),
	}
	if t.RequiresOptions() {
		f.Options = DefaultOptions()
	}
	return f
}
