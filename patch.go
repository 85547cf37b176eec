package formwave

import "time"

// FormPatch carries the top-level form attributes to merge into the current
// form. Nil pointers leave the attribute untouched. A non-nil Fields slice
// replaces the field list wholesale, an empty non-nil slice clears it.
type FormPatch struct {
	Title       *string
	Description *string
	Author      *string
	IsPublic    *bool
	Layout      *FormLayout
	Fields      []Field
}

// ApplyTo merges the patch into f. Timestamps are the caller's concern.
func (p FormPatch) ApplyTo(f *Form) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Author != nil {
		f.Author = *p.Author
	}
	if p.IsPublic != nil {
		f.IsPublic = *p.IsPublic
	}
	if p.Layout != nil {
		f.Layout = p.Layout.Clone()
	}
	if p.Fields != nil {
		f.Fields = cloneFields(p.Fields)
	}
}

// FieldUpdate is one change applied to a field by UpdateField. The set of
// implementations is closed: scalar setters overwrite a single attribute,
// AppearancePatch, ValidationPatch and LogicPatch merge key by key into the
// existing sub-record, ReplaceOptions swaps the whole choice list.
type FieldUpdate interface {
	ApplyTo(f *Field)
	fieldUpdate()
}

type (
	SetLabel                   string
	SetType                    FieldType
	SetRequired                bool
	SetDescription             string
	SetPlaceholder             string
	SetHidden                  bool
	SetReadOnly                bool
	SetHelpText                string
	SetDataBindingKey          string
	SetSectionTitle            string
	SetRatingIcon              string
	SetMaxRating               int
	SetMaxFileSize             float64
	SetColumnPosition          int
	SetAllowMultipleSelections bool
	SetDisplayAsInlineList     bool
	SetAllowedFileTypes        []string
	ReplaceOptions             []FieldOption
)

// SetDefaultValue overwrites the pre-filled answer. Value is a string, a
// string list or a number.
type SetDefaultValue struct {
	Value any
}

func (u SetLabel) ApplyTo(f *Field)       { f.Label = string(u) }
func (u SetType) ApplyTo(f *Field)        { f.Type = FieldType(u) }
func (u SetRequired) ApplyTo(f *Field)    { f.Required = bool(u) }
func (u SetDescription) ApplyTo(f *Field) { f.Description = string(u) }
func (u SetPlaceholder) ApplyTo(f *Field) { f.Placeholder = string(u) }
func (u SetHidden) ApplyTo(f *Field)      { f.IsHidden = bool(u) }
func (u SetReadOnly) ApplyTo(f *Field)    { f.IsReadOnly = bool(u) }
func (u SetHelpText) ApplyTo(f *Field)    { f.HelpText = string(u) }
func (u SetDataBindingKey) ApplyTo(f *Field) {
	f.DataBindingKey = string(u)
}
func (u SetSectionTitle) ApplyTo(f *Field) { f.SectionTitle = string(u) }
func (u SetRatingIcon) ApplyTo(f *Field)   { f.RatingIcon = string(u) }
func (u SetMaxRating) ApplyTo(f *Field)    { f.MaxRating = Ptr(int(u)) }
func (u SetMaxFileSize) ApplyTo(f *Field)  { f.MaxFileSize = Ptr(float64(u)) }
func (u SetColumnPosition) ApplyTo(f *Field) {
	f.ColumnPosition = Ptr(int(u))
}
func (u SetAllowMultipleSelections) ApplyTo(f *Field) {
	f.AllowMultipleSelections = bool(u)
}
func (u SetDisplayAsInlineList) ApplyTo(f *Field) {
	f.DisplayAsInlineList = bool(u)
}
func (u SetAllowedFileTypes) ApplyTo(f *Field) {
	f.AllowedFileTypes = append([]string(nil), u...)
}
func (u ReplaceOptions) ApplyTo(f *Field) {
	f.Options = append([]FieldOption(nil), u...)
}
func (u SetDefaultValue) ApplyTo(f *Field) { f.DefaultValue = cloneValue(u.Value) }

func (SetLabel) fieldUpdate()                   {}
func (SetType) fieldUpdate()                    {}
func (SetRequired) fieldUpdate()                {}
func (SetDescription) fieldUpdate()             {}
func (SetPlaceholder) fieldUpdate()             {}
func (SetHidden) fieldUpdate()                  {}
func (SetReadOnly) fieldUpdate()                {}
func (SetHelpText) fieldUpdate()                {}
func (SetDataBindingKey) fieldUpdate()          {}
func (SetSectionTitle) fieldUpdate()            {}
func (SetRatingIcon) fieldUpdate()              {}
func (SetMaxRating) fieldUpdate()               {}
func (SetMaxFileSize) fieldUpdate()             {}
func (SetColumnPosition) fieldUpdate()          {}
func (SetAllowMultipleSelections) fieldUpdate() {}
func (SetDisplayAsInlineList) fieldUpdate()     {}
func (SetAllowedFileTypes) fieldUpdate()        {}
func (ReplaceOptions) fieldUpdate()             {}
func (SetDefaultValue) fieldUpdate()            {}
func (AppearancePatch) fieldUpdate()            {}
func (ValidationPatch) fieldUpdate()            {}
func (LogicPatch) fieldUpdate()                 {}

// AppearancePatch merges into Field.Appearance, creating it when absent.
type AppearancePatch struct {
	LabelPosition        *string
	LabelFontSize        *string
	FieldSize            *string
	Width                *string
	LabelColor           *string
	FieldBackgroundColor *string
	FieldBorderColor     *string
	FieldTextColor       *string
	CustomCSSClasses     *string
	IconPosition         *string
	IconPrefix           *string
	Alignment            *string
	FontWeight           *string
	FontStyle            *string
	BorderRadius         *string
	BorderStyle          *string
	BorderWidth          *string
	Animation            *string
	CustomCSS            *string
	DescriptionPosition  *string
}

func (p AppearancePatch) ApplyTo(f *Field) {
	a := f.Appearance.Clone()
	if a == nil {
		a = &FieldAppearance{}
	}
	mergeString(&a.LabelPosition, p.LabelPosition)
	mergeString(&a.LabelFontSize, p.LabelFontSize)
	mergeString(&a.FieldSize, p.FieldSize)
	mergeString(&a.Width, p.Width)
	mergeString(&a.LabelColor, p.LabelColor)
	mergeString(&a.FieldBackgroundColor, p.FieldBackgroundColor)
	mergeString(&a.FieldBorderColor, p.FieldBorderColor)
	mergeString(&a.FieldTextColor, p.FieldTextColor)
	mergeString(&a.CustomCSSClasses, p.CustomCSSClasses)
	mergeString(&a.IconPosition, p.IconPosition)
	mergeString(&a.IconPrefix, p.IconPrefix)
	mergeString(&a.Alignment, p.Alignment)
	mergeString(&a.FontWeight, p.FontWeight)
	mergeString(&a.FontStyle, p.FontStyle)
	mergeString(&a.BorderRadius, p.BorderRadius)
	mergeString(&a.BorderStyle, p.BorderStyle)
	mergeString(&a.BorderWidth, p.BorderWidth)
	mergeString(&a.Animation, p.Animation)
	mergeString(&a.CustomCSS, p.CustomCSS)
	mergeString(&a.DescriptionPosition, p.DescriptionPosition)
	f.Appearance = a
}

// ValidationPatch merges into Field.Validation, creating it when absent.
type ValidationPatch struct {
	MinLength          *int
	MaxLength          *int
	Min                *float64
	Max                *float64
	Step               *float64
	Pattern            *string
	CustomErrorMessage *string
}

func (p ValidationPatch) ApplyTo(f *Field) {
	v := f.Validation.Clone()
	if v == nil {
		v = &FieldValidation{}
	}
	if p.MinLength != nil {
		v.MinLength = Ptr(*p.MinLength)
	}
	if p.MaxLength != nil {
		v.MaxLength = Ptr(*p.MaxLength)
	}
	if p.Min != nil {
		v.Min = Ptr(*p.Min)
	}
	if p.Max != nil {
		v.Max = Ptr(*p.Max)
	}
	if p.Step != nil {
		v.Step = Ptr(*p.Step)
	}
	mergeString(&v.Pattern, p.Pattern)
	mergeString(&v.CustomErrorMessage, p.CustomErrorMessage)
	f.Validation = v
}

// LogicPatch merges into Field.Logic. A nil list is left untouched, a
// non-nil list (possibly empty) replaces that list.
type LogicPatch struct {
	VisibleWhen  []LogicRule
	RequiredWhen []LogicRule
}

func (p LogicPatch) ApplyTo(f *Field) {
	l := f.Logic.Clone()
	if l == nil {
		l = &FieldLogic{}
	}
	if p.VisibleWhen != nil {
		l.VisibleWhen = append([]LogicRule{}, p.VisibleWhen...)
	}
	if p.RequiredWhen != nil {
		l.RequiredWhen = append([]LogicRule{}, p.RequiredWhen...)
	}
	f.Logic = l
}

// ThemePatch merges into FormSettings.Theme.
type ThemePatch struct {
	PrimaryColor      *string
	BackgroundColor   *string
	FontFamily        *string
	Mode              *ThemeMode
	PatternType       *PatternType
	PatternOpacity    *float64
	AnimationsEnabled *bool
	BorderStyle       *string
	CardShadow        *string
	Spacing           *string
	BorderRadius      *string
}

func (p ThemePatch) ApplyTo(t *FormTheme) {
	mergeString(&t.PrimaryColor, p.PrimaryColor)
	mergeString(&t.BackgroundColor, p.BackgroundColor)
	mergeString(&t.FontFamily, p.FontFamily)
	if p.Mode != nil {
		t.Mode = *p.Mode
	}
	if p.PatternType != nil {
		t.PatternType = *p.PatternType
	}
	if p.PatternOpacity != nil {
		t.PatternOpacity = Ptr(*p.PatternOpacity)
	}
	if p.AnimationsEnabled != nil {
		t.AnimationsEnabled = Ptr(*p.AnimationsEnabled)
	}
	mergeString(&t.BorderStyle, p.BorderStyle)
	mergeString(&t.CardShadow, p.CardShadow)
	mergeString(&t.Spacing, p.Spacing)
	mergeString(&t.BorderRadius, p.BorderRadius)
}

// SettingsPatch merges into Form.Settings. The theme is patched separately
// through ThemePatch. A non-nil NotifyEmails replaces the list.
type SettingsPatch struct {
	SubmitButtonText         *string
	ShowProgressBar          *bool
	ConfirmationMessage      *string
	RedirectURL              *string
	AllowMultipleSubmissions *bool
	NotifyEmails             []string
	EnableCaptcha            *bool
	AutoSaveResponses        *bool
	LimitSubmissions         *int
}

func (p SettingsPatch) ApplyTo(s *FormSettings) {
	mergeString(&s.SubmitButtonText, p.SubmitButtonText)
	mergeBool(&s.ShowProgressBar, p.ShowProgressBar)
	mergeString(&s.ConfirmationMessage, p.ConfirmationMessage)
	mergeString(&s.RedirectURL, p.RedirectURL)
	mergeBool(&s.AllowMultipleSubmissions, p.AllowMultipleSubmissions)
	if p.NotifyEmails != nil {
		s.NotifyEmails = append([]string{}, p.NotifyEmails...)
	}
	mergeBool(&s.EnableCaptcha, p.EnableCaptcha)
	mergeBool(&s.AutoSaveResponses, p.AutoSaveResponses)
	if p.LimitSubmissions != nil {
		s.LimitSubmissions = Ptr(*p.LimitSubmissions)
	}
}

// Touch sets UpdatedAt to now. It never moves UpdatedAt backwards.
func (f *Form) Touch(now time.Time) {
	if now.Before(f.UpdatedAt) {
		now = f.UpdatedAt
	}
	f.UpdatedAt = now
}

func mergeString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func mergeBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
