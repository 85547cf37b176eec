package formwave

import (
	"time"
)

// FieldType identifies the kind of question a field renders.
type FieldType string

const (
	FieldTypeShortAnswer    FieldType = "short-answer"
	FieldTypeLongAnswer     FieldType = "long-answer"
	FieldTypeMultipleChoice FieldType = "multiple-choice"
	FieldTypeCheckbox       FieldType = "checkbox"
	FieldTypeDropdown       FieldType = "dropdown"
	FieldTypeRating         FieldType = "rating"
	FieldTypeDate           FieldType = "date"
	FieldTypeEmail          FieldType = "email"
	FieldTypePhone          FieldType = "phone"
	FieldTypeNumber         FieldType = "number"
	FieldTypeWebsite        FieldType = "website"
	FieldTypeFileUpload     FieldType = "file-upload"
	FieldTypeSectionBreak   FieldType = "section-break"
	FieldTypeName           FieldType = "name"
	FieldTypeAddress        FieldType = "address"
	FieldTypeLikert         FieldType = "likert"
	FieldTypeSignature      FieldType = "signature"
	FieldTypeTime           FieldType = "time"
)

// FieldTypes lists every supported field type in palette order.
var FieldTypes = []FieldType{
	FieldTypeShortAnswer,
	FieldTypeLongAnswer,
	FieldTypeMultipleChoice,
	FieldTypeCheckbox,
	FieldTypeDropdown,
	FieldTypeRating,
	FieldTypeDate,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeNumber,
	FieldTypeWebsite,
	FieldTypeFileUpload,
	FieldTypeSectionBreak,
	FieldTypeName,
	FieldTypeAddress,
	FieldTypeLikert,
	FieldTypeSignature,
	FieldTypeTime,
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if known == t {
			return true
		}
	}
	return false
}

// RequiresOptions reports whether fields of this type carry a choice list.
func (t FieldType) RequiresOptions() bool {
	switch t {
	case FieldTypeMultipleChoice, FieldTypeCheckbox, FieldTypeDropdown:
		return true
	default:
		return false
	}
}

// FieldOption is one selectable choice of a choice-type field.
type FieldOption struct {
	ID             string `json:"id"`
	Value          string `json:"value"`
	Description    string `json:"description,omitempty"`
	HasOtherOption bool   `json:"hasOtherOption,omitempty"`
}

// FieldValidation holds input constraints. Numeric limits are pointers so
// that zero is distinguishable from "not set".
type FieldValidation struct {
	MinLength          *int     `json:"minLength,omitempty"`
	MaxLength          *int     `json:"maxLength,omitempty"`
	Min                *float64 `json:"min,omitempty"`
	Max                *float64 `json:"max,omitempty"`
	Step               *float64 `json:"step,omitempty"`
	Pattern            string   `json:"pattern,omitempty"`
	CustomErrorMessage string   `json:"customErrorMessage,omitempty"`
}

// FieldAppearance holds per-field styling.
type FieldAppearance struct {
	LabelPosition        string `json:"labelPosition,omitempty"`
	LabelFontSize        string `json:"labelFontSize,omitempty"`
	FieldSize            string `json:"fieldSize,omitempty"`
	Width                string `json:"width,omitempty"`
	LabelColor           string `json:"labelColor,omitempty"`
	FieldBackgroundColor string `json:"fieldBackgroundColor,omitempty"`
	FieldBorderColor     string `json:"fieldBorderColor,omitempty"`
	FieldTextColor       string `json:"fieldTextColor,omitempty"`
	CustomCSSClasses     string `json:"customCssClasses,omitempty"`
	IconPosition         string `json:"iconPosition,omitempty"`
	IconPrefix           string `json:"iconPrefix,omitempty"`
	Alignment            string `json:"alignment,omitempty"`
	FontWeight           string `json:"fontWeight,omitempty"`
	FontStyle            string `json:"fontStyle,omitempty"`
	BorderRadius         string `json:"borderRadius,omitempty"`
	BorderStyle          string `json:"borderStyle,omitempty"`
	BorderWidth          string `json:"borderWidth,omitempty"`
	Animation            string `json:"animation,omitempty"`
	CustomCSS            string `json:"customCss,omitempty"`
	DescriptionPosition  string `json:"descriptionPosition,omitempty"`
}

// ConditionType is the comparison applied by a logic rule.
type ConditionType string

const (
	ConditionEquals      ConditionType = "equals"
	ConditionNotEquals   ConditionType = "not-equals"
	ConditionContains    ConditionType = "contains"
	ConditionNotContains ConditionType = "not-contains"
	ConditionGreaterThan ConditionType = "greater-than"
	ConditionLessThan    ConditionType = "less-than"
)

// LogicRule compares the answer of another field against a value.
type LogicRule struct {
	FieldID   string        `json:"fieldId"`
	Condition ConditionType `json:"condition"`
	Value     string        `json:"value"`
}

// FieldLogic holds the conditional visibility and requirement rules.
type FieldLogic struct {
	VisibleWhen  []LogicRule `json:"visibleWhen,omitempty"`
	RequiredWhen []LogicRule `json:"requiredWhen,omitempty"`
}

// Field is one question or element of a form.
type Field struct {
	ID           string           `json:"id"`
	Type         FieldType        `json:"type"`
	Label        string           `json:"label"`
	Required     bool             `json:"required"`
	Description  string           `json:"description,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty"`
	DefaultValue any              `json:"defaultValue,omitempty"`
	Options      []FieldOption    `json:"options,omitempty"`
	Appearance   *FieldAppearance `json:"appearance,omitempty"`
	Validation   *FieldValidation `json:"validation,omitempty"`
	Logic        *FieldLogic      `json:"logic,omitempty"`

	IsReadOnly              bool     `json:"isReadOnly,omitempty"`
	IsHidden                bool     `json:"isHidden,omitempty"`
	HelpText                string   `json:"helpText,omitempty"`
	DataBindingKey          string   `json:"dataBindingKey,omitempty"`
	AllowMultipleSelections bool     `json:"allowMultipleSelections,omitempty"`
	DisplayAsInlineList     bool     `json:"displayAsInlineList,omitempty"`
	ColumnPosition          *int     `json:"columnPosition,omitempty"`
	SectionTitle            string   `json:"sectionTitle,omitempty"`
	MaxRating               *int     `json:"maxRating,omitempty"`
	RatingIcon              string   `json:"ratingIcon,omitempty"`
	AllowedFileTypes        []string `json:"allowedFileTypes,omitempty"`
	MaxFileSize             *float64 `json:"maxFileSize,omitempty"` // in MB
}

// ThemeMode is the color scheme of a published form.
type ThemeMode string

const (
	ThemeModeLight    ThemeMode = "light"
	ThemeModeDark     ThemeMode = "dark"
	ThemeModeColorful ThemeMode = "colorful"
)

// PatternType is the decorative background of a published form.
type PatternType string

const (
	PatternNone      PatternType = "none"
	PatternDots      PatternType = "dots"
	PatternWaves     PatternType = "waves"
	PatternGrid      PatternType = "grid"
	PatternGeometric PatternType = "geometric"
)

// FormTheme describes the look of a published form.
type FormTheme struct {
	PrimaryColor      string      `json:"primaryColor"`
	BackgroundColor   string      `json:"backgroundColor"`
	FontFamily        string      `json:"fontFamily"`
	Mode              ThemeMode   `json:"mode"`
	PatternType       PatternType `json:"patternType,omitempty"`
	PatternOpacity    *float64    `json:"patternOpacity,omitempty"`
	AnimationsEnabled *bool       `json:"animationsEnabled,omitempty"`
	BorderStyle       string      `json:"borderStyle,omitempty"`
	CardShadow        string      `json:"cardShadow,omitempty"`
	Spacing           string      `json:"spacing,omitempty"`
	BorderRadius      string      `json:"borderRadius,omitempty"`
}

// FormSettings holds submission behavior and the embedded theme.
type FormSettings struct {
	SubmitButtonText         string     `json:"submitButtonText"`
	ShowProgressBar          bool       `json:"showProgressBar"`
	ConfirmationMessage      string     `json:"confirmationMessage"`
	RedirectURL              string     `json:"redirectUrl,omitempty"`
	Theme                    *FormTheme `json:"theme,omitempty"`
	AllowMultipleSubmissions bool       `json:"allowMultipleSubmissions,omitempty"`
	NotifyEmails             []string   `json:"notifyEmails,omitempty"`
	EnableCaptcha            bool       `json:"enableCaptcha,omitempty"`
	AutoSaveResponses        bool       `json:"autoSaveResponses,omitempty"`
	LimitSubmissions         *int       `json:"limitSubmissions,omitempty"`
}

// FormLayout holds page-level layout options.
type FormLayout struct {
	Template                 string `json:"template,omitempty"`
	Columns                  int    `json:"columns,omitempty"`
	LogoURL                  string `json:"logoUrl,omitempty"`
	HeaderBackgroundColor    string `json:"headerBackgroundColor,omitempty"`
	FooterContent            string `json:"footerContent,omitempty"`
	SubmitButtonPosition     string `json:"submitButtonPosition,omitempty"`
	SubmitButtonColor        string `json:"submitButtonColor,omitempty"`
	SubmitButtonTextColor    string `json:"submitButtonTextColor,omitempty"`
	SubmitButtonBorderRadius string `json:"submitButtonBorderRadius,omitempty"`
}

// Form is the root document edited by the builder.
type Form struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Author        string        `json:"author,omitempty"`
	Fields        []Field       `json:"fields"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	IsPublic      bool          `json:"isPublic"`
	Layout        *FormLayout   `json:"layout,omitempty"`
	Settings      *FormSettings `json:"settings,omitempty"`
	ResponseCount *int          `json:"responseCount,omitempty"`
}

// FieldIndex returns the position of the field with the given id, or -1.
func (f *Form) FieldIndex(fieldID string) int {
	for i := range f.Fields {
		if f.Fields[i].ID == fieldID {
			return i
		}
	}
	return -1
}

// FindField returns the field with the given id.
func (f *Form) FindField(fieldID string) (*Field, bool) {
	idx := f.FieldIndex(fieldID)
	if idx < 0 {
		return nil, false
	}
	return &f.Fields[idx], true
}

// FormResponse is one submission to a published form.
type FormResponse struct {
	ID        string         `json:"id"`
	FormID    string         `json:"formId"`
	CreatedAt time.Time      `json:"createdAt"`
	Data      map[string]any `json:"data"`
}

// User is the authenticated account as reported by the backend.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileUpdate carries the editable profile attributes.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
