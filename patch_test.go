package formwave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormPatch_ApplyTo(t *testing.T) {
	form := &Form{Title: "Old", Description: "keep", Fields: []Field{{ID: "a"}}}

	FormPatch{Title: Ptr("New"), IsPublic: Ptr(true)}.ApplyTo(form)
	assert.Equal(t, "New", form.Title)
	assert.Equal(t, "keep", form.Description)
	assert.True(t, form.IsPublic)
	assert.Len(t, form.Fields, 1, "fields untouched without a fields entry")

	FormPatch{Fields: []Field{}}.ApplyTo(form)
	assert.NotNil(t, form.Fields)
	assert.Empty(t, form.Fields)
}

func TestFieldUpdates_Scalars(t *testing.T) {
	field := Field{ID: "q1", Type: FieldTypeShortAnswer, Label: "Name"}

	updates := []FieldUpdate{
		SetLabel("Full name"),
		SetRequired(true),
		SetPlaceholder("Jane Doe"),
		SetHelpText("as on your passport"),
		SetMaxRating(10),
		SetDefaultValue{Value: []string{"x"}},
	}
	for _, u := range updates {
		u.ApplyTo(&field)
	}

	assert.Equal(t, "Full name", field.Label)
	assert.True(t, field.Required)
	assert.Equal(t, "Jane Doe", field.Placeholder)
	assert.Equal(t, "as on your passport", field.HelpText)
	require.NotNil(t, field.MaxRating)
	assert.Equal(t, 10, *field.MaxRating)
	assert.Equal(t, []string{"x"}, field.DefaultValue)
}

func TestAppearancePatch_MergesKeys(t *testing.T) {
	field := Field{Appearance: &FieldAppearance{LabelColor: "red", Width: "full"}}
	before := field.Appearance

	AppearancePatch{Width: Ptr("half")}.ApplyTo(&field)

	assert.Equal(t, "red", field.Appearance.LabelColor)
	assert.Equal(t, "half", field.Appearance.Width)
	assert.Equal(t, "full", before.Width, "the previous record is not mutated")
}

func TestValidationPatch_CreatesRecord(t *testing.T) {
	field := Field{}
	ValidationPatch{MinLength: Ptr(0), Pattern: Ptr("^[a-z]+$")}.ApplyTo(&field)

	require.NotNil(t, field.Validation)
	require.NotNil(t, field.Validation.MinLength)
	assert.Equal(t, 0, *field.Validation.MinLength)
	assert.Equal(t, "^[a-z]+$", field.Validation.Pattern)
	assert.Nil(t, field.Validation.MaxLength)
}

func TestLogicPatch_ReplacesGivenLists(t *testing.T) {
	field := Field{Logic: &FieldLogic{
		VisibleWhen:  []LogicRule{{FieldID: "a"}},
		RequiredWhen: []LogicRule{{FieldID: "b"}},
	}}

	LogicPatch{VisibleWhen: []LogicRule{}}.ApplyTo(&field)

	assert.Empty(t, field.Logic.VisibleWhen)
	assert.Equal(t, []LogicRule{{FieldID: "b"}}, field.Logic.RequiredWhen)
}

func TestReplaceOptions(t *testing.T) {
	opts := []FieldOption{{ID: "x", Value: "X"}}
	field := Field{Options: []FieldOption{{ID: "a"}, {ID: "b"}}}

	ReplaceOptions(opts).ApplyTo(&field)
	opts[0].Value = "mutated"

	assert.Equal(t, []FieldOption{{ID: "x", Value: "X"}}, field.Options)
}

func TestThemeAndSettingsPatch(t *testing.T) {
	theme := DefaultTheme()
	ThemePatch{Mode: Ptr(ThemeModeDark), PatternOpacity: Ptr(0.2)}.ApplyTo(theme)
	assert.Equal(t, ThemeModeDark, theme.Mode)
	assert.Equal(t, "#4f46e5", theme.PrimaryColor)
	assert.Equal(t, 0.2, *theme.PatternOpacity)

	settings := DefaultSettings()
	SettingsPatch{ShowProgressBar: Ptr(true), NotifyEmails: []string{"a@b.c"}}.ApplyTo(settings)
	assert.True(t, settings.ShowProgressBar)
	assert.Equal(t, DefaultSubmitButtonText, settings.SubmitButtonText)
	assert.Equal(t, []string{"a@b.c"}, settings.NotifyEmails)
}

func TestForm_TouchNeverMovesBackwards(t *testing.T) {
	now := time.Now()
	form := &Form{UpdatedAt: now}

	form.Touch(now.Add(-time.Minute))
	assert.Equal(t, now, form.UpdatedAt)

	form.Touch(now.Add(time.Minute))
	assert.Equal(t, now.Add(time.Minute), form.UpdatedAt)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "Short Answer Question", DefaultFieldLabel(FieldTypeShortAnswer))
	assert.Equal(t, "Rating Question", DefaultFieldLabel(FieldTypeRating))
	assert.Equal(t, "email@example.com", DefaultPlaceholder(FieldTypeEmail))
	assert.Equal(t, "", DefaultPlaceholder(FieldTypeDate))

	choice := NewField(FieldTypeDropdown)
	assert.Len(t, choice.Options, 3)
	assert.Equal(t, "Option 1", choice.Options[0].Value)
	assert.Nil(t, NewField(FieldTypeNumber).Options)

	patch, ok := ThemePreset(ThemeModeColorful)
	require.True(t, ok)
	assert.Equal(t, "#ec4899", *patch.PrimaryColor)
	assert.Equal(t, "#f0fdfa", *patch.BackgroundColor)

	_, ok = ThemePreset("neon")
	assert.False(t, ok)
}
