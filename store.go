package formwave

import (
	"context"
)

// MoveDirection is the target of a single-step field move.
type MoveDirection int

const (
	MoveUp MoveDirection = iota
	MoveDown
)

// Snapshot is an immutable copy of the store state handed to readers and
// subscribers. Version increases with every committed change.
type Snapshot struct {
	CurrentForm *Form
	Forms       []Form
	Version     uint64
}

// DocumentStore holds the form being edited and the cached list of the
// user's forms, applies editing operations to the current form and
// synchronizes it with the remote API.
//
// Mutations addressing an unknown field or form id are silent no-ops.
// Readers always receive deep copies.
type DocumentStore interface {
	// Editing the current form
	CreateNewForm() *Form
	UpdateForm(patch FormPatch)
	AddField(field Field, addToTop bool) string
	UpdateField(fieldID string, updates ...FieldUpdate)
	RemoveField(fieldID string)
	DeleteField(fieldID string)
	DuplicateField(fieldID string) string
	ReorderFields(oldIndex, newIndex int) error
	MoveField(fieldID string, dir MoveDirection)
	UpdateFormTheme(patch ThemePatch)
	ApplyThemePreset(mode ThemeMode)
	UpdateFormSettings(patch SettingsPatch)

	// Remote synchronization
	SaveForm(ctx context.Context) (*Form, error)
	LoadForm(ctx context.Context, formID string) *Form
	LoadUserForms(ctx context.Context) error
	DeleteForm(ctx context.Context, formID string) error

	// Local-only
	DuplicateForm(formID string) *Form

	// Observation
	CurrentForm() *Form
	Forms() []Form
	Snapshot() Snapshot
	Subscribe(listener func(Snapshot)) (unsubscribe func())
}
