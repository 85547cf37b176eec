package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lychee-technology/formwave"
)

// fakeFormClient is a scriptable formwave.FormClient.
type fakeFormClient struct {
	mu          sync.Mutex
	createFn    func(ctx context.Context, form *formwave.Form) (*formwave.Form, error)
	updateFn    func(ctx context.Context, id string, form *formwave.Form) (*formwave.Form, error)
	getFn       func(ctx context.Context, id string) (*formwave.Form, error)
	listFn      func(ctx context.Context) ([]formwave.Form, error)
	deleteFn    func(ctx context.Context, id string) error
	createCalls int
	updateCalls int
}

func (c *fakeFormClient) CreateForm(ctx context.Context, form *formwave.Form) (*formwave.Form, error) {
	c.mu.Lock()
	c.createCalls++
	c.mu.Unlock()
	if c.createFn == nil {
		return form, nil
	}
	return c.createFn(ctx, form)
}

func (c *fakeFormClient) UpdateForm(ctx context.Context, id string, form *formwave.Form) (*formwave.Form, error) {
	c.mu.Lock()
	c.updateCalls++
	c.mu.Unlock()
	if c.updateFn == nil {
		return form, nil
	}
	return c.updateFn(ctx, id, form)
}

func (c *fakeFormClient) GetForm(ctx context.Context, id string) (*formwave.Form, error) {
	if c.getFn == nil {
		return nil, formwave.NewFormNotFoundError(id)
	}
	return c.getFn(ctx, id)
}

func (c *fakeFormClient) ListForms(ctx context.Context) ([]formwave.Form, error) {
	if c.listFn == nil {
		return nil, nil
	}
	return c.listFn(ctx)
}

func (c *fakeFormClient) DeleteForm(ctx context.Context, id string) error {
	if c.deleteFn == nil {
		return nil
	}
	return c.deleteFn(ctx, id)
}

// sequentialIDs hands out predictable ids.
type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%d", prefix, g.n)
}

func (g *sequentialIDs) FormID() string   { return g.next("form-") }
func (g *sequentialIDs) FieldID() string  { return g.next("field-") }
func (g *sequentialIDs) OptionID() string { return g.next("opt-") }

func newTestStore(client *fakeFormClient) *DocumentStore {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return NewDocumentStore(client, DocumentStoreOptions{
		IDs: &sequentialIDs{},
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			tick = tick.Add(time.Second)
			return tick
		},
	})
}

func fieldIDs(form *formwave.Form) []string {
	ids := make([]string, len(form.Fields))
	for i, f := range form.Fields {
		ids[i] = f.ID
	}
	return ids
}

func TestCreateNewForm_Defaults(t *testing.T) {
	client := &fakeFormClient{}
	store := newTestStore(client)

	form := store.CreateNewForm()

	require.NotNil(t, form)
	assert.NotEmpty(t, form.ID)
	assert.Equal(t, "Untitled Form", form.Title)
	assert.Equal(t, "", form.Description)
	assert.Empty(t, form.Fields)
	require.NotNil(t, form.Settings)
	assert.Equal(t, "Submit", form.Settings.SubmitButtonText)
	assert.False(t, form.Settings.ShowProgressBar)
	assert.Equal(t, formwave.DefaultConfirmationMessage, form.Settings.ConfirmationMessage)
	require.NotNil(t, form.Settings.Theme)
	assert.Equal(t, formwave.ThemeModeLight, form.Settings.Theme.Mode)
	assert.Equal(t, formwave.PatternNone, form.Settings.Theme.PatternType)
	assert.True(t, *form.Settings.Theme.AnimationsEnabled)

	assert.Empty(t, store.Forms(), "creating a form does not touch the cache")
	assert.Zero(t, client.createCalls)
}

func TestMutationsWithoutCurrentFormAreNoOps(t *testing.T) {
	store := newTestStore(&fakeFormClient{})

	store.UpdateForm(formwave.FormPatch{Title: formwave.Ptr("x")})
	assert.Equal(t, "", store.AddField(formwave.NewField(formwave.FieldTypeEmail), false))
	store.UpdateField("missing", formwave.SetLabel("x"))
	store.UpdateFormTheme(formwave.ThemePatch{Mode: formwave.Ptr(formwave.ThemeModeDark)})

	assert.Nil(t, store.CurrentForm())
	assert.Equal(t, uint64(0), store.Snapshot().Version)

	err := store.ReorderFields(0, 1)
	assert.True(t, errors.Is(err, &formwave.Error{Type: formwave.ErrorTypeValidation, Code: formwave.ErrCodeNoCurrentForm}))
}

func TestUpdateForm_MergesScalars(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	created := store.CreateNewForm()
	store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)

	store.UpdateForm(formwave.FormPatch{Title: formwave.Ptr("Feedback"), IsPublic: formwave.Ptr(true)})

	form := store.CurrentForm()
	assert.Equal(t, "Feedback", form.Title)
	assert.True(t, form.IsPublic)
	assert.Len(t, form.Fields, 1, "fields untouched")
	assert.True(t, form.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateForm_ReplacedFieldsKeepUniqueIDs(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()

	store.UpdateForm(formwave.FormPatch{Fields: []formwave.Field{
		{ID: "a", Type: formwave.FieldTypeShortAnswer},
		{ID: "a", Type: formwave.FieldTypeShortAnswer},
		{Type: formwave.FieldTypeDropdown, Options: []formwave.FieldOption{{Value: "x"}}},
	}})

	form := store.CurrentForm()
	ids := NewSet[string]()
	for _, id := range fieldIDs(form) {
		assert.NotEmpty(t, id)
		ids.Add(id)
	}
	assert.Equal(t, 3, ids.Size())
	assert.NotEmpty(t, form.Fields[2].Options[0].ID)
}

// Field id uniqueness across adds and duplicates.
func TestFieldIDsStayUnique(t *testing.T) {
	store := NewDocumentStore(&fakeFormClient{}, DocumentStoreOptions{})
	store.CreateNewForm()

	first := store.AddField(formwave.Field{ID: "caller-id", Type: formwave.FieldTypeShortAnswer}, false)
	assert.NotEqual(t, "caller-id", first, "the caller's id is replaced")
	for i := 0; i < 5; i++ {
		store.AddField(formwave.NewField(formwave.FieldTypeCheckbox), i%2 == 0)
		store.DuplicateField(first)
	}

	form := store.CurrentForm()
	require.Len(t, form.Fields, 11)
	seen := NewSet[string]()
	for _, id := range fieldIDs(form) {
		require.False(t, seen.Contains(id), "duplicate id %s", id)
		seen.Add(id)
	}
}

func TestAddField_Order(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	a := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	b := store.AddField(formwave.NewField(formwave.FieldTypeEmail), false)

	f := store.AddField(formwave.NewField(formwave.FieldTypeNumber), false)
	assert.Equal(t, []string{a, b, f}, fieldIDs(store.CurrentForm()))

	top := store.AddField(formwave.NewField(formwave.FieldTypeDate), true)
	assert.Equal(t, []string{top, a, b, f}, fieldIDs(store.CurrentForm()))
}

func TestAddField_ChoiceDefaultsAndFreshOptionIDs(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()

	id := store.AddField(formwave.Field{Type: formwave.FieldTypeMultipleChoice, Label: "Pick"}, false)
	given := store.AddField(formwave.Field{
		Type:    formwave.FieldTypeDropdown,
		Options: []formwave.FieldOption{{ID: "dup", Value: "A"}, {ID: "dup", Value: "B"}},
	}, false)

	form := store.CurrentForm()
	choice, _ := form.FindField(id)
	require.Len(t, choice.Options, 3)
	assert.Equal(t, "Option 1", choice.Options[0].Value)
	assert.NotEmpty(t, choice.Options[0].ID)

	dropdown, _ := form.FindField(given)
	require.Len(t, dropdown.Options, 2)
	assert.NotEqual(t, dropdown.Options[0].ID, dropdown.Options[1].ID)
	assert.NotEqual(t, "dup", dropdown.Options[0].ID)
}

func TestUpdateField_AppearanceMerges(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	id := store.AddField(formwave.Field{
		Type:       formwave.FieldTypeShortAnswer,
		Appearance: &formwave.FieldAppearance{LabelColor: "red", FieldSize: "large"},
	}, false)

	store.UpdateField(id, formwave.AppearancePatch{LabelColor: formwave.Ptr("blue")})

	field, _ := store.CurrentForm().FindField(id)
	assert.Equal(t, &formwave.FieldAppearance{LabelColor: "blue", FieldSize: "large"}, field.Appearance)
}

func TestUpdateField_ValidationAndLogicMerge(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	id := store.AddField(formwave.Field{
		Type:       formwave.FieldTypeNumber,
		Validation: &formwave.FieldValidation{Min: formwave.Ptr(1.0), Max: formwave.Ptr(10.0)},
		Logic: &formwave.FieldLogic{
			VisibleWhen: []formwave.LogicRule{{FieldID: "x", Condition: formwave.ConditionEquals, Value: "1"}},
		},
	}, false)

	store.UpdateField(id,
		formwave.ValidationPatch{Max: formwave.Ptr(5.0)},
		formwave.LogicPatch{RequiredWhen: []formwave.LogicRule{{FieldID: "y", Condition: formwave.ConditionContains, Value: "z"}}},
	)

	field, _ := store.CurrentForm().FindField(id)
	assert.Equal(t, 1.0, *field.Validation.Min)
	assert.Equal(t, 5.0, *field.Validation.Max)
	assert.Len(t, field.Logic.VisibleWhen, 1)
	assert.Len(t, field.Logic.RequiredWhen, 1)
}

func TestUpdateField_OptionsReplace(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	id := store.AddField(formwave.Field{
		Type:    formwave.FieldTypeCheckbox,
		Options: []formwave.FieldOption{{Value: "A"}, {Value: "B"}},
	}, false)

	store.UpdateField(id, formwave.ReplaceOptions{{ID: "3", Value: "C"}})

	field, _ := store.CurrentForm().FindField(id)
	assert.Equal(t, []formwave.FieldOption{{ID: "3", Value: "C"}}, field.Options)
}

func TestUpdateField_ScalarsAndTypeChange(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	id := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)

	store.UpdateField(id, formwave.SetLabel("Favourite"), formwave.SetRequired(true), formwave.SetType(formwave.FieldTypeDropdown))

	field, _ := store.CurrentForm().FindField(id)
	assert.Equal(t, "Favourite", field.Label)
	assert.True(t, field.Required)
	assert.Len(t, field.Options, 3, "a field turned into a choice field gets default options")
}

func TestUpdateField_UnknownIDIsNoOp(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	before := store.Snapshot()

	store.UpdateField("nope", formwave.SetLabel("x"))

	after := store.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.CurrentForm, after.CurrentForm)
}

func TestRemoveField_Idempotent(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	a := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	b := store.AddField(formwave.NewField(formwave.FieldTypeEmail), false)

	store.RemoveField(a)
	afterFirst := store.CurrentForm()
	assert.Equal(t, []string{b}, fieldIDs(afterFirst))

	assert.NotPanics(t, func() { store.DeleteField(a) })
	assert.Equal(t, afterFirst, store.CurrentForm())
}

func TestDuplicateField(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	src := store.AddField(formwave.Field{
		Type:    formwave.FieldTypeDropdown,
		Label:   "Size",
		Options: []formwave.FieldOption{{Value: "X"}},
	}, false)
	tail := store.AddField(formwave.NewField(formwave.FieldTypeEmail), false)
	original, _ := store.CurrentForm().FindField(src)

	dup := store.DuplicateField(src)

	form := store.CurrentForm()
	assert.Equal(t, []string{src, dup, tail}, fieldIDs(form))
	copied, _ := form.FindField(dup)
	assert.NotEqual(t, src, copied.ID)
	assert.NotEqual(t, original.Options[0].ID, copied.Options[0].ID)
	assert.Equal(t, "X", copied.Options[0].Value)
	assert.Equal(t, "Size (Copy)", copied.Label)

	assert.Equal(t, "", store.DuplicateField("missing"))
	assert.Len(t, store.CurrentForm().Fields, 3)
}

func TestReorderFields(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	a := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	b := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	c := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)

	require.NoError(t, store.ReorderFields(0, 2))
	assert.Equal(t, []string{b, c, a}, fieldIDs(store.CurrentForm()))

	require.NoError(t, store.ReorderFields(2, 0))
	assert.Equal(t, []string{a, b, c}, fieldIDs(store.CurrentForm()))
}

func TestReorderFields_RejectsOutOfRange(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	before := store.CurrentForm()

	for _, tc := range [][2]int{{-1, 0}, {0, 2}, {5, 1}} {
		err := store.ReorderFields(tc[0], tc[1])
		var fe *formwave.Error
		require.ErrorAs(t, err, &fe, "indices %v", tc)
		assert.Equal(t, formwave.ErrCodeIndexOutOfRange, fe.Code)
	}
	assert.Equal(t, before, store.CurrentForm())
}

func TestMoveField(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	a := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)
	b := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), false)

	store.MoveField(a, formwave.MoveUp)
	assert.Equal(t, []string{a, b}, fieldIDs(store.CurrentForm()), "top edge")

	store.MoveField(a, formwave.MoveDown)
	assert.Equal(t, []string{b, a}, fieldIDs(store.CurrentForm()))

	store.MoveField(a, formwave.MoveDown)
	assert.Equal(t, []string{b, a}, fieldIDs(store.CurrentForm()), "bottom edge")
}

func TestUpdateFormTheme_PreservesUnspecified(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	store.UpdateFormTheme(formwave.ThemePatch{PrimaryColor: formwave.Ptr("#000")})

	store.UpdateFormTheme(formwave.ThemePatch{Mode: formwave.Ptr(formwave.ThemeModeDark)})

	theme := store.CurrentForm().Settings.Theme
	assert.Equal(t, formwave.ThemeModeDark, theme.Mode)
	assert.Equal(t, "#000", theme.PrimaryColor)
	assert.Equal(t, formwave.DefaultFontFamily, theme.FontFamily)
}

func TestUpdateFormTheme_BaselineWhenMissing(t *testing.T) {
	client := &fakeFormClient{getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
		return &formwave.Form{ID: id, Title: "Bare"}, nil
	}}
	store := newTestStore(client)
	store.LoadForm(context.Background(), "bare")

	store.ApplyThemePreset(formwave.ThemeModeColorful)
	store.UpdateFormSettings(formwave.SettingsPatch{ShowProgressBar: formwave.Ptr(true)})

	settings := store.CurrentForm().Settings
	require.NotNil(t, settings)
	assert.True(t, settings.ShowProgressBar)
	assert.Equal(t, formwave.DefaultSubmitButtonText, settings.SubmitButtonText)
	assert.Equal(t, "#ec4899", settings.Theme.PrimaryColor)
	assert.Equal(t, "#f0fdfa", settings.Theme.BackgroundColor)
	assert.Equal(t, formwave.ThemeModeColorful, settings.Theme.Mode)
}

func TestSaveForm_CreateAdoptsServerDocument(t *testing.T) {
	client := &fakeFormClient{createFn: func(ctx context.Context, form *formwave.Form) (*formwave.Form, error) {
		out := form.Clone()
		out.ID = "server-id"
		return out, nil
	}}
	store := newTestStore(client)
	store.CreateNewForm()
	store.UpdateForm(formwave.FormPatch{Title: formwave.Ptr("Signup")})

	saved, err := store.SaveForm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "server-id", saved.ID)
	assert.Equal(t, "server-id", store.CurrentForm().ID)
	forms := store.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "server-id", forms[0].ID)
	assert.Equal(t, 1, client.createCalls)
}

func TestSaveForm_UpdatesExistingEntry(t *testing.T) {
	cached := formwave.Form{ID: "f1", Title: "Old"}
	client := &fakeFormClient{
		listFn: func(ctx context.Context) ([]formwave.Form, error) { return []formwave.Form{cached}, nil },
		getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
			f := cached
			return &f, nil
		},
		updateFn: func(ctx context.Context, id string, form *formwave.Form) (*formwave.Form, error) {
			assert.Equal(t, "f1", id)
			out := form.Clone()
			out.UpdatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
			return out, nil
		},
	}
	store := newTestStore(client)
	ctx := context.Background()
	require.NoError(t, store.LoadUserForms(ctx))
	store.LoadForm(ctx, "f1")
	store.UpdateForm(formwave.FormPatch{Title: formwave.Ptr("New")})

	_, err := store.SaveForm(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, client.updateCalls)
	assert.Zero(t, client.createCalls)
	forms := store.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "New", forms[0].Title)
	assert.Equal(t, 2030, store.CurrentForm().UpdatedAt.Year(), "server timestamps win")
}

func TestSaveForm_FailureLeavesStateUntouched(t *testing.T) {
	boom := formwave.NewRemoteError("server exploded", errors.New("500"))
	client := &fakeFormClient{createFn: func(ctx context.Context, form *formwave.Form) (*formwave.Form, error) {
		return nil, boom
	}}
	store := newTestStore(client)
	store.CreateNewForm()
	before := store.Snapshot()

	_, err := store.SaveForm(context.Background())

	assert.ErrorIs(t, err, boom)
	after := store.Snapshot()
	assert.Equal(t, before, after)
}

func TestSaveForm_WithoutCurrentForm(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	_, err := store.SaveForm(context.Background())
	assert.True(t, formwave.IsValidation(err))
}

func TestSaveForm_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	client := &fakeFormClient{createFn: func(ctx context.Context, form *formwave.Form) (*formwave.Form, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		out := form.Clone()
		out.ID = fmt.Sprintf("server-%d", n)
		if n == 1 {
			close(started)
			<-release
		}
		return out, nil
	}}
	store := newTestStore(client)
	store.CreateNewForm()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stale, err := store.SaveForm(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "server-1", stale.ID)
	}()
	<-started

	latest, err := store.SaveForm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "server-2", latest.ID)

	close(release)
	wg.Wait()

	assert.Equal(t, "server-2", store.CurrentForm().ID)
	forms := store.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "server-2", forms[0].ID)
}

func TestLoadForm_RemoteSuccess(t *testing.T) {
	client := &fakeFormClient{getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
		return &formwave.Form{ID: id, Title: "Remote"}, nil
	}}
	store := newTestStore(client)

	form := store.LoadForm(context.Background(), "r1")
	require.NotNil(t, form)
	assert.Equal(t, "Remote", form.Title)
	assert.Empty(t, store.Forms(), "loading one form does not populate the cache")
}

func TestLoadForm_FallsBackToCache(t *testing.T) {
	client := &fakeFormClient{
		listFn: func(ctx context.Context) ([]formwave.Form, error) {
			return []formwave.Form{{ID: "x", Title: "Cached"}}, nil
		},
		getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
			return nil, formwave.NewRemoteUnavailableError()
		},
	}
	store := newTestStore(client)
	ctx := context.Background()
	require.NoError(t, store.LoadUserForms(ctx))

	var form *formwave.Form
	assert.NotPanics(t, func() { form = store.LoadForm(ctx, "x") })
	require.NotNil(t, form)
	assert.Equal(t, "Cached", store.CurrentForm().Title)

	// The opened copy is independent of the cache entry.
	store.UpdateForm(formwave.FormPatch{Title: formwave.Ptr("Edited")})
	assert.Equal(t, "Cached", store.Forms()[0].Title)
}

func TestLoadForm_NoFallbackClearsCurrent(t *testing.T) {
	client := &fakeFormClient{getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
		return nil, errors.New("network down")
	}}
	store := newTestStore(client)
	store.CreateNewForm()

	assert.Nil(t, store.LoadForm(context.Background(), "unknown"))
	assert.Nil(t, store.CurrentForm())
}

func TestLoadUserForms_ErrorPropagates(t *testing.T) {
	calls := 0
	client := &fakeFormClient{listFn: func(ctx context.Context) ([]formwave.Form, error) {
		calls++
		if calls == 1 {
			return []formwave.Form{{ID: "a"}}, nil
		}
		return nil, formwave.NewAuthRequiredError()
	}}
	store := newTestStore(client)
	ctx := context.Background()
	require.NoError(t, store.LoadUserForms(ctx))

	err := store.LoadUserForms(ctx)
	assert.True(t, formwave.IsUnauthorized(err))
	assert.Len(t, store.Forms(), 1, "cache untouched on error")
}

func TestDuplicateForm(t *testing.T) {
	source := formwave.Form{
		ID:            "src",
		Title:         "Quiz",
		ResponseCount: formwave.Ptr(7),
		CreatedAt:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Fields: []formwave.Field{
			{ID: "q1", Type: formwave.FieldTypeMultipleChoice, Options: []formwave.FieldOption{{ID: "o1", Value: "A"}}},
			{ID: "q2", Type: formwave.FieldTypeShortAnswer},
		},
	}
	client := &fakeFormClient{listFn: func(ctx context.Context) ([]formwave.Form, error) {
		return []formwave.Form{source}, nil
	}}
	store := newTestStore(client)
	require.NoError(t, store.LoadUserForms(context.Background()))

	dup := store.DuplicateForm("src")

	require.NotNil(t, dup)
	assert.NotEqual(t, "src", dup.ID)
	assert.Equal(t, "Quiz (Copy)", dup.Title)
	assert.True(t, dup.CreatedAt.After(source.CreatedAt))
	assert.Nil(t, dup.ResponseCount)
	assert.NotEqual(t, "q1", dup.Fields[0].ID)
	assert.NotEqual(t, "q2", dup.Fields[1].ID)
	assert.NotEqual(t, "o1", dup.Fields[0].Options[0].ID)
	assert.Equal(t, "A", dup.Fields[0].Options[0].Value)

	assert.Len(t, store.Forms(), 2)
	assert.Equal(t, dup.ID, store.CurrentForm().ID)
	assert.Equal(t, "q1", store.Forms()[0].Fields[0].ID, "source untouched")

	assert.Nil(t, store.DuplicateForm("missing"))
}

func TestDeleteForm(t *testing.T) {
	var deleted []string
	client := &fakeFormClient{
		listFn: func(ctx context.Context) ([]formwave.Form, error) {
			return []formwave.Form{{ID: "a"}, {ID: "b"}}, nil
		},
		getFn: func(ctx context.Context, id string) (*formwave.Form, error) {
			return &formwave.Form{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			if id == "locked" {
				return formwave.NewError(formwave.ErrorTypeForbidden, formwave.ErrCodePermissionDenied, "no")
			}
			deleted = append(deleted, id)
			return nil
		},
	}
	store := newTestStore(client)
	ctx := context.Background()
	require.NoError(t, store.LoadUserForms(ctx))
	store.LoadForm(ctx, "a")

	require.NoError(t, store.DeleteForm(ctx, "a"))
	assert.Equal(t, []string{"a"}, deleted)
	assert.Nil(t, store.CurrentForm())
	forms := store.Forms()
	require.Len(t, forms, 1)
	assert.Equal(t, "b", forms[0].ID)

	assert.Error(t, store.DeleteForm(ctx, "locked"))
	assert.Len(t, store.Forms(), 1)
}

func TestSubscribe(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	var got []formwave.Snapshot
	unsubscribe := store.Subscribe(func(s formwave.Snapshot) { got = append(got, s) })

	store.CreateNewForm()
	id := store.AddField(formwave.NewField(formwave.FieldTypeEmail), false)
	store.UpdateField("missing", formwave.SetLabel("ignored"))

	require.Len(t, got, 2, "no notification for no-op mutations")
	assert.Less(t, got[0].Version, got[1].Version)
	assert.Equal(t, id, got[1].CurrentForm.Fields[0].ID)

	// Snapshots are copies.
	got[1].CurrentForm.Fields[0].Label = "mutated"
	assert.NotEqual(t, "mutated", store.CurrentForm().Fields[0].Label)

	unsubscribe()
	unsubscribe()
	store.RemoveField(id)
	assert.Len(t, got, 2)
}

func TestReadersGetCopies(t *testing.T) {
	store := newTestStore(&fakeFormClient{})
	store.CreateNewForm()
	store.AddField(formwave.NewField(formwave.FieldTypeCheckbox), false)

	form := store.CurrentForm()
	form.Title = "hacked"
	form.Fields[0].Options[0].Value = "hacked"

	fresh := store.CurrentForm()
	assert.Equal(t, "Untitled Form", fresh.Title)
	assert.Equal(t, "Option 1", fresh.Fields[0].Options[0].Value)
}

func TestConcurrentMutations(t *testing.T) {
	store := NewDocumentStore(&fakeFormClient{}, DocumentStoreOptions{})
	store.CreateNewForm()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := store.AddField(formwave.NewField(formwave.FieldTypeShortAnswer), i%2 == 0)
			store.UpdateField(id, formwave.SetLabel(fmt.Sprintf("q%d", i)))
			_ = store.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.CurrentForm().Fields, 20)
}
