package internal

import (
	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

// CreateNewForm replaces the current form with an empty, unsaved document.
// The cache is left alone.
func (s *DocumentStore) CreateNewForm() *formwave.Form {
	form := formwave.NewForm(s.ids.FormID(), s.now())

	s.mu.Lock()
	s.current = form
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	return form.Clone()
}

func (s *DocumentStore) UpdateForm(patch formwave.FormPatch) {
	s.mutate(func(next *formwave.Form) bool {
		patch.ApplyTo(next)
		if patch.Fields != nil {
			s.ensureFieldInvariants(next)
		}
		return true
	})
}

// AddField inserts a copy of field under a fresh id, first when addToTop is
// set and last otherwise. It returns the new id, or "" without a current form.
func (s *DocumentStore) AddField(field formwave.Field, addToTop bool) string {
	var id string
	s.mutate(func(next *formwave.Form) bool {
		f := field.Clone()
		f.ID = s.ids.FieldID()
		if f.Type.RequiresOptions() && len(f.Options) == 0 {
			f.Options = formwave.DefaultOptions()
		}
		for i := range f.Options {
			f.Options[i].ID = s.ids.OptionID()
		}

		if addToTop {
			next.Fields = append([]formwave.Field{f}, next.Fields...)
		} else {
			next.Fields = append(next.Fields, f)
		}
		id = f.ID
		return true
	})
	if id != "" {
		zap.S().Debugw("field added", "fieldId", id, "type", field.Type, "top", addToTop)
	}
	return id
}

// UpdateField applies updates in order to the field with fieldID.
func (s *DocumentStore) UpdateField(fieldID string, updates ...formwave.FieldUpdate) {
	s.mutate(func(next *formwave.Form) bool {
		f, ok := next.FindField(fieldID)
		if !ok {
			return false
		}
		before := f.Type
		for _, u := range updates {
			u.ApplyTo(f)
		}
		if f.Type != before && f.Type.RequiresOptions() && len(f.Options) == 0 {
			f.Options = formwave.DefaultOptions()
		}
		s.fillOptionIDs(f)
		return true
	})
}

// RemoveField drops the field with fieldID. Removing an absent field is a no-op.
func (s *DocumentStore) RemoveField(fieldID string) {
	s.mutate(func(next *formwave.Form) bool {
		idx := next.FieldIndex(fieldID)
		if idx < 0 {
			return false
		}
		next.Fields = append(next.Fields[:idx], next.Fields[idx+1:]...)
		return true
	})
}

// DeleteField is RemoveField.
func (s *DocumentStore) DeleteField(fieldID string) {
	s.RemoveField(fieldID)
}

// DuplicateField inserts a copy of the field right after it, with fresh
// field and option ids and " (Copy)" appended to the label.
func (s *DocumentStore) DuplicateField(fieldID string) string {
	var id string
	s.mutate(func(next *formwave.Form) bool {
		idx := next.FieldIndex(fieldID)
		if idx < 0 {
			return false
		}
		dup := next.Fields[idx].CloneWithFreshIDs(s.ids.FieldID(), s.ids.OptionID)
		dup.Label += formwave.CopySuffix

		fields := make([]formwave.Field, 0, len(next.Fields)+1)
		fields = append(fields, next.Fields[:idx+1]...)
		fields = append(fields, dup)
		fields = append(fields, next.Fields[idx+1:]...)
		next.Fields = fields
		id = dup.ID
		return true
	})
	return id
}

// ReorderFields moves the field at oldIndex to newIndex. Indices outside the
// field list are rejected and leave the form unchanged.
func (s *DocumentStore) ReorderFields(oldIndex, newIndex int) error {
	var rangeErr error
	called := false
	s.mutate(func(next *formwave.Form) bool {
		called = true
		n := len(next.Fields)
		if oldIndex < 0 || oldIndex >= n {
			rangeErr = formwave.NewIndexOutOfRangeError(oldIndex, n).WithForm(next.ID)
			return false
		}
		if newIndex < 0 || newIndex >= n {
			rangeErr = formwave.NewIndexOutOfRangeError(newIndex, n).WithForm(next.ID)
			return false
		}
		moveField(next.Fields, oldIndex, newIndex)
		return true
	})
	if !called {
		return formwave.NewNoCurrentFormError()
	}
	return rangeErr
}

// MoveField shifts the field one slot up or down. At the edges it does nothing.
func (s *DocumentStore) MoveField(fieldID string, dir formwave.MoveDirection) {
	s.mutate(func(next *formwave.Form) bool {
		idx := next.FieldIndex(fieldID)
		if idx < 0 {
			return false
		}
		target := idx - 1
		if dir == formwave.MoveDown {
			target = idx + 1
		}
		if target < 0 || target >= len(next.Fields) {
			return false
		}
		moveField(next.Fields, idx, target)
		return true
	})
}

func (s *DocumentStore) UpdateFormTheme(patch formwave.ThemePatch) {
	s.mutate(func(next *formwave.Form) bool {
		if next.Settings == nil {
			next.Settings = formwave.DefaultSettings()
		}
		if next.Settings.Theme == nil {
			next.Settings.Theme = formwave.DefaultTheme()
		}
		patch.ApplyTo(next.Settings.Theme)
		return true
	})
}

// ApplyThemePreset merges the colors of the preset for mode into the theme.
// Unknown modes are ignored.
func (s *DocumentStore) ApplyThemePreset(mode formwave.ThemeMode) {
	patch, ok := formwave.ThemePreset(mode)
	if !ok {
		zap.S().Debugw("unknown theme preset", "mode", mode)
		return
	}
	s.UpdateFormTheme(patch)
}

func (s *DocumentStore) UpdateFormSettings(patch formwave.SettingsPatch) {
	s.mutate(func(next *formwave.Form) bool {
		if next.Settings == nil {
			next.Settings = formwave.DefaultSettings()
		}
		patch.ApplyTo(next.Settings)
		return true
	})
}

// DuplicateForm copies the cached form formID under fresh form, field and
// option ids, appends the copy to the cache and opens it. The copy exists
// only locally until saved.
func (s *DocumentStore) DuplicateForm(formID string) *formwave.Form {
	s.mu.Lock()
	idx := s.cacheIndexLocked(formID)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	dup := s.forms[idx].CloneWithFreshIDs(s.ids.FormID(), s.ids.FieldID, s.ids.OptionID)
	dup.Title += formwave.CopySuffix
	now := s.now()
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.ResponseCount = nil

	s.forms = append(s.forms, *dup)
	s.current = dup
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	zap.S().Debugw("form duplicated", "sourceId", formID, "formId", dup.ID)
	return dup.Clone()
}

// ensureFieldInvariants gives fields replaced through UpdateForm an id when
// they lack one or collide with an earlier field, and fills missing option ids.
func (s *DocumentStore) ensureFieldInvariants(form *formwave.Form) {
	seen := NewSet[string]()
	for i := range form.Fields {
		f := &form.Fields[i]
		if f.ID == "" || seen.Contains(f.ID) {
			f.ID = s.ids.FieldID()
		}
		seen.Add(f.ID)
		s.fillOptionIDs(f)
	}
}

func (s *DocumentStore) fillOptionIDs(f *formwave.Field) {
	seen := NewSet[string]()
	for i := range f.Options {
		if f.Options[i].ID == "" || seen.Contains(f.Options[i].ID) {
			f.Options[i].ID = s.ids.OptionID()
		}
		seen.Add(f.Options[i].ID)
	}
}

// moveField moves fields[from] to position to, shifting the others.
func moveField(fields []formwave.Field, from, to int) {
	moved := fields[from]
	if from < to {
		copy(fields[from:to], fields[from+1:to+1])
	} else {
		copy(fields[to+1:from+1], fields[to:from])
	}
	fields[to] = moved
}
