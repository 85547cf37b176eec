package internal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

// SaveForm sends the current form to the backend, updating it when its id is
// cached and creating it otherwise. The document returned by the backend
// replaces the cache entry and becomes the current form. On error the state
// is left as it was.
//
// When saves overlap, a response is adopted only if no later save has been
// adopted already; a stale response is returned to its caller but not
// committed.
func (s *DocumentStore) SaveForm(ctx context.Context) (*formwave.Form, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, formwave.NewNoCurrentFormError()
	}
	draft := s.current.Clone()
	exists := s.cacheIndexLocked(draft.ID) >= 0
	s.saveSeq++
	seq := s.saveSeq
	s.mu.Unlock()

	start := time.Now()
	var (
		saved *formwave.Form
		err   error
		op    = "create_form"
	)
	if exists {
		op = "update_form"
		saved, err = s.client.UpdateForm(ctx, draft.ID, draft)
	} else {
		saved, err = s.client.CreateForm(ctx, draft)
	}
	EmitRemoteLatency(ctx, op, time.Since(start).Milliseconds(), err)
	if err != nil {
		zap.S().Warnw("save form failed", "formId", draft.ID, "operation", op, "error", err)
		return nil, err
	}
	if saved == nil {
		return nil, formwave.NewError(formwave.ErrorTypeRemote, formwave.ErrCodeInvalidResponse, "backend returned no form").
			WithForm(draft.ID)
	}
	saved = saved.Clone()

	s.mu.Lock()
	if seq < s.committedSeq {
		s.mu.Unlock()
		EmitStaleSave(ctx)
		zap.S().Debugw("discarding stale save response", "formId", saved.ID, "seq", seq)
		return saved.Clone(), nil
	}
	s.committedSeq = seq

	if idx := s.cacheIndexLocked(draft.ID); idx >= 0 {
		s.forms[idx] = *saved.Clone()
	} else if idx := s.cacheIndexLocked(saved.ID); idx >= 0 {
		s.forms[idx] = *saved.Clone()
	} else {
		s.forms = append(s.forms, *saved.Clone())
	}
	// Another form may have been opened during the round trip.
	if s.current == nil || s.current.ID == draft.ID || s.current.ID == saved.ID {
		s.current = saved
	}
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	zap.S().Debugw("form saved", "formId", saved.ID, "operation", op)
	return saved.Clone(), nil
}

// LoadForm fetches formID and opens it. When the fetch fails the cached copy
// is opened instead; without one the current form becomes nil. It never
// returns an error.
func (s *DocumentStore) LoadForm(ctx context.Context, formID string) *formwave.Form {
	start := time.Now()
	fetched, err := s.client.GetForm(ctx, formID)
	EmitRemoteLatency(ctx, "get_form", time.Since(start).Milliseconds(), err)
	if err == nil && fetched == nil {
		err = formwave.NewFormNotFoundError(formID)
	}

	s.mu.Lock()
	if err == nil {
		s.current = fetched.Clone()
	} else {
		idx := s.cacheIndexLocked(formID)
		EmitLoadFallback(ctx, idx >= 0)
		if idx >= 0 {
			zap.S().Warnw("load form failed, using cached copy", "formId", formID, "error", err)
			s.current = s.forms[idx].Clone()
		} else {
			zap.S().Warnw("load form failed, no cached copy", "formId", formID, "error", err)
			s.current = nil
		}
	}
	result := s.current.Clone()
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	return result
}

// LoadUserForms replaces the cache with the user's forms from the backend.
// Errors are returned and leave the cache untouched.
func (s *DocumentStore) LoadUserForms(ctx context.Context) error {
	start := time.Now()
	forms, err := s.client.ListForms(ctx)
	EmitRemoteLatency(ctx, "list_forms", time.Since(start).Milliseconds(), err)
	if err != nil {
		zap.S().Warnw("load user forms failed", "error", err)
		return err
	}
	if forms == nil {
		forms = []formwave.Form{}
	}

	s.mu.Lock()
	s.forms = formwave.CloneForms(forms)
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	zap.S().Debugw("user forms loaded", "count", len(forms))
	return nil
}

// DeleteForm deletes formID remotely, then drops it from the cache and
// closes it if it is open.
func (s *DocumentStore) DeleteForm(ctx context.Context, formID string) error {
	start := time.Now()
	err := s.client.DeleteForm(ctx, formID)
	EmitRemoteLatency(ctx, "delete_form", time.Since(start).Milliseconds(), err)
	if err != nil {
		zap.S().Warnw("delete form failed", "formId", formID, "error", err)
		return err
	}

	s.mu.Lock()
	if idx := s.cacheIndexLocked(formID); idx >= 0 {
		s.forms = append(s.forms[:idx:idx], s.forms[idx+1:]...)
	}
	if s.current != nil && s.current.ID == formID {
		s.current = nil
	}
	snap, listeners := s.commitLocked()
	s.mu.Unlock()

	notify(snap, listeners)
	return nil
}
