package devapi

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lychee-technology/formwave"
)

const minPasswordLength = 8

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := readJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if len(body.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "weak password")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password failed")
		return
	}

	key := strings.ToLower(body.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[key]; exists {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	acct := &account{
		user:         formwave.User{ID: uuid.NewString(), Email: body.Email},
		passwordHash: hash,
	}
	s.accounts[key] = acct
	token, err := s.newSessionLocked(acct.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue session failed")
		return
	}
	user := acct.user
	zap.S().Infow("user registered", "userId", user.ID)
	writeJSON(w, http.StatusCreated, apiResponse{Token: token, User: &user})
}

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := readJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(body.Email)]
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid login credentials")
		return
	}
	token, err := s.newSessionLocked(acct.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue session failed")
		return
	}
	user := acct.user
	writeJSON(w, http.StatusOK, apiResponse{Token: token, User: &user})
}

// handleLogout handles POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handleMe handles GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountByIDLocked(userID(r.Context()))
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	user := acct.user
	writeJSON(w, http.StatusOK, apiResponse{User: &user})
}

// handleResetRequest handles POST /api/auth/reset-password/request. No mail
// is sent; the request is only acknowledged.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := readJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	zap.S().Infow("password reset requested", "email", body.Email)
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handleResetPassword handles POST /api/auth/reset-password
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := readJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(body.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "weak password")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountByIDLocked(userID(r.Context()))
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	acct.passwordHash = hash
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handleUpdateProfile handles PUT /api/auth/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body formwave.ProfileUpdate
	if err := readJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accountByIDLocked(userID(r.Context()))
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "session expired")
		return
	}
	if body.Name != nil {
		acct.user.Name = *body.Name
	}
	if body.Avatar != nil {
		acct.user.Avatar = *body.Avatar
	}
	user := acct.user
	writeJSON(w, http.StatusOK, apiResponse{User: &user})
}

func (s *Server) accountByIDLocked(uid string) *account {
	for _, acct := range s.accounts {
		if acct.user.ID == uid {
			return acct
		}
	}
	return nil
}

// handleListForms handles GET /api/forms
func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]formwave.Form, 0)
	for _, id := range s.formOrder {
		if s.formOwner[id] == uid {
			out = append(out, *s.forms[id].Clone())
		}
	}
	writeData(w, http.StatusOK, out)
}

// handleCreateForm handles POST /api/forms. The server assigns the id and
// the timestamps.
func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var form formwave.Form
	if err := readJSONBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if form.Fields == nil {
		form.Fields = []formwave.Field{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	form.ID = s.ids.FormID()
	form.CreatedAt = now
	form.UpdatedAt = now
	form.ResponseCount = formwave.Ptr(0)

	s.forms[form.ID] = form.Clone()
	s.formOwner[form.ID] = userID(r.Context())
	s.formOrder = append(s.formOrder, form.ID)
	zap.S().Debugw("form created", "formId", form.ID)
	writeData(w, http.StatusCreated, form)
}

// handleGetForm handles GET /api/forms/{id}. Public forms are readable by any
// signed-in user.
func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	form, ok := s.forms[id]
	if !ok || (!form.IsPublic && s.formOwner[id] != userID(r.Context())) {
		writeError(w, http.StatusNotFound, "form not found")
		return
	}
	writeData(w, http.StatusOK, form.Clone())
}

// handleUpdateForm handles PUT /api/forms/{id}. The id, creation time and
// response count are kept; updatedAt is refreshed.
func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var form formwave.Form
	if err := readJSONBody(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, status := s.ownedFormLocked(id, userID(r.Context()))
	if existing == nil {
		writeError(w, status, http.StatusText(status))
		return
	}
	if form.Fields == nil {
		form.Fields = []formwave.Field{}
	}
	form.ID = id
	form.CreatedAt = existing.CreatedAt
	form.ResponseCount = existing.ResponseCount
	form.UpdatedAt = s.now().UTC()

	s.forms[id] = form.Clone()
	writeData(w, http.StatusOK, form)
}

// handleDeleteForm handles DELETE /api/forms/{id} and drops its responses.
func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, status := s.ownedFormLocked(id, userID(r.Context())); existing == nil {
		writeError(w, status, http.StatusText(status))
		return
	}
	delete(s.forms, id)
	delete(s.formOwner, id)
	s.formOrder = removeID(s.formOrder, id)

	kept := s.responseOrder[:0]
	for _, rid := range s.responseOrder {
		if s.responses[rid].FormID == id {
			delete(s.responses, rid)
			continue
		}
		kept = append(kept, rid)
	}
	s.responseOrder = kept
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handleSubmitResponse handles POST /api/forms/{id}/responses. The body is
// the answer map keyed by field id.
func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var data map[string]any
	if err := readJSONBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[id]
	if !ok || (!form.IsPublic && s.formOwner[id] != userID(r.Context())) {
		writeError(w, http.StatusNotFound, "form not found")
		return
	}
	count := 0
	if form.ResponseCount != nil {
		count = *form.ResponseCount
	}
	if form.Settings != nil && form.Settings.LimitSubmissions != nil && count >= *form.Settings.LimitSubmissions {
		writeError(w, http.StatusForbidden, "submission limit reached")
		return
	}

	resp := &formwave.FormResponse{
		ID:        newResponseID(),
		FormID:    id,
		CreatedAt: s.now().UTC(),
		Data:      data,
	}
	s.responses[resp.ID] = resp
	s.responseOrder = append(s.responseOrder, resp.ID)
	form.ResponseCount = formwave.Ptr(count + 1)
	writeData(w, http.StatusCreated, resp)
}

// handleListResponses handles GET /api/forms/{id}/responses
func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, status := s.ownedFormLocked(id, userID(r.Context())); existing == nil {
		writeError(w, status, http.StatusText(status))
		return
	}
	out := make([]formwave.FormResponse, 0)
	for _, rid := range s.responseOrder {
		if resp := s.responses[rid]; resp.FormID == id {
			out = append(out, *resp)
		}
	}
	writeData(w, http.StatusOK, out)
}

// handleGetResponse handles GET /api/responses/{id}
func (s *Server) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, status := s.ownedResponseLocked(chi.URLParam(r, "id"), userID(r.Context()))
	if resp == nil {
		writeError(w, status, http.StatusText(status))
		return
	}
	writeData(w, http.StatusOK, resp)
}

// handleDeleteResponse handles DELETE /api/responses/{id}
func (s *Server) handleDeleteResponse(w http.ResponseWriter, r *http.Request) {
	rid := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, status := s.ownedResponseLocked(rid, userID(r.Context()))
	if resp == nil {
		writeError(w, status, http.StatusText(status))
		return
	}
	delete(s.responses, rid)
	s.responseOrder = removeID(s.responseOrder, rid)
	if form := s.forms[resp.FormID]; form != nil && form.ResponseCount != nil && *form.ResponseCount > 0 {
		form.ResponseCount = formwave.Ptr(*form.ResponseCount - 1)
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// ownedFormLocked returns the form when uid owns it, or the status to answer.
func (s *Server) ownedFormLocked(id, uid string) (*formwave.Form, int) {
	form, ok := s.forms[id]
	if !ok {
		return nil, http.StatusNotFound
	}
	if s.formOwner[id] != uid {
		return nil, http.StatusForbidden
	}
	return form, http.StatusOK
}

func (s *Server) ownedResponseLocked(id, uid string) (*formwave.FormResponse, int) {
	resp, ok := s.responses[id]
	if !ok {
		return nil, http.StatusNotFound
	}
	if s.formOwner[resp.FormID] != uid {
		return nil, http.StatusForbidden
	}
	return resp, http.StatusOK
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
