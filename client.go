package formwave

import (
	"context"
)

// FormClient is the remote persistence API for form documents.
type FormClient interface {
	CreateForm(ctx context.Context, form *Form) (*Form, error)
	UpdateForm(ctx context.Context, formID string, form *Form) (*Form, error)
	GetForm(ctx context.Context, formID string) (*Form, error)
	ListForms(ctx context.Context) ([]Form, error)
	DeleteForm(ctx context.Context, formID string) error
}

// ResponseClient is the remote API for form submissions.
type ResponseClient interface {
	SubmitResponse(ctx context.Context, formID string, data map[string]any) (*FormResponse, error)
	ListResponses(ctx context.Context, formID string) ([]FormResponse, error)
	GetResponse(ctx context.Context, responseID string) (*FormResponse, error)
	DeleteResponse(ctx context.Context, responseID string) error
}

// AuthClient is the remote authentication API. The session token returned
// by Register and Login is persisted in the client's TokenStore.
type AuthClient interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout clears the stored token even when the remote call fails.
	Logout(ctx context.Context) error
	// CurrentUser returns nil without error when no session is stored or
	// the backend rejects it.
	CurrentUser(ctx context.Context) (*User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, password string) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error)
}

// TokenStore persists the session token between invocations.
type TokenStore interface {
	// Token returns the stored token, or "" when none is stored or it expired.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Client is the complete remote API of a FormWave backend.
type Client interface {
	FormClient
	ResponseClient
	AuthClient
}

// ResponseValidator checks answers against a form before submission.
type ResponseValidator interface {
	Validate(form *Form, answers map[string]any) error
}
