package internal

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/lychee-technology/formwave"
)

func formPath(formID string) string {
	return "/forms/" + url.PathEscape(formID)
}

func (c *RESTClient) CreateForm(ctx context.Context, form *formwave.Form) (*formwave.Form, error) {
	env, err := c.do(ctx, http.MethodPost, "/forms", form)
	if err != nil {
		return nil, err
	}
	var out formwave.Form
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) UpdateForm(ctx context.Context, formID string, form *formwave.Form) (*formwave.Form, error) {
	env, err := c.do(ctx, http.MethodPut, formPath(formID), form)
	if err != nil {
		return nil, err
	}
	var out formwave.Form
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) GetForm(ctx context.Context, formID string) (*formwave.Form, error) {
	env, err := c.do(ctx, http.MethodGet, formPath(formID), nil)
	if err != nil {
		return nil, err
	}
	var out formwave.Form
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ListForms(ctx context.Context) ([]formwave.Form, error) {
	env, err := c.do(ctx, http.MethodGet, "/forms", nil)
	if err != nil {
		return nil, err
	}
	var out []formwave.Form
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) DeleteForm(ctx context.Context, formID string) error {
	_, err := c.do(ctx, http.MethodDelete, formPath(formID), nil)
	return err
}

// SubmitResponse posts the answers keyed by field id.
func (c *RESTClient) SubmitResponse(ctx context.Context, formID string, data map[string]any) (*formwave.FormResponse, error) {
	env, err := c.do(ctx, http.MethodPost, formPath(formID)+"/responses", data)
	if err != nil {
		return nil, err
	}
	var out formwave.FormResponse
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ListResponses(ctx context.Context, formID string) ([]formwave.FormResponse, error) {
	env, err := c.do(ctx, http.MethodGet, formPath(formID)+"/responses", nil)
	if err != nil {
		return nil, err
	}
	var out []formwave.FormResponse
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RESTClient) GetResponse(ctx context.Context, responseID string) (*formwave.FormResponse, error) {
	env, err := c.do(ctx, http.MethodGet, "/responses/"+url.PathEscape(responseID), nil)
	if err != nil {
		return nil, err
	}
	var out formwave.FormResponse
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) DeleteResponse(ctx context.Context, responseID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/responses/"+url.PathEscape(responseID), nil)
	return err
}

type loginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *RESTClient) Register(ctx context.Context, email, password string) (*formwave.AuthResult, error) {
	return c.authenticate(ctx, authRegisterPath, email, password)
}

func (c *RESTClient) Login(ctx context.Context, email, password string) (*formwave.AuthResult, error) {
	return c.authenticate(ctx, authLoginPath, email, password)
}

func (c *RESTClient) authenticate(ctx context.Context, path, email, password string) (*formwave.AuthResult, error) {
	env, err := c.do(ctx, http.MethodPost, path, loginCredentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	result := &formwave.AuthResult{}
	if env != nil {
		result.Token = env.Token
		result.User = env.User
	}
	if result.Token != "" {
		if err := c.tokens.SetToken(ctx, result.Token); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *RESTClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil)
	if clearErr := c.tokens.ClearToken(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func (c *RESTClient) CurrentUser(ctx context.Context) (*formwave.User, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return nil, nil
	}
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		zap.S().Debugw("current user lookup failed, dropping session", "error", err)
		if clearErr := c.tokens.ClearToken(ctx); clearErr != nil {
			zap.S().Warnw("clear session failed", "error", clearErr)
		}
		return nil, nil
	}
	if env == nil {
		return nil, nil
	}
	return env.User, nil
}

func (c *RESTClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password/request", map[string]string{"email": email})
	return err
}

func (c *RESTClient) ResetPassword(ctx context.Context, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{"password": password})
	return err
}

// UpdateProfile sends only the attributes set in update and returns the
// updated user.
func (c *RESTClient) UpdateProfile(ctx context.Context, update formwave.ProfileUpdate) (*formwave.User, error) {
	env, err := c.do(ctx, http.MethodPut, "/auth/profile", update)
	if err != nil {
		return nil, err
	}
	if env != nil && env.User != nil {
		return env.User, nil
	}
	var user formwave.User
	if err := decodeData(env, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
