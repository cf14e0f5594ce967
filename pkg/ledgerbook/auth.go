package ledgerbook

import (
	"context"

	"github.com/ledgerbook/ledgerbook-go/internal/auth"
	internalTypes "github.com/ledgerbook/ledgerbook-go/internal/types"
)

// authService implements the AuthService interface
type authService struct {
	client  *Client
	service *auth.Service
}

// newAuthService creates a new auth service
func newAuthService(client *Client) *authService {
	return &authService{
		client:  client,
		service: auth.NewService(client.transport, client.options.Logger),
	}
}

// Login performs authentication
func (a *authService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		errs := &ValidationErrors{}
		if username == "" {
			errs.Add("username", "username is required", nil)
		}
		if password == "" {
			errs.Add("password", "password is required", nil)
		}
		return errs
	}

	if err := a.service.Login(ctx, username, password); err != nil {
		return err
	}

	session, err := a.service.GetSession()
	if err != nil {
		return err
	}
	a.activate(session)

	if a.client.options.SessionFile != "" {
		if err := a.service.SaveSession(a.client.options.SessionFile); err != nil && a.client.options.Logger != nil {
			a.client.options.Logger.Warn("Failed to save session", "error", err)
		}
	}

	return nil
}

// Register creates a user without logging in
func (a *authService) Register(ctx context.Context, params *RegisterParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var user User
	err := a.service.Register(ctx, &auth.RegisterRequest{
		Username: params.Username,
		Email:    params.Email,
		Password: params.Password,
		FullName: params.FullName,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout drops the session everywhere it is held
func (a *authService) Logout() error {
	a.client.session = nil
	a.client.transport.SetSession(nil)
	a.client.InvalidateCache()

	if a.client.options.SessionFile != "" {
		return a.service.ClearSession(a.client.options.SessionFile)
	}
	a.service.Logout()
	return nil
}

// GetSession returns the current session
func (a *authService) GetSession() (*Session, error) {
	return a.service.GetSession()
}

// SaveSession saves session to file
func (a *authService) SaveSession(path string) error {
	return a.service.SaveSession(path)
}

// LoadSession loads session from file
func (a *authService) LoadSession(path string) error {
	if err := a.service.LoadSession(path); err != nil {
		return err
	}

	session, err := a.service.GetSession()
	if err != nil {
		return err
	}
	a.activate(session)
	return nil
}

// activate makes session the one used by the client and its transport
func (a *authService) activate(session *internalTypes.Session) {
	a.client.session = session
	a.client.transport.SetSession(session)
	// Cached reads belong to whoever was logged in before.
	a.client.InvalidateCache()
}
