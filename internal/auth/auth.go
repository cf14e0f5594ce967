package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	"github.com/ledgerbook/ledgerbook-go/internal/types"
	"github.com/pkg/errors"
)

const (
	loginEndpoint    = "/user/login"
	registerEndpoint = "/user/register"
)

// Doer is the subset of the transport the auth service needs
type Doer interface {
	Do(ctx context.Context, req *transport.Request, result interface{}) error
}

// Service handles authentication operations
type Service struct {
	transport  Doer
	deviceUUID string
	session    *types.Session
	logger     types.Logger
}

// RegisterRequest is the payload for creating a user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// NewService creates a new auth service
func NewService(t Doer, logger types.Logger) *Service {
	return &Service{
		transport:  t,
		deviceUUID: uuid.New().String(),
		logger:     logger,
	}
}

// Login exchanges username and password for a bearer token
func (s *Service) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username":   {username},
		"password":   {password},
		"grant_type": {"password"},
	}

	if s.logger != nil {
		s.logger.Debug("Login request", "username", username)
	}

	var resp loginResponse
	err := s.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   loginEndpoint,
		Form:   form,
		Public: true,
	}, &resp)
	if err != nil {
		if errors.Is(err, types.ErrNotAuthenticated) {
			return types.ErrLoginFailed
		}
		return errors.Wrap(err, "login request failed")
	}

	if resp.AccessToken == "" {
		return errors.New("no token in login response")
	}

	ttl := types.DefaultSessionTTL
	if resp.ExpiresIn > 0 {
		ttl = time.Duration(resp.ExpiresIn) * time.Second
	}

	s.session = &types.Session{
		Token:      resp.AccessToken,
		TokenType:  resp.TokenType,
		Username:   username,
		ExpiresAt:  time.Now().Add(ttl),
		DeviceUUID: s.deviceUUID,
	}

	if s.logger != nil {
		s.logger.Info("Login successful", "username", username)
	}

	return nil
}

// Register creates a new user account. It does not log in.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, result interface{}) error {
	err := s.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   registerEndpoint,
		Body:   req,
		Public: true,
	}, result)
	if err != nil {
		return errors.Wrap(err, "failed to register user")
	}

	if s.logger != nil {
		s.logger.Info("User registered", "username", req.Username)
	}
	return nil
}

// Logout drops the in-memory session
func (s *Service) Logout() {
	s.session = nil
}

// GetSession returns the current session
func (s *Service) GetSession() (*types.Session, error) {
	if s.session == nil {
		return nil, types.ErrNotAuthenticated
	}
	return s.session, nil
}

// SetSession sets the current session
func (s *Service) SetSession(session *types.Session) {
	s.session = session
}

// SaveSession saves session to file
func (s *Service) SaveSession(path string) error {
	if s.session == nil {
		return types.ErrNotAuthenticated
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	// The token is a bearer credential; keep it private to the user.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}

	if s.logger != nil {
		s.logger.Info("Session saved", "path", path)
	}

	return nil
}

// LoadSession loads session from file
func (s *Service) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ErrNotAuthenticated
		}
		return errors.Wrap(err, "failed to read session file")
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return errors.Wrap(err, "failed to unmarshal session")
	}

	if session.Expired() {
		return types.ErrSessionExpired
	}

	if session.DeviceUUID == "" {
		session.DeviceUUID = s.deviceUUID
	}
	s.session = &session

	if s.logger != nil {
		s.logger.Info("Session loaded", "path", path, "username", session.Username)
	}

	return nil
}

// ClearSession logs out and removes the session file
func (s *Service) ClearSession(path string) error {
	s.Logout()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	return nil
}

// loginResponse represents the login API response
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
