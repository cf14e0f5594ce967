package ledgerbook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// userService implements the UserService interface
type userService struct {
	client *Client
}

// Me returns the authenticated user
func (s *userService) Me(ctx context.Context) (*User, error) {
	var user User
	if err := s.client.get(ctx, "/user/me", nil, &user); err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}
	return &user, nil
}

// UpdateProfile updates the authenticated user's profile
func (s *userService) UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var user User
	if err := s.client.send(ctx, http.MethodPut, "/user/me", params, &user, "/user/"); err != nil {
		return nil, errors.Wrap(err, "failed to update profile")
	}
	return &user, nil
}

// ChangePassword changes the authenticated user's password
func (s *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	errs := &ValidationErrors{}
	if currentPassword == "" {
		errs.Add("current_password", "current password is required", nil)
	}
	if len(newPassword) < minPasswordLength {
		errs.Add("new_password", "password must be at least 8 characters", nil)
	} else if newPassword == currentPassword {
		errs.Add("new_password", "new password must differ from the current one", nil)
	}
	if err := errs.Err(); err != nil {
		return err
	}

	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	if err := s.client.send(ctx, http.MethodPost, "/user/change-password", body, nil); err != nil {
		return errors.Wrap(err, "failed to change password")
	}
	return nil
}

// Delete removes the authenticated user's account and drops the session
func (s *userService) Delete(ctx context.Context) error {
	if err := s.client.send(ctx, http.MethodDelete, "/user/me", nil, nil); err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return s.client.Auth.Logout()
}

// List returns every user
func (s *userService) List(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := s.client.get(ctx, "/admin/users", nil, &users); err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}

// SetActive enables or disables a user
func (s *userService) SetActive(ctx context.Context, userID int, active bool) (*User, error) {
	body := map[string]interface{}{
		"is_active": active,
	}

	var user User
	path := fmt.Sprintf("/admin/users/%d", userID)
	if err := s.client.send(ctx, http.MethodPut, path, body, &user, "/admin/users"); err != nil {
		return nil, errors.Wrap(err, "failed to update user status")
	}
	return &user, nil
}
