package ledgerbook

import (
	"context"
	"net/http"
	"testing"

	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Me(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/user/me"), mock.Anything).
		Return(`{"id": 7, "username": "asha", "email": "asha@example.com", "full_name": "Asha R", "is_active": true}`, nil)

	user, err := client.Users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "asha", user.Username)
	assert.True(t, user.IsActive)
}

func TestUserService_UpdateProfile(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	bad := "not-an-email"
	_, err := client.Users.UpdateProfile(context.Background(), &UpdateProfileParams{Email: &bad})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	fullName := "Asha Rao"
	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/user/me"), mock.Anything).
		Return(`{"id": 7, "username": "asha", "full_name": "Asha Rao"}`, nil)

	user, err := client.Users.UpdateProfile(context.Background(), &UpdateProfileParams{FullName: &fullName})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.FullName)
	mockTransport.AssertNumberOfCalls(t, "Do", 1)
}

func TestUserService_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		field   string
	}{
		{name: "missing current", current: "", next: "longenough", field: "current_password"},
		{name: "too short", current: "oldpassword", next: "short", field: "new_password"},
		{name: "unchanged", current: "samepassword", next: "samepassword", field: "new_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(new(MockTransport))
			err := client.Users.ChangePassword(context.Background(), tt.current, tt.next)
			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.NotNil(t, verrs.Field(tt.field))
		})
	}

	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)
	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			body, ok := r.Body.(map[string]string)
			return ok && r.Path == "/user/change-password" &&
				body["current_password"] == "oldpassword" && body["new_password"] == "newpassword"
		}),
		mock.Anything,
	).Return(nil, nil)

	require.NoError(t, client.Users.ChangePassword(context.Background(), "oldpassword", "newpassword"))
	mockTransport.AssertExpectations(t)
}

func TestUserService_Delete_LogsOut(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)
	client.session = &Session{Token: "tok"}

	mockTransport.On("Do", mock.Anything, request(http.MethodDelete, "/user/me"), mock.Anything).Return(nil, nil)
	mockTransport.On("SetSession", mock.Anything).Return()

	require.NoError(t, client.Users.Delete(context.Background()))
	assert.Nil(t, client.GetSession())
	mockTransport.AssertExpectations(t)
}

func TestUserService_Admin(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/admin/users"), mock.Anything).
		Return(`[{"id": 1, "username": "admin", "is_admin": true}, {"id": 2, "username": "bob"}]`, nil)
	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			body, ok := r.Body.(map[string]interface{})
			return ok && r.Method == http.MethodPut && r.Path == "/admin/users/2" && body["is_active"] == false
		}),
		mock.Anything,
	).Return(`{"id": 2, "username": "bob", "is_active": false}`, nil)

	users, err := client.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.True(t, users[0].IsAdmin)

	user, err := client.Users.SetActive(context.Background(), 2, false)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	mockTransport.AssertExpectations(t)
}
