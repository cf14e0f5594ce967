package ledgerbook

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-go/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_List(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/ledger/list"), mock.Anything).
		Return(`[
			{"id": 1, "name": "Household", "currency": "INR", "created_at": "2024-01-02T09:00:00"},
			{"id": 2, "name": "Travel", "currency": "EUR"}
		]`, nil)

	ledgers, err := client.Ledgers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ledgers, 2)
	assert.Equal(t, "Household", ledgers[0].Name)
	assert.Equal(t, "INR", ledgers[0].Currency)
	require.NotNil(t, ledgers[0].CreatedAt)
	assert.Equal(t, 2024, ledgers[0].CreatedAt.Year())
	assert.Nil(t, ledgers[1].CreatedAt)
}

func TestLedgerService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params *CreateLedgerParams
		fields []string
	}{
		{
			name:   "nil params",
			params: nil,
			fields: []string{"params"},
		},
		{
			name:   "missing name",
			params: &CreateLedgerParams{Currency: "USD"},
			fields: []string{"name"},
		},
		{
			name:   "unknown currency",
			params: &CreateLedgerParams{Name: "Home", Currency: "XYZ"},
			fields: []string{"currency"},
		},
		{
			name:   "lowercase currency",
			params: &CreateLedgerParams{Name: "Home", Currency: "usd"},
			fields: []string{"currency"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTransport := new(MockTransport)
			client := newTestClient(mockTransport)

			_, err := client.Ledgers.Create(context.Background(), tt.params)
			require.Error(t, err)

			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, field := range tt.fields {
				assert.NotNil(t, verrs.Field(field), field)
			}
			mockTransport.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLedgerService_UpdateAndDelete(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/ledger/3"), mock.Anything).
		Return(`{"id": 3, "name": "Renamed", "currency": "GBP"}`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodDelete, "/ledger/3"), mock.Anything).
		Return(nil, nil)

	name := "Renamed"
	ledger, err := client.Ledgers.Update(context.Background(), 3, &UpdateLedgerParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", ledger.Name)

	require.NoError(t, client.Ledgers.Delete(context.Background(), 3))
	mockTransport.AssertExpectations(t)
}

func TestLedgerService_Update_LeavesOtherLedgersCached(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)
	client.cache = cache.New(0, time.Minute)
	client.cache.Set("/ledger/1", []byte(`{}`))
	client.cache.Set("/ledger/1/accounts", []byte(`[]`))
	client.cache.Set("/ledger/10", []byte(`{}`))
	client.cache.Set("/ledger/10/accounts", []byte(`[]`))

	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/ledger/1"), mock.Anything).
		Return(`{"id": 1, "name": "Home", "currency": "INR"}`, nil)

	name := "Home"
	_, err := client.Ledgers.Update(context.Background(), 1, &UpdateLedgerParams{Name: &name})
	require.NoError(t, err)

	for key, want := range map[string]bool{
		"/ledger/1":           false,
		"/ledger/1/accounts":  false,
		"/ledger/10":          true,
		"/ledger/10/accounts": true,
	} {
		_, ok := client.cache.Get(key)
		assert.Equal(t, want, ok, key)
	}
}

func TestLedgerService_Get_ServerError(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	apiErr := &Error{Code: "SERVER_ERROR", Message: "Internal Server Error", StatusCode: 500, Err: ErrServerError}
	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/ledger/9"), mock.Anything).
		Return(nil, apiErr)

	_, err := client.Ledgers.Get(context.Background(), 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "failed to get ledger 9")
}
