package ledgerbook

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-go/internal/cache"
	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTagService_List(t *testing.T) {
	// Setup
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/tags/list"), mock.Anything).
		Return(`[
			{"id": 1, "name": "Tax Deductible"},
			{"id": 2, "name": "Vacation"}
		]`, nil)

	// Execute
	tags, err := client.Tags.List(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, tags, 2)
	assert.Equal(t, "Tax Deductible", tags[0].Name)
	assert.Equal(t, 2, tags[1].ID)

	mockTransport.AssertExpectations(t)
}

func TestTagService_Search(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			return r.Path == "/tags/search" && r.Query.Get("query") == "vac"
		}),
		mock.Anything,
	).Return(`[{"id": 2, "name": "Vacation"}]`, nil)

	tags, err := client.Tags.Search(context.Background(), "vac")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Vacation", tags[0].Name)
	mockTransport.AssertExpectations(t)
}

func TestTagService_Create(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)
	client.cache = cache.New(0, time.Minute)
	client.cache.Set("/tags/list", []byte(`[]`))
	client.cache.Set("/tags/search?query=bu", []byte(`[]`))

	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			body, ok := r.Body.(map[string]string)
			return ok && r.Method == http.MethodPost && r.Path == "/tags" && body["name"] == "Business"
		}),
		mock.Anything,
	).Return(`{"id": 3, "name": "Business"}`, nil)

	tag, err := client.Tags.Create(context.Background(), "  Business ")
	require.NoError(t, err)
	assert.Equal(t, 3, tag.ID)

	_, ok := client.cache.Get("/tags/list")
	assert.False(t, ok)
	_, ok = client.cache.Get("/tags/search?query=bu")
	assert.False(t, ok)
	mockTransport.AssertExpectations(t)
}

func TestTagService_Create_Validation(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	_, err := client.Tags.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	mockTransport.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything)
}

func TestTagService_Delete(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodDelete, "/tags/4"), mock.Anything).Return(nil, nil)

	require.NoError(t, client.Tags.Delete(context.Background(), 4))
	mockTransport.AssertExpectations(t)
}

func TestTagService_SetTransactionTags(t *testing.T) {
	tests := []struct {
		name   string
		tagIDs []int
		want   []interface{}
	}{
		{name: "replace", tagIDs: []int{1, 2}, want: []interface{}{float64(1), float64(2)}},
		{name: "clear", tagIDs: nil, want: []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTransport := new(MockTransport)
			client := newTestClient(mockTransport)

			var sent map[string]interface{}
			mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/ledger/1/transactions/8/tags"), mock.Anything).
				Run(func(args mock.Arguments) {
					sent = bodyOf(t, args.Get(1).(*transport.Request))
				}).
				Return(nil, nil)

			err := client.Tags.SetTransactionTags(context.Background(), 1, 8, tt.tagIDs...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sent["tag_ids"])
		})
	}
}
