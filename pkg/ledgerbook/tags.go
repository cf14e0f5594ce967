package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// tagService implements the TagService interface
type tagService struct {
	client *Client
}

// Search returns tags whose name matches query
func (s *tagService) Search(ctx context.Context, query string) ([]*Tag, error) {
	var tags []*Tag
	if err := s.client.get(ctx, "/tags/search", url.Values{"query": {query}}, &tags); err != nil {
		return nil, errors.Wrap(err, "failed to search tags")
	}
	return tags, nil
}

// List retrieves all tags
func (s *tagService) List(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	if err := s.client.get(ctx, "/tags/list", nil, &tags); err != nil {
		return nil, errors.Wrap(err, "failed to get tags")
	}
	return tags, nil
}

// Create creates a new tag
func (s *tagService) Create(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var tag Tag
	if err := s.client.send(ctx, http.MethodPost, "/tags", map[string]string{"name": name}, &tag, "/tags/"); err != nil {
		return nil, errors.Wrap(err, "failed to create tag")
	}
	return &tag, nil
}

// Delete deletes a tag
func (s *tagService) Delete(ctx context.Context, tagID int) error {
	path := "/tags/" + strconv.Itoa(tagID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, "/tags/", "/ledger/"); err != nil {
		return errors.Wrap(err, "failed to delete tag")
	}
	return nil
}

// SetTransactionTags replaces the tags of a transaction. No IDs clears them.
func (s *tagService) SetTransactionTags(ctx context.Context, ledgerID, transactionID int, tagIDs ...int) error {
	if tagIDs == nil {
		tagIDs = []int{}
	}

	body := map[string]interface{}{
		"tag_ids": tagIDs,
	}
	path := ledgerPath(ledgerID, "transactions", strconv.Itoa(transactionID), "tags")
	if err := s.client.send(ctx, http.MethodPut, path, body, nil, ledgerScopes(ledgerID, "transactions")...); err != nil {
		return errors.Wrap(err, "failed to set transaction tags")
	}
	return nil
}
