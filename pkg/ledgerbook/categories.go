package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	client *Client
}

// List retrieves categories
func (s *categoryService) List(ctx context.Context, params *CategoryListParams) ([]*Category, error) {
	query := url.Values{}
	if params != nil {
		if params.IgnoreGroup {
			query.Set("ignore_group", "true")
		}
		if params.Type != "" {
			query.Set("type", string(params.Type))
		}
	}

	var categories []*Category
	if err := s.client.get(ctx, "/category/list", query, &categories); err != nil {
		return nil, errors.Wrap(err, "failed to get categories")
	}
	return categories, nil
}

// Create creates a new category or category group
func (s *categoryService) Create(ctx context.Context, params *CreateCategoryParams) (*Category, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var category Category
	if err := s.client.send(ctx, http.MethodPost, "/category", params, &category, "/category/"); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}
	return &category, nil
}

// Update renames or moves a category
func (s *categoryService) Update(ctx context.Context, categoryID int, params *UpdateCategoryParams) (*Category, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "params are required"}
	}
	if params.Name != nil && *params.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name cannot be empty"}
	}

	var category Category
	path := "/category/" + strconv.Itoa(categoryID)
	if err := s.client.send(ctx, http.MethodPut, path, params, &category, "/category/"); err != nil {
		return nil, errors.Wrap(err, "failed to update category")
	}
	return &category, nil
}

// Delete deletes a category
func (s *categoryService) Delete(ctx context.Context, categoryID int) error {
	path := "/category/" + strconv.Itoa(categoryID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, "/category/"); err != nil {
		return errors.Wrap(err, "failed to delete category")
	}
	return nil
}

// FlatCategory is a leaf category with the names of its groups
type FlatCategory struct {
	*Category
	Path string
}

// Flatten walks a category tree and returns its leaves in order, each with
// a "Group / Category" path for pickers
func Flatten(tree []*Category) []FlatCategory {
	var out []FlatCategory
	var walk func(nodes []*Category, prefix string)
	walk = func(nodes []*Category, prefix string) {
		for _, c := range nodes {
			path := c.Name
			if prefix != "" {
				path = prefix + " / " + c.Name
			}
			if c.IsGroup || len(c.Children) > 0 {
				walk(c.Children, path)
				continue
			}
			out = append(out, FlatCategory{Category: c, Path: path})
		}
	}
	walk(tree, "")
	return out
}
