package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// accountService implements the AccountService interface
type accountService struct {
	client *Client
}

// List retrieves all accounts of a ledger
func (s *accountService) List(ctx context.Context, ledgerID int) ([]*Account, error) {
	var accounts []*Account
	if err := s.client.get(ctx, ledgerPath(ledgerID, "accounts"), nil, &accounts); err != nil {
		return nil, errors.Wrap(err, "failed to get accounts")
	}
	return accounts, nil
}

// Get retrieves a single account
func (s *accountService) Get(ctx context.Context, ledgerID, accountID int) (*Account, error) {
	var account Account
	path := ledgerPath(ledgerID, "accounts", strconv.Itoa(accountID))
	if err := s.client.get(ctx, path, nil, &account); err != nil {
		return nil, errors.Wrapf(err, "failed to get account %d", accountID)
	}
	return &account, nil
}

// Create creates a new account
func (s *accountService) Create(ctx context.Context, ledgerID int, params *CreateAccountParams) (*Account, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var account Account
	err := s.client.send(ctx, http.MethodPost, ledgerPath(ledgerID, "accounts"), params, &account,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create account")
	}
	return &account, nil
}

// Update updates an existing account
func (s *accountService) Update(ctx context.Context, ledgerID, accountID int, params *UpdateAccountParams) (*Account, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "params are required"}
	}
	if params.Name != nil && *params.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name cannot be empty"}
	}

	var account Account
	path := ledgerPath(ledgerID, "accounts", strconv.Itoa(accountID))
	if err := s.client.send(ctx, http.MethodPut, path, params, &account, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrap(err, "failed to update account")
	}
	return &account, nil
}

// Delete deletes an account and its transactions
func (s *accountService) Delete(ctx context.Context, ledgerID, accountID int) error {
	path := ledgerPath(ledgerID, "accounts", strconv.Itoa(accountID))
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, s.scopes(ledgerID)...); err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	return nil
}

// Transactions returns one page of the account's transactions
func (s *accountService) Transactions(ctx context.Context, ledgerID, accountID, page int) (*TransactionList, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": {strconv.Itoa(page)}}
	path := ledgerPath(ledgerID, "accounts", strconv.Itoa(accountID), "transactions")

	var list TransactionList
	if err := s.client.get(ctx, path, query, &list); err != nil {
		return nil, errors.Wrap(err, "failed to get account transactions")
	}
	list.finish()
	return &list, nil
}

// scopes are the cached queries an account change makes stale
func (s *accountService) scopes(ledgerID int) []string {
	return ledgerScopes(ledgerID, "accounts", "transactions", "insights")
}
