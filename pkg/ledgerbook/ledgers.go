package ledgerbook

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	client *Client
}

// List retrieves every ledger of the user
func (s *ledgerService) List(ctx context.Context) ([]*Ledger, error) {
	var ledgers []*Ledger
	if err := s.client.get(ctx, "/ledger/list", nil, &ledgers); err != nil {
		return nil, errors.Wrap(err, "failed to list ledgers")
	}
	return ledgers, nil
}

// Get retrieves a single ledger
func (s *ledgerService) Get(ctx context.Context, ledgerID int) (*Ledger, error) {
	var ledger Ledger
	if err := s.client.get(ctx, ledgerPath(ledgerID), nil, &ledger); err != nil {
		return nil, errors.Wrapf(err, "failed to get ledger %d", ledgerID)
	}
	return &ledger, nil
}

// Create creates a new ledger
func (s *ledgerService) Create(ctx context.Context, params *CreateLedgerParams) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var ledger Ledger
	if err := s.client.send(ctx, http.MethodPost, "/ledger/create", params, &ledger, "/ledger/list"); err != nil {
		return nil, errors.Wrap(err, "failed to create ledger")
	}
	return &ledger, nil
}

// Update updates an existing ledger
func (s *ledgerService) Update(ctx context.Context, ledgerID int, params *UpdateLedgerParams) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var ledger Ledger
	err := s.client.send(ctx, http.MethodPut, ledgerPath(ledgerID), params, &ledger,
		"/ledger/list", ledgerPath(ledgerID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update ledger")
	}
	return &ledger, nil
}

// Delete deletes a ledger with everything in it
func (s *ledgerService) Delete(ctx context.Context, ledgerID int) error {
	err := s.client.send(ctx, http.MethodDelete, ledgerPath(ledgerID), nil, nil,
		"/ledger/list", ledgerPath(ledgerID))
	if err != nil {
		return errors.Wrap(err, "failed to delete ledger")
	}
	return nil
}
