package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultPerPage = 50
	maxPerPage     = 100
)

// transactionService implements the TransactionService interface
type transactionService struct {
	client *Client
}

// Query returns a transaction query builder
func (s *transactionService) Query(ledgerID int) TransactionQueryBuilder {
	return &transactionQueryBuilder{
		client:   s.client,
		ledgerID: ledgerID,
		filters:  url.Values{},
		page:     1,
		perPage:  defaultPerPage,
	}
}

// Get retrieves a single transaction with its splits and tags
func (s *transactionService) Get(ctx context.Context, ledgerID, transactionID int) (*Transaction, error) {
	var txn Transaction
	if err := s.client.get(ctx, s.path(ledgerID, transactionID), nil, &txn); err != nil {
		return nil, errors.Wrapf(err, "failed to get transaction %d", transactionID)
	}
	return &txn, nil
}

// Create creates a new transaction
func (s *transactionService) Create(ctx context.Context, ledgerID int, params *CreateTransactionParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"account_id": params.AccountID,
		"type":       params.Type,
		"amount":     params.Amount,
		"date":       formatDate(params.Date),
		"notes":      params.Notes,
	}
	if len(params.Splits) > 0 {
		body["is_split"] = true
		body["splits"] = params.Splits
	} else {
		body["category_id"] = params.CategoryID
	}
	if len(params.TagIDs) > 0 {
		body["tag_ids"] = params.TagIDs
	}

	var txn Transaction
	err := s.client.send(ctx, http.MethodPost, ledgerPath(ledgerID, "transactions"), body, &txn,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}
	return &txn, nil
}

// Update updates an existing transaction. Only non-nil fields are sent.
func (s *transactionService) Update(ctx context.Context, ledgerID, transactionID int, params *UpdateTransactionParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{}
	if params.AccountID != nil {
		body["account_id"] = *params.AccountID
	}
	if params.CategoryID != nil {
		body["category_id"] = *params.CategoryID
	}
	if params.Type != nil {
		body["type"] = *params.Type
	}
	if params.Amount != nil {
		body["amount"] = *params.Amount
	}
	if params.Date != nil {
		body["date"] = formatDate(*params.Date)
	}
	if params.Notes != nil {
		body["notes"] = *params.Notes
	}
	if params.TagIDs != nil {
		body["tag_ids"] = params.TagIDs
	}
	if len(params.Splits) > 0 {
		body["is_split"] = true
		body["splits"] = params.Splits
	}

	var txn Transaction
	err := s.client.send(ctx, http.MethodPut, s.path(ledgerID, transactionID), body, &txn,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update transaction")
	}
	return &txn, nil
}

// Delete deletes a transaction. Deleting one leg of a transfer deletes both.
func (s *transactionService) Delete(ctx context.Context, ledgerID, transactionID int) error {
	err := s.client.send(ctx, http.MethodDelete, s.path(ledgerID, transactionID), nil, nil,
		s.scopes(ledgerID)...)
	if err != nil {
		return errors.Wrap(err, "failed to delete transaction")
	}
	return nil
}

// Transfer moves money between two accounts
func (s *transactionService) Transfer(ctx context.Context, ledgerID int, params *TransferParams) (*TransferDetails, error) {
	if err := params.validate(ledgerID); err != nil {
		return nil, err
	}

	// Same-currency transfers receive what was sent
	received := params.DestinationAmount
	if received == 0 {
		received = params.SourceAmount
	}

	body := map[string]interface{}{
		"source_account_id":      params.SourceAccountID,
		"destination_account_id": params.DestinationAccountID,
		"source_amount":          params.SourceAmount,
		"destination_amount":     received,
		"date":                   formatDate(params.Date),
		"notes":                  params.Notes,
	}

	scopes := s.scopes(ledgerID)
	if params.DestinationLedgerID > 0 {
		body["destination_ledger_id"] = params.DestinationLedgerID
		if params.DestinationLedgerID != ledgerID {
			scopes = append(scopes, s.scopes(params.DestinationLedgerID)...)
		}
	}

	var details TransferDetails
	err := s.client.send(ctx, http.MethodPost, ledgerPath(ledgerID, "transfers"), body, &details, scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transfer")
	}
	return &details, nil
}

// GetSplits retrieves transaction splits
func (s *transactionService) GetSplits(ctx context.Context, ledgerID, transactionID int) ([]*TransactionSplit, error) {
	var splits []*TransactionSplit
	path := ledgerPath(ledgerID, "transactions", strconv.Itoa(transactionID), "splits")
	if err := s.client.get(ctx, path, nil, &splits); err != nil {
		return nil, errors.Wrap(err, "failed to get transaction splits")
	}
	return splits, nil
}

// GetTransferDetails retrieves both legs of a transfer
func (s *transactionService) GetTransferDetails(ctx context.Context, ledgerID int, transferID string) (*TransferDetails, error) {
	if transferID == "" {
		return nil, &ValidationError{Field: "transfer_id", Message: "transfer id is required"}
	}

	var details TransferDetails
	path := ledgerPath(ledgerID, "transfers", url.PathEscape(transferID))
	if err := s.client.get(ctx, path, nil, &details); err != nil {
		return nil, errors.Wrap(err, "failed to get transfer details")
	}
	return &details, nil
}

func (s *transactionService) path(ledgerID, transactionID int) string {
	return ledgerPath(ledgerID, "transactions", strconv.Itoa(transactionID))
}

// scopes are the cached queries a transaction change makes stale
func (s *transactionService) scopes(ledgerID int) []string {
	return ledgerScopes(ledgerID, "transactions", "transfers", "accounts", "insights")
}

// transactionQueryBuilder implements TransactionQueryBuilder
type transactionQueryBuilder struct {
	client   *Client
	ledgerID int
	filters  url.Values
	page     int
	perPage  int
}

// Between sets date range filter. A zero bound is left open.
func (b *transactionQueryBuilder) Between(start, end time.Time) TransactionQueryBuilder {
	if !start.IsZero() {
		b.filters.Set("start_date", formatDate(start))
	}
	if !end.IsZero() {
		b.filters.Set("end_date", formatDate(end))
	}
	return b
}

// WithAccount filters by account
func (b *transactionQueryBuilder) WithAccount(accountID int) TransactionQueryBuilder {
	b.filters.Set("account_id", strconv.Itoa(accountID))
	return b
}

// WithCategory filters by category
func (b *transactionQueryBuilder) WithCategory(categoryID int) TransactionQueryBuilder {
	b.filters.Set("category_id", strconv.Itoa(categoryID))
	return b
}

// WithTags filters by tag IDs
func (b *transactionQueryBuilder) WithTags(tagIDs ...int) TransactionQueryBuilder {
	ids := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = strconv.Itoa(id)
	}
	b.filters.Set("tag_ids", strings.Join(ids, ","))
	return b
}

// WithType filters by transaction type
func (b *transactionQueryBuilder) WithType(txType TransactionType) TransactionQueryBuilder {
	b.filters.Set("type", string(txType))
	return b
}

// Search sets search filter
func (b *transactionQueryBuilder) Search(query string) TransactionQueryBuilder {
	b.filters.Set("search", query)
	return b
}

// Page selects the 1-based page
func (b *transactionQueryBuilder) Page(page int) TransactionQueryBuilder {
	if page < 1 {
		page = 1
	}
	b.page = page
	return b
}

// PerPage sets the page size, capped at 100
func (b *transactionQueryBuilder) PerPage(perPage int) TransactionQueryBuilder {
	switch {
	case perPage < 1:
		perPage = defaultPerPage
	case perPage > maxPerPage:
		perPage = maxPerPage
	}
	b.perPage = perPage
	return b
}

// Execute runs the query
func (b *transactionQueryBuilder) Execute(ctx context.Context) (*TransactionList, error) {
	query := url.Values{}
	for k, v := range b.filters {
		query[k] = v
	}
	query.Set("page", strconv.Itoa(b.page))
	query.Set("per_page", strconv.Itoa(b.perPage))

	var list TransactionList
	if err := b.client.get(ctx, ledgerPath(b.ledgerID, "transactions"), query, &list); err != nil {
		return nil, errors.Wrap(err, "failed to get transactions")
	}
	list.finish()
	return &list, nil
}

// Stream returns results as a channel, paging until exhausted
func (b *transactionQueryBuilder) Stream(ctx context.Context) (<-chan *Transaction, <-chan error) {
	txnChan := make(chan *Transaction)
	errChan := make(chan error, 1)

	go func() {
		defer close(txnChan)
		defer close(errChan)

		page := b.page
		for {
			pageBuilder := &transactionQueryBuilder{
				client:   b.client,
				ledgerID: b.ledgerID,
				filters:  b.filters,
				page:     page,
				perPage:  b.perPage,
			}

			result, err := pageBuilder.Execute(ctx)
			if err != nil {
				errChan <- err
				return
			}

			for _, txn := range result.Transactions {
				select {
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				case txnChan <- txn:
				}
			}

			if !result.HasMore || len(result.Transactions) == 0 {
				return
			}
			page = result.NextPage
		}
	}()

	return txnChan, errChan
}

// finish derives the paging fields the server leaves implicit
func (l *TransactionList) finish() {
	if l.Page < 1 {
		l.Page = 1
	}
	if l.TotalPages == 0 && l.PerPage > 0 {
		l.TotalPages = (l.Total + l.PerPage - 1) / l.PerPage
	}
	l.HasMore = l.Page < l.TotalPages
	if l.HasMore {
		l.NextPage = l.Page + 1
	}
}
