package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// mutualFundService implements the MutualFundService interface
type mutualFundService struct {
	client *Client
}

// ListAMCs retrieves every Asset Management Company
func (s *mutualFundService) ListAMCs(ctx context.Context) ([]*AMC, error) {
	var amcs []*AMC
	if err := s.client.get(ctx, "/amc/list", nil, &amcs); err != nil {
		return nil, errors.Wrap(err, "failed to list AMCs")
	}
	return amcs, nil
}

// CreateAMC creates an Asset Management Company
func (s *mutualFundService) CreateAMC(ctx context.Context, name, notes string) (*AMC, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var amc AMC
	body := map[string]string{"name": name, "notes": notes}
	if err := s.client.send(ctx, http.MethodPost, "/amc", body, &amc, "/amc/"); err != nil {
		return nil, errors.Wrap(err, "failed to create AMC")
	}
	return &amc, nil
}

// UpdateAMC renames an Asset Management Company
func (s *mutualFundService) UpdateAMC(ctx context.Context, amcID int, name, notes string) (*AMC, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var amc AMC
	body := map[string]string{"name": name, "notes": notes}
	path := "/amc/" + strconv.Itoa(amcID)
	if err := s.client.send(ctx, http.MethodPut, path, body, &amc, "/amc/", "/ledger/"); err != nil {
		return nil, errors.Wrap(err, "failed to update AMC")
	}
	return &amc, nil
}

// DeleteAMC deletes an Asset Management Company
func (s *mutualFundService) DeleteAMC(ctx context.Context, amcID int) error {
	path := "/amc/" + strconv.Itoa(amcID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, "/amc/"); err != nil {
		return errors.Wrap(err, "failed to delete AMC")
	}
	return nil
}

// List retrieves the funds held in a ledger
func (s *mutualFundService) List(ctx context.Context, ledgerID int) ([]*MutualFund, error) {
	var funds []*MutualFund
	if err := s.client.get(ctx, ledgerPath(ledgerID, "mutual-funds"), nil, &funds); err != nil {
		return nil, errors.Wrap(err, "failed to list mutual funds")
	}
	return funds, nil
}

// Get retrieves a single fund
func (s *mutualFundService) Get(ctx context.Context, ledgerID, fundID int) (*MutualFund, error) {
	var fund MutualFund
	if err := s.client.get(ctx, s.fundPath(ledgerID, fundID), nil, &fund); err != nil {
		return nil, errors.Wrapf(err, "failed to get mutual fund %d", fundID)
	}
	return &fund, nil
}

// Create adds a fund to a ledger
func (s *mutualFundService) Create(ctx context.Context, ledgerID int, params *CreateFundParams) (*MutualFund, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var fund MutualFund
	err := s.client.send(ctx, http.MethodPost, ledgerPath(ledgerID, "mutual-funds"), params, &fund,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mutual fund")
	}
	return &fund, nil
}

// Update updates a fund
func (s *mutualFundService) Update(ctx context.Context, ledgerID, fundID int, params *UpdateFundParams) (*MutualFund, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "params are required"}
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name cannot be empty"}
	}

	var fund MutualFund
	err := s.client.send(ctx, http.MethodPut, s.fundPath(ledgerID, fundID), params, &fund,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update mutual fund")
	}
	return &fund, nil
}

// Delete removes a fund and its transactions
func (s *mutualFundService) Delete(ctx context.Context, ledgerID, fundID int) error {
	err := s.client.send(ctx, http.MethodDelete, s.fundPath(ledgerID, fundID), nil, nil,
		s.scopes(ledgerID)...)
	if err != nil {
		return errors.Wrap(err, "failed to delete mutual fund")
	}
	return nil
}

// UpdateNAV records the latest NAV of a fund
func (s *mutualFundService) UpdateNAV(ctx context.Context, ledgerID, fundID int, nav float64, date time.Time) (*MutualFund, error) {
	if nav <= 0 {
		return nil, &ValidationError{Field: "latest_nav", Message: "NAV must be greater than zero", Value: nav}
	}
	if date.IsZero() {
		date = time.Now()
	}

	body := map[string]interface{}{
		"latest_nav":      nav,
		"last_nav_update": formatDate(date),
	}

	var fund MutualFund
	path := s.fundPath(ledgerID, fundID) + "/nav"
	if err := s.client.send(ctx, http.MethodPut, path, body, &fund, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrap(err, "failed to update NAV")
	}
	return &fund, nil
}

// ListTransactions lists unit transactions, optionally for one fund
func (s *mutualFundService) ListTransactions(ctx context.Context, ledgerID, fundID int) ([]*MfTransaction, error) {
	var query url.Values
	if fundID > 0 {
		query = url.Values{"mutual_fund_id": {strconv.Itoa(fundID)}}
	}

	var txns []*MfTransaction
	if err := s.client.get(ctx, ledgerPath(ledgerID, "mf-transactions"), query, &txns); err != nil {
		return nil, errors.Wrap(err, "failed to list mutual fund transactions")
	}
	return txns, nil
}

// Buy purchases units, debiting the account
func (s *mutualFundService) Buy(ctx context.Context, ledgerID int, params *FundTradeParams) (*MfTransaction, error) {
	return s.trade(ctx, ledgerID, "buy", params)
}

// Sell redeems units, crediting the account
func (s *mutualFundService) Sell(ctx context.Context, ledgerID int, params *FundTradeParams) (*MfTransaction, error) {
	return s.trade(ctx, ledgerID, "sell", params)
}

func (s *mutualFundService) trade(ctx context.Context, ledgerID int, side string, params *FundTradeParams) (*MfTransaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"mutual_fund_id":   params.FundID,
		"account_id":       params.AccountID,
		"units":            params.Units,
		"nav_per_unit":     params.NAV,
		"total_amount":     params.Amount,
		"transaction_date": formatDate(params.Date),
		"notes":            params.Notes,
	}

	var txn MfTransaction
	path := ledgerPath(ledgerID, "mf-transactions", side)
	if err := s.client.send(ctx, http.MethodPost, path, body, &txn, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrapf(err, "failed to %s units", side)
	}
	return &txn, nil
}

// Switch moves units from one fund to another and returns both legs
func (s *mutualFundService) Switch(ctx context.Context, ledgerID int, params *SwitchParams) ([]*MfTransaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"source_mutual_fund_id": params.SourceFundID,
		"target_mutual_fund_id": params.TargetFundID,
		"units_to_switch":       params.UnitsToSwitch,
		"source_nav_at_switch":  params.SourceNAV,
		"target_units_received": params.TargetUnits,
		"target_nav_at_switch":  params.TargetNAV,
		"transaction_date":      formatDate(params.Date),
		"notes":                 params.Notes,
	}

	var legs []*MfTransaction
	path := ledgerPath(ledgerID, "mf-transactions", "switch")
	if err := s.client.send(ctx, http.MethodPost, path, body, &legs, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrap(err, "failed to switch units")
	}
	return legs, nil
}

// UpdateTransaction edits the notes or date of a unit transaction
func (s *mutualFundService) UpdateTransaction(ctx context.Context, ledgerID, txID int, params *UpdateMfTransactionParams) (*MfTransaction, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "params are required"}
	}

	body := map[string]interface{}{}
	if params.Date != nil {
		body["transaction_date"] = formatDate(*params.Date)
	}
	if params.Notes != nil {
		body["notes"] = *params.Notes
	}

	var txn MfTransaction
	path := ledgerPath(ledgerID, "mf-transactions", strconv.Itoa(txID))
	if err := s.client.send(ctx, http.MethodPut, path, body, &txn, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrap(err, "failed to update mutual fund transaction")
	}
	return &txn, nil
}

// DeleteTransaction deletes a unit transaction and its linked account entry
func (s *mutualFundService) DeleteTransaction(ctx context.Context, ledgerID, txID int) error {
	path := ledgerPath(ledgerID, "mf-transactions", strconv.Itoa(txID))
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, s.scopes(ledgerID)...); err != nil {
		return errors.Wrap(err, "failed to delete mutual fund transaction")
	}
	return nil
}

func (s *mutualFundService) fundPath(ledgerID, fundID int) string {
	return ledgerPath(ledgerID, "mutual-funds", strconv.Itoa(fundID))
}

// scopes are the cached queries a fund change makes stale. Trades also post
// to accounts.
func (s *mutualFundService) scopes(ledgerID int) []string {
	return ledgerScopes(ledgerID, "mutual-funds", "mf-transactions", "accounts", "transactions", "insights")
}

// HoldingSummary totals a group of holdings
type HoldingSummary struct {
	Name           string
	Holdings       int
	Invested       decimal.Decimal
	CurrentValue   decimal.Decimal
	UnrealizedGain decimal.Decimal
	RealizedGain   decimal.Decimal
}

// GainPercent is the unrealized gain relative to the invested amount
func (h HoldingSummary) GainPercent() decimal.Decimal {
	if h.Invested.IsZero() {
		return decimal.Zero
	}
	return h.UnrealizedGain.Div(h.Invested).Mul(decimal.NewFromInt(100)).Round(2)
}

// PortfolioSummary groups mutual funds by AMC
type PortfolioSummary struct {
	Groups []HoldingSummary
	Total  HoldingSummary
}

// SummarizeFunds totals funds per AMC with exact arithmetic, sorted by AMC name
func SummarizeFunds(funds []*MutualFund) PortfolioSummary {
	byAMC := map[string]*HoldingSummary{}
	total := HoldingSummary{Name: "Total"}

	for _, f := range funds {
		name := f.AMCName
		if name == "" {
			name = "AMC " + strconv.Itoa(f.AMCID)
		}
		g, ok := byAMC[name]
		if !ok {
			g = &HoldingSummary{Name: name}
			byAMC[name] = g
		}
		invested := decimal.NewFromFloat(f.InvestedAmount)
		value := decimal.NewFromFloat(f.CurrentValue)
		realized := decimal.NewFromFloat(f.RealizedGain)
		for _, h := range []*HoldingSummary{g, &total} {
			h.Holdings++
			h.Invested = h.Invested.Add(invested)
			h.CurrentValue = h.CurrentValue.Add(value)
			h.UnrealizedGain = h.UnrealizedGain.Add(value.Sub(invested))
			h.RealizedGain = h.RealizedGain.Add(realized)
		}
	}

	return PortfolioSummary{Groups: sortedGroups(byAMC), Total: total}
}

func sortedGroups(groups map[string]*HoldingSummary) []HoldingSummary {
	out := make([]HoldingSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
