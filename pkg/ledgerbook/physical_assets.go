package ledgerbook

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// physicalAssetService implements the PhysicalAssetService interface
type physicalAssetService struct {
	client *Client
}

// ListTypes retrieves the asset types
func (s *physicalAssetService) ListTypes(ctx context.Context) ([]*AssetType, error) {
	var types []*AssetType
	if err := s.client.get(ctx, "/asset-types", nil, &types); err != nil {
		return nil, errors.Wrap(err, "failed to list asset types")
	}
	return types, nil
}

// CreateType creates an asset type
func (s *physicalAssetService) CreateType(ctx context.Context, params *CreateAssetTypeParams) (*AssetType, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var assetType AssetType
	if err := s.client.send(ctx, http.MethodPost, "/asset-types", params, &assetType, "/asset-types"); err != nil {
		return nil, errors.Wrap(err, "failed to create asset type")
	}
	return &assetType, nil
}

// DeleteType deletes an asset type
func (s *physicalAssetService) DeleteType(ctx context.Context, typeID int) error {
	path := "/asset-types/" + strconv.Itoa(typeID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, "/asset-types"); err != nil {
		return errors.Wrap(err, "failed to delete asset type")
	}
	return nil
}

// List retrieves the assets held in a ledger
func (s *physicalAssetService) List(ctx context.Context, ledgerID int) ([]*PhysicalAsset, error) {
	var assets []*PhysicalAsset
	if err := s.client.get(ctx, ledgerPath(ledgerID, "physical-assets"), nil, &assets); err != nil {
		return nil, errors.Wrap(err, "failed to list physical assets")
	}
	return assets, nil
}

// Get retrieves a single asset
func (s *physicalAssetService) Get(ctx context.Context, ledgerID, assetID int) (*PhysicalAsset, error) {
	var asset PhysicalAsset
	if err := s.client.get(ctx, s.assetPath(ledgerID, assetID), nil, &asset); err != nil {
		return nil, errors.Wrapf(err, "failed to get physical asset %d", assetID)
	}
	return &asset, nil
}

// Create adds an asset to a ledger
func (s *physicalAssetService) Create(ctx context.Context, ledgerID int, params *CreateAssetParams) (*PhysicalAsset, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var asset PhysicalAsset
	err := s.client.send(ctx, http.MethodPost, ledgerPath(ledgerID, "physical-assets"), params, &asset,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create physical asset")
	}
	return &asset, nil
}

// Update updates an asset
func (s *physicalAssetService) Update(ctx context.Context, ledgerID, assetID int, params *UpdateAssetParams) (*PhysicalAsset, error) {
	if params == nil {
		return nil, &ValidationError{Field: "params", Message: "params are required"}
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name cannot be empty"}
	}

	var asset PhysicalAsset
	err := s.client.send(ctx, http.MethodPut, s.assetPath(ledgerID, assetID), params, &asset,
		s.scopes(ledgerID)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update physical asset")
	}
	return &asset, nil
}

// Delete removes an asset and its transactions
func (s *physicalAssetService) Delete(ctx context.Context, ledgerID, assetID int) error {
	err := s.client.send(ctx, http.MethodDelete, s.assetPath(ledgerID, assetID), nil, nil,
		s.scopes(ledgerID)...)
	if err != nil {
		return errors.Wrap(err, "failed to delete physical asset")
	}
	return nil
}

// UpdatePrice records the latest price per unit
func (s *physicalAssetService) UpdatePrice(ctx context.Context, ledgerID, assetID int, pricePerUnit float64, date time.Time) (*PhysicalAsset, error) {
	if pricePerUnit <= 0 {
		return nil, &ValidationError{Field: "latest_price_per_unit", Message: "price must be greater than zero", Value: pricePerUnit}
	}
	if date.IsZero() {
		date = time.Now()
	}

	body := map[string]interface{}{
		"latest_price_per_unit": pricePerUnit,
		"last_price_update":     formatDate(date),
	}

	var asset PhysicalAsset
	path := s.assetPath(ledgerID, assetID) + "/price"
	if err := s.client.send(ctx, http.MethodPut, path, body, &asset, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrap(err, "failed to update price")
	}
	return &asset, nil
}

// ListTransactions lists purchases and sales, optionally for one asset
func (s *physicalAssetService) ListTransactions(ctx context.Context, ledgerID, assetID int) ([]*AssetTransaction, error) {
	var query url.Values
	if assetID > 0 {
		query = url.Values{"physical_asset_id": {strconv.Itoa(assetID)}}
	}

	var txns []*AssetTransaction
	if err := s.client.get(ctx, ledgerPath(ledgerID, "asset-transactions"), query, &txns); err != nil {
		return nil, errors.Wrap(err, "failed to list asset transactions")
	}
	return txns, nil
}

// Buy records a purchase, debiting the account
func (s *physicalAssetService) Buy(ctx context.Context, ledgerID int, params *AssetTradeParams) (*AssetTransaction, error) {
	return s.trade(ctx, ledgerID, "buy", params)
}

// Sell records a sale, crediting the account
func (s *physicalAssetService) Sell(ctx context.Context, ledgerID int, params *AssetTradeParams) (*AssetTransaction, error) {
	return s.trade(ctx, ledgerID, "sell", params)
}

func (s *physicalAssetService) trade(ctx context.Context, ledgerID int, side string, params *AssetTradeParams) (*AssetTransaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(params.Quantity).Mul(decimal.NewFromFloat(params.PricePerUnit)).Round(2)
	body := map[string]interface{}{
		"physical_asset_id": params.AssetID,
		"account_id":        params.AccountID,
		"quantity":          params.Quantity,
		"price_per_unit":    params.PricePerUnit,
		"total_amount":      total.InexactFloat64(),
		"transaction_date":  formatDate(params.Date),
		"notes":             params.Notes,
	}

	var txn AssetTransaction
	path := ledgerPath(ledgerID, "asset-transactions", side)
	if err := s.client.send(ctx, http.MethodPost, path, body, &txn, s.scopes(ledgerID)...); err != nil {
		return nil, errors.Wrapf(err, "failed to %s asset", side)
	}
	return &txn, nil
}

// DeleteTransaction deletes a purchase or sale and its linked account entry
func (s *physicalAssetService) DeleteTransaction(ctx context.Context, ledgerID, txID int) error {
	path := ledgerPath(ledgerID, "asset-transactions", strconv.Itoa(txID))
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, s.scopes(ledgerID)...); err != nil {
		return errors.Wrap(err, "failed to delete asset transaction")
	}
	return nil
}

func (s *physicalAssetService) assetPath(ledgerID, assetID int) string {
	return ledgerPath(ledgerID, "physical-assets", strconv.Itoa(assetID))
}

func (s *physicalAssetService) scopes(ledgerID int) []string {
	return ledgerScopes(ledgerID, "physical-assets", "asset-transactions", "accounts", "transactions", "insights")
}

// AssetSummary groups physical assets by asset type
type AssetSummary struct {
	Groups []HoldingSummary
	Total  HoldingSummary
}

// SummarizeAssets totals assets per asset type, sorted by type name.
// Invested is the cost basis, quantity times average cost.
func SummarizeAssets(assets []*PhysicalAsset) AssetSummary {
	byType := map[string]*HoldingSummary{}
	total := HoldingSummary{Name: "Total"}

	for _, a := range assets {
		name := "Type " + strconv.Itoa(a.AssetTypeID)
		if a.AssetType != nil && a.AssetType.Name != "" {
			name = a.AssetType.Name
		}
		g, ok := byType[name]
		if !ok {
			g = &HoldingSummary{Name: name}
			byType[name] = g
		}
		quantity := decimal.NewFromFloat(a.TotalQuantity)
		invested := quantity.Mul(decimal.NewFromFloat(a.AverageCostPerUnit)).Round(2)
		value := decimal.NewFromFloat(a.CurrentValue)
		for _, h := range []*HoldingSummary{g, &total} {
			h.Holdings++
			h.Invested = h.Invested.Add(invested)
			h.CurrentValue = h.CurrentValue.Add(value)
			h.UnrealizedGain = h.UnrealizedGain.Add(value.Sub(invested))
		}
	}

	return AssetSummary{Groups: sortedGroups(byType), Total: total}
}
