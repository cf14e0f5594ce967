package ledgerbook

import (
	"net/mail"
	"strings"
)

const minPasswordLength = 8

// Validate checks required registration fields
func (p *RegisterParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Username) == "" {
		errs.Add("username", "username is required", nil)
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		errs.Add("email", "a valid email is required", p.Email)
	}
	if len(p.Password) < minPasswordLength {
		errs.Add("password", "password must be at least 8 characters", nil)
	}
	return errs.Err()
}

// Validate checks the profile fields being changed
func (p *UpdateProfileParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.Email != nil {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			errs.Add("email", "a valid email is required", *p.Email)
		}
	}
	return errs.Err()
}

// Validate checks required ledger fields
func (p *CreateLedgerParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if !IsKnownCurrency(p.Currency) {
		errs.Add("currency", "currency must be a 3-letter ISO code", p.Currency)
	}
	return errs.Err()
}

// Validate checks the ledger fields being changed
func (p *UpdateLedgerParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.Add("name", "name cannot be empty", nil)
	}
	if p.Currency != nil && !IsKnownCurrency(*p.Currency) {
		errs.Add("currency", "currency must be a 3-letter ISO code", *p.Currency)
	}
	return errs.Err()
}

// Validate checks required account fields
func (p *CreateAccountParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if p.Type != AccountTypeAsset && p.Type != AccountTypeLiability {
		errs.Add("type", "type must be asset or liability", string(p.Type))
	}
	return errs.Err()
}

// Validate checks a new transaction, including split reconciliation
func (p *CreateTransactionParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.AccountID <= 0 {
		errs.Add("account_id", "account is required", p.AccountID)
	}
	if p.Type != TransactionTypeIncome && p.Type != TransactionTypeExpense {
		errs.Add("type", "type must be income or expense", string(p.Type))
	}
	if p.Amount <= 0 {
		errs.Add("amount", "amount must be greater than zero", p.Amount)
	}
	if p.Date.IsZero() {
		errs.Add("date", "date is required", nil)
	}
	if len(p.Splits) > 0 {
		reconcileSplits(errs, p.Amount, p.Splits)
	} else if p.CategoryID <= 0 {
		errs.Add("category_id", "category is required", p.CategoryID)
	}
	return errs.Err()
}

// Validate checks the transaction fields being changed. Splits are
// reconciled against the new amount, which must then be given.
func (p *UpdateTransactionParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.Type != nil && *p.Type != TransactionTypeIncome && *p.Type != TransactionTypeExpense {
		errs.Add("type", "type must be income or expense", string(*p.Type))
	}
	if p.Amount != nil && *p.Amount <= 0 {
		errs.Add("amount", "amount must be greater than zero", *p.Amount)
	}
	if p.Date != nil && p.Date.IsZero() {
		errs.Add("date", "date cannot be empty", nil)
	}
	if len(p.Splits) > 0 {
		if p.Amount == nil {
			errs.Add("amount", "amount is required when updating splits", nil)
		} else {
			reconcileSplits(errs, *p.Amount, p.Splits)
		}
	}
	return errs.Err()
}

// Validate checks a transfer. The accounts must differ unless the
// destination is another ledger.
func (p *TransferParams) Validate() error {
	return p.validate(0)
}

// validate checks a transfer posted to ledgerID
func (p *TransferParams) validate(ledgerID int) error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.SourceAccountID <= 0 {
		errs.Add("source_account_id", "source account is required", p.SourceAccountID)
	}
	if p.DestinationAccountID <= 0 {
		errs.Add("destination_account_id", "destination account is required", p.DestinationAccountID)
	}
	sameLedger := p.DestinationLedgerID == 0 || p.DestinationLedgerID == ledgerID
	if p.SourceAccountID > 0 && p.SourceAccountID == p.DestinationAccountID && sameLedger {
		errs.Add("destination_account_id", "source and destination accounts must differ", p.DestinationAccountID)
	}
	if p.SourceAmount <= 0 {
		errs.Add("source_amount", "amount must be greater than zero", p.SourceAmount)
	}
	if p.DestinationAmount < 0 {
		errs.Add("destination_amount", "amount must be greater than zero", p.DestinationAmount)
	}
	if p.Date.IsZero() {
		errs.Add("date", "date is required", nil)
	}
	return errs.Err()
}

// Validate checks required category fields
func (p *CreateCategoryParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if p.Type != CategoryTypeIncome && p.Type != CategoryTypeExpense {
		errs.Add("type", "type must be income or expense", string(p.Type))
	}
	if p.IsGroup && p.ParentID != nil {
		errs.Add("parent_id", "a group cannot have a parent", *p.ParentID)
	}
	return errs.Err()
}

// Validate checks required fund fields
func (p *CreateFundParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if p.AMCID <= 0 {
		errs.Add("amc_id", "AMC is required", p.AMCID)
	}
	return errs.Err()
}

// Validate checks a unit purchase or redemption. Charges are the server's
// business, so only positivity is enforced.
func (p *FundTradeParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.FundID <= 0 {
		errs.Add("mutual_fund_id", "fund is required", p.FundID)
	}
	if p.AccountID <= 0 {
		errs.Add("account_id", "account is required", p.AccountID)
	}
	if p.Units <= 0 {
		errs.Add("units", "units must be greater than zero", p.Units)
	}
	if p.NAV <= 0 {
		errs.Add("nav_per_unit", "NAV must be greater than zero", p.NAV)
	}
	if p.Amount <= 0 {
		errs.Add("total_amount", "amount must be greater than zero", p.Amount)
	}
	if p.Date.IsZero() {
		errs.Add("transaction_date", "date is required", nil)
	}
	return errs.Err()
}

// Validate checks a fund switch
func (p *SwitchParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.SourceFundID <= 0 {
		errs.Add("source_mutual_fund_id", "source fund is required", p.SourceFundID)
	}
	if p.TargetFundID <= 0 {
		errs.Add("target_mutual_fund_id", "target fund is required", p.TargetFundID)
	}
	if p.SourceFundID > 0 && p.SourceFundID == p.TargetFundID {
		errs.Add("target_mutual_fund_id", "source and target funds must differ", p.TargetFundID)
	}
	if p.UnitsToSwitch <= 0 {
		errs.Add("units_to_switch", "units must be greater than zero", p.UnitsToSwitch)
	}
	if p.SourceNAV <= 0 {
		errs.Add("source_nav_at_switch", "NAV must be greater than zero", p.SourceNAV)
	}
	if p.TargetUnits <= 0 {
		errs.Add("target_units_received", "units must be greater than zero", p.TargetUnits)
	}
	if p.TargetNAV <= 0 {
		errs.Add("target_nav_at_switch", "NAV must be greater than zero", p.TargetNAV)
	}
	if p.Date.IsZero() {
		errs.Add("transaction_date", "date is required", nil)
	}
	return errs.Err()
}

// Validate checks required asset type fields
func (p *CreateAssetTypeParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if strings.TrimSpace(p.Unit) == "" {
		errs.Add("unit_name", "unit is required", nil)
	}
	return errs.Err()
}

// Validate checks required asset fields
func (p *CreateAssetParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required", nil)
	}
	if p.AssetTypeID <= 0 {
		errs.Add("asset_type_id", "asset type is required", p.AssetTypeID)
	}
	return errs.Err()
}

// Validate checks a physical asset purchase or sale
func (p *AssetTradeParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		errs.Add("params", "params are required", nil)
		return errs
	}
	if p.AssetID <= 0 {
		errs.Add("physical_asset_id", "asset is required", p.AssetID)
	}
	if p.AccountID <= 0 {
		errs.Add("account_id", "account is required", p.AccountID)
	}
	if p.Quantity <= 0 {
		errs.Add("quantity", "quantity must be greater than zero", p.Quantity)
	}
	if p.PricePerUnit <= 0 {
		errs.Add("price_per_unit", "price must be greater than zero", p.PricePerUnit)
	}
	if p.Date.IsZero() {
		errs.Add("transaction_date", "date is required", nil)
	}
	return errs.Err()
}

// Validate checks a chart window
func (p *InsightParams) Validate() error {
	errs := &ValidationErrors{}
	if p == nil {
		return nil
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		errs.Add("end", "end must not be before start", formatDate(p.End))
	}
	switch p.Interval {
	case "", "day", "week", "month", "year":
	default:
		errs.Add("interval", "interval must be day, week, month or year", p.Interval)
	}
	if p.Type != "" && p.Type != TransactionTypeIncome && p.Type != TransactionTypeExpense {
		errs.Add("type", "type must be income or expense", string(p.Type))
	}
	return errs.Err()
}
