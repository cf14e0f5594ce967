package ledgerbook

import (
	"time"
)

// TransactionType classifies a transaction
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// AccountType is either an asset or a liability
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
)

// CategoryType mirrors the income/expense split of categories
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// User represents an API user
type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	IsActive  bool       `json:"is_active"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// Ledger is a named collection of accounts and transactions belonging to a user
type Ledger struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Currency    string     `json:"currency"`
	Description string     `json:"description"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

// Account represents an account inside a ledger
type Account struct {
	ID             int         `json:"id"`
	LedgerID       int         `json:"ledger_id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Description    string      `json:"description"`
	OpeningBalance float64     `json:"opening_balance"`
	Balance        float64     `json:"balance"`
	TotalCredit    float64     `json:"total_credit"`
	TotalDebit     float64     `json:"total_debit"`
	CreatedAt      *Timestamp  `json:"created_at,omitempty"`
}

// Transaction represents a posted transaction
type Transaction struct {
	ID           int                 `json:"id"`
	LedgerID     int                 `json:"ledger_id"`
	AccountID    int                 `json:"account_id"`
	AccountName  string              `json:"account_name,omitempty"`
	CategoryID   *int                `json:"category_id"`
	CategoryName string              `json:"category_name,omitempty"`
	Type         TransactionType     `json:"type"`
	Amount       float64             `json:"amount"`
	Date         Date                `json:"date"`
	Notes        string              `json:"notes"`
	IsSplit      bool                `json:"is_split"`
	IsTransfer   bool                `json:"is_transfer"`
	TransferID   string              `json:"transfer_id,omitempty"`
	Tags         []*Tag              `json:"tags"`
	Splits       []*TransactionSplit `json:"splits,omitempty"`
	CreatedAt    *Timestamp          `json:"created_at,omitempty"`
	UpdatedAt    *Timestamp          `json:"updated_at,omitempty"`
}

// TransactionSplit is one category allocation of a split transaction
type TransactionSplit struct {
	ID            int     `json:"id"`
	TransactionID int     `json:"transaction_id"`
	CategoryID    int     `json:"category_id"`
	CategoryName  string  `json:"category_name,omitempty"`
	Amount        float64 `json:"amount"`
	Notes         string  `json:"notes,omitempty"`
}

// SplitInput is the wire shape of a split sent on create or update
type SplitInput struct {
	CategoryID int     `json:"category_id"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes,omitempty"`
}

// TransactionList is one page of transactions
type TransactionList struct {
	Transactions []*Transaction `json:"items"`
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	TotalPages   int            `json:"total_pages"`
	HasMore      bool           `json:"-"`
	NextPage     int            `json:"-"`
}

// TransferDetails links the two legs of a transfer
type TransferDetails struct {
	TransferID             string       `json:"transfer_id"`
	SourceTransaction      *Transaction `json:"source_transaction"`
	DestinationTransaction *Transaction `json:"destination_transaction"`
	SourceLedgerID         int          `json:"source_ledger_id"`
	DestinationLedgerID    int          `json:"destination_ledger_id"`
}

// Category is a transaction category; groups hold child categories
type Category struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Type     CategoryType `json:"type"`
	IsGroup  bool         `json:"is_group"`
	ParentID *int         `json:"parent_id"`
	Children []*Category  `json:"children,omitempty"`
}

// Tag labels transactions
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AMC is an Asset Management Company grouping mutual funds
type AMC struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// MutualFund is a fund position held in a ledger
type MutualFund struct {
	ID                 int     `json:"id"`
	LedgerID           int     `json:"ledger_id"`
	AMCID              int     `json:"amc_id"`
	AMCName            string  `json:"amc_name,omitempty"`
	Name               string  `json:"name"`
	Code               string  `json:"code,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	TotalUnits         float64 `json:"total_units"`
	InvestedAmount     float64 `json:"invested_amount"`
	AverageCostPerUnit float64 `json:"average_cost_per_unit"`
	LatestNAV          float64 `json:"latest_nav"`
	LastNAVUpdate      Date    `json:"last_nav_update"`
	CurrentValue       float64 `json:"current_value"`
	UnrealizedGain     float64 `json:"unrealized_gain"`
	RealizedGain       float64 `json:"realized_gain"`
}

// MfTransactionType is the kind of mutual-fund transaction
type MfTransactionType string

const (
	MfTransactionBuy       MfTransactionType = "buy"
	MfTransactionSell      MfTransactionType = "sell"
	MfTransactionSwitchOut MfTransactionType = "switch_out"
	MfTransactionSwitchIn  MfTransactionType = "switch_in"
)

// MfTransaction is a unit purchase, redemption or switch leg
type MfTransaction struct {
	ID           int               `json:"id"`
	FundID       int               `json:"mutual_fund_id"`
	FundName     string            `json:"mutual_fund_name,omitempty"`
	AccountID    *int              `json:"account_id"`
	Type         MfTransactionType `json:"transaction_type"`
	Units        float64           `json:"units"`
	NAV          float64           `json:"nav_per_unit"`
	Amount       float64           `json:"total_amount"`
	Date         Date              `json:"transaction_date"`
	Notes        string            `json:"notes,omitempty"`
	RealizedGain *float64          `json:"realized_gain,omitempty"`
	CostBasis    *float64          `json:"cost_basis_of_units_sold,omitempty"`
}

// AssetType describes a physical asset class such as gold or silver
type AssetType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Unit        string `json:"unit_name"`
	UnitSymbol  string `json:"unit_symbol,omitempty"`
	Description string `json:"description,omitempty"`
}

// PhysicalAsset is a holding of a physical asset type in a ledger
type PhysicalAsset struct {
	ID                 int        `json:"id"`
	LedgerID           int        `json:"ledger_id"`
	AssetTypeID        int        `json:"asset_type_id"`
	AssetType          *AssetType `json:"asset_type,omitempty"`
	Name               string     `json:"name"`
	Notes              string     `json:"notes,omitempty"`
	TotalQuantity      float64    `json:"total_quantity"`
	AverageCostPerUnit float64    `json:"average_cost_per_unit"`
	LatestPricePerUnit float64    `json:"latest_price_per_unit"`
	LastPriceUpdate    Date       `json:"last_price_update"`
	CurrentValue       float64    `json:"current_value"`
	UnrealizedGain     float64    `json:"unrealized_gain"`
}

// AssetTransactionType is buy or sell
type AssetTransactionType string

const (
	AssetTransactionBuy  AssetTransactionType = "buy"
	AssetTransactionSell AssetTransactionType = "sell"
)

// AssetTransaction is a purchase or sale of a physical asset
type AssetTransaction struct {
	ID           int                  `json:"id"`
	AssetID      int                  `json:"physical_asset_id"`
	AccountID    *int                 `json:"account_id"`
	Type         AssetTransactionType `json:"transaction_type"`
	Quantity     float64              `json:"quantity"`
	PricePerUnit float64              `json:"price_per_unit"`
	TotalAmount  float64              `json:"total_amount"`
	Date         Date                 `json:"transaction_date"`
	Notes        string               `json:"notes,omitempty"`
}

// Backup is a server-side snapshot of the user's data
type Backup struct {
	ID          int       `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   Timestamp `json:"created_at"`
}

// CategoryAmount is one slice of a category breakdown chart
type CategoryAmount struct {
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Amount       float64 `json:"amount"`
	Percentage   float64 `json:"percentage"`
}

// TrendPoint is one period of an income/expense trend chart
type TrendPoint struct {
	Period  string  `json:"period"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// NetWorth summarizes a ledger's holdings
type NetWorth struct {
	Assets         float64 `json:"assets"`
	Liabilities    float64 `json:"liabilities"`
	MutualFunds    float64 `json:"mutual_funds"`
	PhysicalAssets float64 `json:"physical_assets"`
	NetWorth       float64 `json:"net_worth"`
}

// RegisterParams for creating a user
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// UpdateProfileParams for updating the current user
type UpdateProfileParams struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// CreateLedgerParams for creating ledgers
type CreateLedgerParams struct {
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

// UpdateLedgerParams for updating ledgers
type UpdateLedgerParams struct {
	Name        *string `json:"name,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateAccountParams for creating accounts
type CreateAccountParams struct {
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	OpeningBalance float64     `json:"opening_balance"`
	Description    string      `json:"description,omitempty"`
}

// UpdateAccountParams for updating accounts
type UpdateAccountParams struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTransactionParams for creating transactions
type CreateTransactionParams struct {
	AccountID  int             `json:"account_id"`
	CategoryID int             `json:"category_id,omitempty"`
	Type       TransactionType `json:"type"`
	Amount     float64         `json:"amount"`
	Date       time.Time       `json:"date"`
	Notes      string          `json:"notes,omitempty"`
	TagIDs     []int           `json:"tag_ids,omitempty"`
	Splits     []SplitInput    `json:"splits,omitempty"`
}

// UpdateTransactionParams for updating transactions
type UpdateTransactionParams struct {
	AccountID  *int             `json:"account_id,omitempty"`
	CategoryID *int             `json:"category_id,omitempty"`
	Type       *TransactionType `json:"type,omitempty"`
	Amount     *float64         `json:"amount,omitempty"`
	Date       *time.Time       `json:"date,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
	TagIDs     []int            `json:"tag_ids,omitempty"`
	Splits     []SplitInput     `json:"splits,omitempty"`
}

// TransferParams for moving money between two accounts
type TransferParams struct {
	SourceAccountID      int       `json:"source_account_id"`
	DestinationAccountID int       `json:"destination_account_id"`
	DestinationLedgerID  int       `json:"destination_ledger_id,omitempty"`
	SourceAmount         float64   `json:"source_amount"`
	DestinationAmount    float64   `json:"destination_amount"`
	Date                 time.Time `json:"date"`
	Notes                string    `json:"notes,omitempty"`
}

// CategoryListParams filters the category list
type CategoryListParams struct {
	// IgnoreGroup returns only leaf categories, without the group tree
	IgnoreGroup bool
	Type        CategoryType
}

// CreateCategoryParams for creating categories
type CreateCategoryParams struct {
	Name     string       `json:"name"`
	Type     CategoryType `json:"type"`
	IsGroup  bool         `json:"is_group"`
	ParentID *int         `json:"parent_id,omitempty"`
}

// UpdateCategoryParams for updating categories
type UpdateCategoryParams struct {
	Name     *string `json:"name,omitempty"`
	ParentID *int    `json:"parent_id,omitempty"`
}

// CreateFundParams for creating a mutual fund
type CreateFundParams struct {
	Name  string `json:"name"`
	AMCID int    `json:"amc_id"`
	Code  string `json:"code,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// UpdateFundParams for updating a mutual fund
type UpdateFundParams struct {
	Name  *string `json:"name,omitempty"`
	AMCID *int    `json:"amc_id,omitempty"`
	Code  *string `json:"code,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// FundTradeParams for buying or selling units
type FundTradeParams struct {
	FundID    int       `json:"mutual_fund_id"`
	AccountID int       `json:"account_id"`
	Units     float64   `json:"units"`
	NAV       float64   `json:"nav_per_unit"`
	Amount    float64   `json:"total_amount"`
	Date      time.Time `json:"transaction_date"`
	Notes     string    `json:"notes,omitempty"`
}

// SwitchParams for moving units from one fund to another
type SwitchParams struct {
	SourceFundID  int       `json:"source_mutual_fund_id"`
	TargetFundID  int       `json:"target_mutual_fund_id"`
	UnitsToSwitch float64   `json:"units_to_switch"`
	SourceNAV     float64   `json:"source_nav_at_switch"`
	TargetUnits   float64   `json:"target_units_received"`
	TargetNAV     float64   `json:"target_nav_at_switch"`
	Date          time.Time `json:"transaction_date"`
	Notes         string    `json:"notes,omitempty"`
}

// UpdateMfTransactionParams edits notes or date of a fund transaction
type UpdateMfTransactionParams struct {
	Date  *time.Time `json:"transaction_date,omitempty"`
	Notes *string    `json:"notes,omitempty"`
}

// CreateAssetTypeParams for creating a physical asset type
type CreateAssetTypeParams struct {
	Name        string `json:"name"`
	Unit        string `json:"unit_name"`
	UnitSymbol  string `json:"unit_symbol,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateAssetParams for creating a physical asset
type CreateAssetParams struct {
	Name        string `json:"name"`
	AssetTypeID int    `json:"asset_type_id"`
	Notes       string `json:"notes,omitempty"`
}

// UpdateAssetParams for updating a physical asset
type UpdateAssetParams struct {
	Name  *string `json:"name,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// AssetTradeParams for buying or selling a physical asset
type AssetTradeParams struct {
	AssetID      int       `json:"physical_asset_id"`
	AccountID    int       `json:"account_id"`
	Quantity     float64   `json:"quantity"`
	PricePerUnit float64   `json:"price_per_unit"`
	Date         time.Time `json:"transaction_date"`
	Notes        string    `json:"notes,omitempty"`
}

// InsightParams selects the window of a chart query
type InsightParams struct {
	Start time.Time
	End   time.Time

	// Type restricts a breakdown to income or expense
	Type TransactionType

	// Interval is "day", "week", "month" or "year"
	Interval string
}
