package ledgerbook

import (
	"context"
	"io"
	"time"
)

// AuthService handles authentication
type AuthService interface {
	// Login exchanges username and password for a bearer token
	Login(ctx context.Context, username, password string) error

	// Register creates a new user. It does not log in.
	Register(ctx context.Context, params *RegisterParams) (*User, error)

	// Logout drops the current session and removes the session file if configured
	Logout() error

	// GetSession returns the current session
	GetSession() (*Session, error)

	// SaveSession saves session to file
	SaveSession(path string) error

	// LoadSession loads session from file
	LoadSession(path string) error
}

// UserService handles profile administration
type UserService interface {
	// Me returns the authenticated user
	Me(ctx context.Context) (*User, error)

	// UpdateProfile updates the authenticated user's profile
	UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*User, error)

	// ChangePassword changes the authenticated user's password
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error

	// Delete removes the authenticated user's account
	Delete(ctx context.Context) error

	// List returns every user. Admin only.
	List(ctx context.Context) ([]*User, error)

	// SetActive enables or disables a user. Admin only.
	SetActive(ctx context.Context, userID int, active bool) (*User, error)
}

// BackupService handles server-side backups
type BackupService interface {
	// List returns the available backups, newest first
	List(ctx context.Context) ([]*Backup, error)

	// Create starts a backup job
	Create(ctx context.Context, description string) (BackupJob, error)

	// Restore starts a restore of the given backup
	Restore(ctx context.Context, backupID int) (BackupJob, error)

	// Delete removes a backup
	Delete(ctx context.Context, backupID int) error

	// Download streams the backup archive into w and returns its filename
	Download(ctx context.Context, backupID int, w io.Writer) (string, error)

	// Upload stores a backup archive on the server
	Upload(ctx context.Context, fileName string, data []byte) (*Backup, error)

	// Job returns a handle on an existing backup job
	Job(jobID string) BackupJob
}

// BackupJob tracks an asynchronous backup or restore
type BackupJob interface {
	// ID returns the job identifier
	ID() string

	// Status returns the last observed status
	Status() BackupStatus

	// Wait polls until the job finishes or timeout elapses
	Wait(ctx context.Context, timeout time.Duration) error

	// IsComplete checks the job once
	IsComplete(ctx context.Context) (bool, error)

	// Cancel stops waiting on the job
	Cancel(ctx context.Context) error

	// GetMetrics returns polling metrics
	GetMetrics() BackupJobMetrics
}

// LedgerService handles ledgers
type LedgerService interface {
	List(ctx context.Context) ([]*Ledger, error)
	Get(ctx context.Context, ledgerID int) (*Ledger, error)
	Create(ctx context.Context, params *CreateLedgerParams) (*Ledger, error)
	Update(ctx context.Context, ledgerID int, params *UpdateLedgerParams) (*Ledger, error)
	Delete(ctx context.Context, ledgerID int) error
}

// AccountService handles accounts inside a ledger
type AccountService interface {
	// List retrieves all accounts of a ledger
	List(ctx context.Context, ledgerID int) ([]*Account, error)

	// Get retrieves a single account
	Get(ctx context.Context, ledgerID, accountID int) (*Account, error)

	// Create creates a new account
	Create(ctx context.Context, ledgerID int, params *CreateAccountParams) (*Account, error)

	// Update updates an existing account
	Update(ctx context.Context, ledgerID, accountID int, params *UpdateAccountParams) (*Account, error)

	// Delete deletes an account
	Delete(ctx context.Context, ledgerID, accountID int) error

	// Transactions returns one page of the account's transactions
	Transactions(ctx context.Context, ledgerID, accountID, page int) (*TransactionList, error)
}

// TransactionService handles transactions inside a ledger
type TransactionService interface {
	// Query returns a transaction query builder for a ledger
	Query(ledgerID int) TransactionQueryBuilder

	// Get retrieves a single transaction
	Get(ctx context.Context, ledgerID, transactionID int) (*Transaction, error)

	// Create creates a new transaction
	Create(ctx context.Context, ledgerID int, params *CreateTransactionParams) (*Transaction, error)

	// Update updates an existing transaction
	Update(ctx context.Context, ledgerID, transactionID int, params *UpdateTransactionParams) (*Transaction, error)

	// Delete deletes a transaction
	Delete(ctx context.Context, ledgerID, transactionID int) error

	// Transfer moves money between two accounts, possibly across ledgers
	Transfer(ctx context.Context, ledgerID int, params *TransferParams) (*TransferDetails, error)

	// GetSplits retrieves transaction splits
	GetSplits(ctx context.Context, ledgerID, transactionID int) ([]*TransactionSplit, error)

	// GetTransferDetails retrieves both legs of a transfer
	GetTransferDetails(ctx context.Context, ledgerID int, transferID string) (*TransferDetails, error)
}

// TransactionQueryBuilder builds transaction queries
type TransactionQueryBuilder interface {
	// Filter methods
	Between(start, end time.Time) TransactionQueryBuilder
	WithAccount(accountID int) TransactionQueryBuilder
	WithCategory(categoryID int) TransactionQueryBuilder
	WithTags(tagIDs ...int) TransactionQueryBuilder
	WithType(txType TransactionType) TransactionQueryBuilder
	Search(query string) TransactionQueryBuilder
	Page(page int) TransactionQueryBuilder
	PerPage(perPage int) TransactionQueryBuilder

	// Execute runs the query
	Execute(ctx context.Context) (*TransactionList, error)

	// Stream returns results as a channel, paging until exhausted
	Stream(ctx context.Context) (<-chan *Transaction, <-chan error)
}

// CategoryService handles categories
type CategoryService interface {
	// List retrieves categories, as a group tree unless IgnoreGroup is set
	List(ctx context.Context, params *CategoryListParams) ([]*Category, error)

	// Create creates a new category or category group
	Create(ctx context.Context, params *CreateCategoryParams) (*Category, error)

	// Update renames or moves a category
	Update(ctx context.Context, categoryID int, params *UpdateCategoryParams) (*Category, error)

	// Delete deletes a category
	Delete(ctx context.Context, categoryID int) error
}

// TagService handles transaction tags
type TagService interface {
	// Search returns tags whose name matches query
	Search(ctx context.Context, query string) ([]*Tag, error)

	// List retrieves all tags
	List(ctx context.Context) ([]*Tag, error)

	// Create creates a new tag
	Create(ctx context.Context, name string) (*Tag, error)

	// Delete deletes a tag
	Delete(ctx context.Context, tagID int) error

	// SetTransactionTags replaces the tags of a transaction
	SetTransactionTags(ctx context.Context, ledgerID, transactionID int, tagIDs ...int) error
}

// MutualFundService handles AMCs, funds and unit transactions
type MutualFundService interface {
	ListAMCs(ctx context.Context) ([]*AMC, error)
	CreateAMC(ctx context.Context, name, notes string) (*AMC, error)
	UpdateAMC(ctx context.Context, amcID int, name, notes string) (*AMC, error)
	DeleteAMC(ctx context.Context, amcID int) error

	// List retrieves the funds held in a ledger
	List(ctx context.Context, ledgerID int) ([]*MutualFund, error)
	Get(ctx context.Context, ledgerID, fundID int) (*MutualFund, error)
	Create(ctx context.Context, ledgerID int, params *CreateFundParams) (*MutualFund, error)
	Update(ctx context.Context, ledgerID, fundID int, params *UpdateFundParams) (*MutualFund, error)
	Delete(ctx context.Context, ledgerID, fundID int) error

	// UpdateNAV records the latest NAV of a fund
	UpdateNAV(ctx context.Context, ledgerID, fundID int, nav float64, date time.Time) (*MutualFund, error)

	// ListTransactions lists unit transactions. A fundID of 0 lists all funds.
	ListTransactions(ctx context.Context, ledgerID, fundID int) ([]*MfTransaction, error)
	Buy(ctx context.Context, ledgerID int, params *FundTradeParams) (*MfTransaction, error)
	Sell(ctx context.Context, ledgerID int, params *FundTradeParams) (*MfTransaction, error)

	// Switch moves units between two funds and returns both legs
	Switch(ctx context.Context, ledgerID int, params *SwitchParams) ([]*MfTransaction, error)
	UpdateTransaction(ctx context.Context, ledgerID, txID int, params *UpdateMfTransactionParams) (*MfTransaction, error)
	DeleteTransaction(ctx context.Context, ledgerID, txID int) error
}

// PhysicalAssetService handles physical assets such as gold or property
type PhysicalAssetService interface {
	ListTypes(ctx context.Context) ([]*AssetType, error)
	CreateType(ctx context.Context, params *CreateAssetTypeParams) (*AssetType, error)
	DeleteType(ctx context.Context, typeID int) error

	List(ctx context.Context, ledgerID int) ([]*PhysicalAsset, error)
	Get(ctx context.Context, ledgerID, assetID int) (*PhysicalAsset, error)
	Create(ctx context.Context, ledgerID int, params *CreateAssetParams) (*PhysicalAsset, error)
	Update(ctx context.Context, ledgerID, assetID int, params *UpdateAssetParams) (*PhysicalAsset, error)
	Delete(ctx context.Context, ledgerID, assetID int) error

	// UpdatePrice records the latest price per unit
	UpdatePrice(ctx context.Context, ledgerID, assetID int, pricePerUnit float64, date time.Time) (*PhysicalAsset, error)

	ListTransactions(ctx context.Context, ledgerID, assetID int) ([]*AssetTransaction, error)
	Buy(ctx context.Context, ledgerID int, params *AssetTradeParams) (*AssetTransaction, error)
	Sell(ctx context.Context, ledgerID int, params *AssetTradeParams) (*AssetTransaction, error)
	DeleteTransaction(ctx context.Context, ledgerID, txID int) error
}

// InsightService returns chart data computed by the server
type InsightService interface {
	// CategoryBreakdown sums transactions per category
	CategoryBreakdown(ctx context.Context, ledgerID int, params *InsightParams) ([]*CategoryAmount, error)

	// IncomeExpenseTrend buckets income and expense per interval
	IncomeExpenseTrend(ctx context.Context, ledgerID int, params *InsightParams) ([]*TrendPoint, error)

	// NetWorth summarizes a ledger's holdings
	NetWorth(ctx context.Context, ledgerID int) (*NetWorth, error)
}
