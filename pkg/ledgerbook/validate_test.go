package ledgerbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validator interface {
	Validate() error
}

func TestValidate(t *testing.T) {
	now := time.Now()
	parent := 1

	tests := []struct {
		name   string
		params validator
		fields []string
	}{
		{name: "register ok", params: &RegisterParams{Username: "asha", Email: "asha@example.com", Password: "12345678"}},
		{name: "register empty", params: &RegisterParams{}, fields: []string{"username", "email", "password"}},
		{name: "register nil", params: (*RegisterParams)(nil), fields: []string{"params"}},
		{name: "ledger ok", params: &CreateLedgerParams{Name: "Home", Currency: "INR"}},
		{name: "account nil", params: (*CreateAccountParams)(nil), fields: []string{"params"}},
		{name: "transfer missing everything", params: &TransferParams{}, fields: []string{"source_account_id", "destination_account_id", "source_amount", "date"}},
		{name: "transfer same account", params: &TransferParams{SourceAccountID: 3, DestinationAccountID: 3, SourceAmount: 5, Date: now}, fields: []string{"destination_account_id"}},
		{name: "transfer same account id in another ledger", params: &TransferParams{SourceAccountID: 3, DestinationAccountID: 3, DestinationLedgerID: 9, SourceAmount: 5, Date: now}},
		{name: "transfer negative destination", params: &TransferParams{SourceAccountID: 1, DestinationAccountID: 2, SourceAmount: 5, DestinationAmount: -1, Date: now}, fields: []string{"destination_amount"}},
		{name: "category ok", params: &CreateCategoryParams{Name: "Coffee", Type: CategoryTypeExpense, ParentID: &parent}},
		{name: "category bad type", params: &CreateCategoryParams{Name: "Coffee", Type: "transfer"}, fields: []string{"type"}},
		{name: "asset type ok", params: &CreateAssetTypeParams{Name: "Gold", Unit: "gram"}},
		{name: "asset missing type", params: &CreateAssetParams{Name: "Coins"}, fields: []string{"asset_type_id"}},
		{name: "switch empty", params: &SwitchParams{}, fields: []string{
			"source_mutual_fund_id", "target_mutual_fund_id", "units_to_switch", "source_nav_at_switch",
			"target_units_received", "target_nav_at_switch", "transaction_date",
		}},
		{name: "insight nil", params: (*InsightParams)(nil)},
		{name: "update transaction empty", params: &UpdateTransactionParams{}},
		{name: "update ledger bad currency", params: &UpdateLedgerParams{Currency: strPtr("rupees")}, fields: []string{"currency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs.Errors, len(tt.fields))
			for _, field := range tt.fields {
				assert.NotNil(t, verrs.Field(field), field)
			}
		})
	}
}

func TestTransferParams_ValidateLeavesParamsAlone(t *testing.T) {
	params := &TransferParams{SourceAccountID: 1, DestinationAccountID: 2, SourceAmount: 75.5, Date: time.Now()}
	require.NoError(t, params.Validate())
	assert.Zero(t, params.DestinationAmount)
}

func TestTransferParams_SameLedgerByID(t *testing.T) {
	params := &TransferParams{SourceAccountID: 3, DestinationAccountID: 3, DestinationLedgerID: 4, SourceAmount: 5, Date: time.Now()}

	var verrs *ValidationErrors
	require.ErrorAs(t, params.validate(4), &verrs)
	assert.NotNil(t, verrs.Field("destination_account_id"))

	assert.NoError(t, params.validate(5))
}

func TestValidationErrors_Error(t *testing.T) {
	errs := &ValidationErrors{}
	assert.Nil(t, errs.Err())
	assert.Equal(t, "validation failed", errs.Error())

	errs.Add("name", "name is required", nil)
	assert.Equal(t, "validation error on field 'name': name is required", errs.Error())

	errs.Add("currency", "currency must be a 3-letter ISO code", "XX")
	assert.Equal(t, "2 validation errors occurred: name: name is required; currency: currency must be a 3-letter ISO code", errs.Error())
	assert.Nil(t, errs.Field("amount"))
}

func strPtr(s string) *string {
	return &s
}
