package ledgerbook

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ledgerbook/ledgerbook-go/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMutualFundService_AMCs(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/amc/list"), mock.Anything).
		Return(`[{"id": 1, "name": "Axis"}, {"id": 2, "name": "HDFC", "notes": "direct plans"}]`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodPost, "/amc"), mock.Anything).
		Return(`{"id": 3, "name": "Parag Parikh"}`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/amc/3"), mock.Anything).
		Return(`{"id": 3, "name": "PPFAS"}`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodDelete, "/amc/3"), mock.Anything).
		Return(nil, nil)

	ctx := context.Background()

	amcs, err := client.MutualFunds.ListAMCs(ctx)
	require.NoError(t, err)
	require.Len(t, amcs, 2)
	assert.Equal(t, "direct plans", amcs[1].Notes)

	_, err = client.MutualFunds.CreateAMC(ctx, " ", "")
	assert.True(t, IsValidationError(err))

	amc, err := client.MutualFunds.CreateAMC(ctx, "Parag Parikh", "")
	require.NoError(t, err)
	assert.Equal(t, 3, amc.ID)

	amc, err = client.MutualFunds.UpdateAMC(ctx, 3, "PPFAS", "")
	require.NoError(t, err)
	assert.Equal(t, "PPFAS", amc.Name)

	require.NoError(t, client.MutualFunds.DeleteAMC(ctx, 3))
	mockTransport.AssertExpectations(t)
}

func TestMutualFundService_ListAndGet(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/ledger/1/mutual-funds"), mock.Anything).
		Return(`[{
			"id": 5,
			"amc_id": 2,
			"amc_name": "HDFC",
			"name": "HDFC Flexi Cap",
			"total_units": 120.345,
			"invested_amount": 10000,
			"average_cost_per_unit": 83.09,
			"latest_nav": 95.12,
			"last_nav_update": "2024-06-28",
			"current_value": 11447.22
		}]`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodGet, "/ledger/1/mutual-funds/5"), mock.Anything).
		Return(`{"id": 5, "name": "HDFC Flexi Cap", "latest_nav": 95.12}`, nil)

	funds, err := client.MutualFunds.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, funds, 1)
	assert.Equal(t, 120.345, funds[0].TotalUnits)
	assert.Equal(t, "2024-06-28", funds[0].LastNAVUpdate.String())

	fund, err := client.MutualFunds.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 95.12, fund.LatestNAV)
}

func TestMutualFundService_Create_Validation(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	_, err := client.MutualFunds.Create(context.Background(), 1, &CreateFundParams{})
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("name"))
	assert.NotNil(t, verrs.Field("amc_id"))

	mockTransport.On("Do", mock.Anything, request(http.MethodPost, "/ledger/1/mutual-funds"), mock.Anything).
		Return(`{"id": 6, "name": "Axis Bluechip", "amc_id": 1}`, nil)

	fund, err := client.MutualFunds.Create(context.Background(), 1, &CreateFundParams{Name: "Axis Bluechip", AMCID: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, fund.ID)
}

func TestMutualFundService_UpdateNAV(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	_, err := client.MutualFunds.UpdateNAV(context.Background(), 1, 5, 0, time.Time{})
	assert.True(t, IsValidationError(err))

	var sent map[string]interface{}
	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/ledger/1/mutual-funds/5/nav"), mock.Anything).
		Run(func(args mock.Arguments) {
			sent = bodyOf(t, args.Get(1).(*transport.Request))
		}).
		Return(`{"id": 5, "latest_nav": 101.5, "last_nav_update": "2024-07-01"}`, nil)

	fund, err := client.MutualFunds.UpdateNAV(context.Background(), 1, 5, 101.5, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 101.5, fund.LatestNAV)
	assert.Equal(t, 101.5, sent["latest_nav"])
	assert.Equal(t, "2024-07-01", sent["last_nav_update"])
}

func TestMutualFundService_Trades(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	var sent map[string]interface{}
	mockTransport.On("Do", mock.Anything, request(http.MethodPost, "/ledger/1/mf-transactions/buy"), mock.Anything).
		Run(func(args mock.Arguments) {
			sent = bodyOf(t, args.Get(1).(*transport.Request))
		}).
		Return(`{"id": 40, "mutual_fund_id": 5, "account_id": 11, "transaction_type": "buy", "units": 10.5, "nav_per_unit": 95.2, "total_amount": 999.6, "transaction_date": "2024-06-03"}`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodPost, "/ledger/1/mf-transactions/sell"), mock.Anything).
		Return(`{"id": 41, "transaction_type": "sell", "units": 5, "realized_gain": 61.5, "cost_basis_of_units_sold": 415.45}`, nil)

	ctx := context.Background()
	params := &FundTradeParams{
		FundID:    5,
		AccountID: 11,
		Units:     10.5,
		NAV:       95.2,
		Amount:    999.6,
		Date:      time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	}

	txn, err := client.MutualFunds.Buy(ctx, 1, params)
	require.NoError(t, err)
	assert.Equal(t, MfTransactionBuy, txn.Type)
	require.NotNil(t, txn.AccountID)
	assert.Equal(t, 11, *txn.AccountID)
	assert.Nil(t, txn.RealizedGain)
	assert.Equal(t, "2024-06-03", sent["transaction_date"])
	assert.Equal(t, 999.6, sent["total_amount"])

	txn, err = client.MutualFunds.Sell(ctx, 1, params)
	require.NoError(t, err)
	require.NotNil(t, txn.RealizedGain)
	assert.Equal(t, 61.5, *txn.RealizedGain)
	require.NotNil(t, txn.CostBasis)

	_, err = client.MutualFunds.Buy(ctx, 1, &FundTradeParams{FundID: 5})
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, field := range []string{"account_id", "units", "nav_per_unit", "total_amount", "transaction_date"} {
		assert.NotNil(t, verrs.Field(field), field)
	}
	mockTransport.AssertNumberOfCalls(t, "Do", 2)
}

func TestMutualFundService_Switch(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	_, err := client.MutualFunds.Switch(context.Background(), 1, &SwitchParams{
		SourceFundID: 5, TargetFundID: 5, UnitsToSwitch: 1, SourceNAV: 1, TargetUnits: 1, TargetNAV: 1, Date: time.Now(),
	})
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("target_mutual_fund_id"))

	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			body, ok := r.Body.(map[string]interface{})
			return ok && r.Path == "/ledger/1/mf-transactions/switch" &&
				body["source_mutual_fund_id"] == 5 && body["target_mutual_fund_id"] == 6
		}),
		mock.Anything,
	).Return(`[
		{"id": 50, "mutual_fund_id": 5, "transaction_type": "switch_out", "units": 10, "nav_per_unit": 100, "total_amount": 1000, "realized_gain": 120},
		{"id": 51, "mutual_fund_id": 6, "transaction_type": "switch_in", "units": 40, "nav_per_unit": 25, "total_amount": 1000}
	]`, nil)

	legs, err := client.MutualFunds.Switch(context.Background(), 1, &SwitchParams{
		SourceFundID:  5,
		TargetFundID:  6,
		UnitsToSwitch: 10,
		SourceNAV:     100,
		TargetUnits:   40,
		TargetNAV:     25,
		Date:          time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, MfTransactionSwitchOut, legs[0].Type)
	assert.Equal(t, MfTransactionSwitchIn, legs[1].Type)
	mockTransport.AssertExpectations(t)
}

func TestMutualFundService_Transactions(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			return r.Path == "/ledger/1/mf-transactions" && r.Query.Get("mutual_fund_id") == "5"
		}),
		mock.Anything,
	).Return(`[{"id": 40, "transaction_type": "buy"}]`, nil)
	mockTransport.On("Do",
		mock.Anything,
		mock.MatchedBy(func(r *transport.Request) bool {
			return r.Path == "/ledger/1/mf-transactions" && len(r.Query) == 0
		}),
		mock.Anything,
	).Return(`[{"id": 40}, {"id": 41}]`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodPut, "/ledger/1/mf-transactions/40"), mock.Anything).
		Return(`{"id": 40, "notes": "SIP"}`, nil)
	mockTransport.On("Do", mock.Anything, request(http.MethodDelete, "/ledger/1/mf-transactions/40"), mock.Anything).
		Return(nil, nil)

	ctx := context.Background()

	txns, err := client.MutualFunds.ListTransactions(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	txns, err = client.MutualFunds.ListTransactions(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	notes := "SIP"
	txn, err := client.MutualFunds.UpdateTransaction(ctx, 1, 40, &UpdateMfTransactionParams{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "SIP", txn.Notes)

	require.NoError(t, client.MutualFunds.DeleteTransaction(ctx, 1, 40))
	mockTransport.AssertExpectations(t)
}

func TestSummarizeFunds(t *testing.T) {
	funds := []*MutualFund{
		{AMCID: 2, AMCName: "HDFC", InvestedAmount: 1000.10, CurrentValue: 1100.20, RealizedGain: 5},
		{AMCID: 1, AMCName: "Axis", InvestedAmount: 500, CurrentValue: 450},
		{AMCID: 2, AMCName: "HDFC", InvestedAmount: 0.20, CurrentValue: 0.10},
		{AMCID: 9, InvestedAmount: 100, CurrentValue: 100},
	}

	summary := SummarizeFunds(funds)
	require.Len(t, summary.Groups, 3)

	assert.Equal(t, "AMC 9", summary.Groups[0].Name)
	assert.Equal(t, "Axis", summary.Groups[1].Name)
	assert.Equal(t, "-50.00", summary.Groups[1].UnrealizedGain.StringFixed(2))
	assert.Equal(t, "-10.00", summary.Groups[1].GainPercent().StringFixed(2))

	hdfc := summary.Groups[2]
	assert.Equal(t, 2, hdfc.Holdings)
	assert.Equal(t, "1000.30", hdfc.Invested.StringFixed(2))
	assert.Equal(t, "1100.30", hdfc.CurrentValue.StringFixed(2))
	assert.Equal(t, "100.00", hdfc.UnrealizedGain.StringFixed(2))
	assert.Equal(t, "5.00", hdfc.RealizedGain.StringFixed(2))

	assert.Equal(t, 4, summary.Total.Holdings)
	assert.Equal(t, "1600.30", summary.Total.Invested.StringFixed(2))
	assert.Equal(t, "50.00", summary.Total.UnrealizedGain.StringFixed(2))

	empty := SummarizeFunds(nil)
	assert.Empty(t, empty.Groups)
	assert.True(t, empty.Total.GainPercent().IsZero())
}
