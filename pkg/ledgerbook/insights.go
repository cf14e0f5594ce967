package ledgerbook

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// insightService implements the InsightService interface
type insightService struct {
	client *Client
}

// CategoryBreakdown sums transactions per category
func (s *insightService) CategoryBreakdown(ctx context.Context, ledgerID int, params *InsightParams) ([]*CategoryAmount, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := insightQuery(params)
	if params == nil || params.Type == "" {
		query.Set("type", string(TransactionTypeExpense))
	}

	var breakdown []*CategoryAmount
	path := ledgerPath(ledgerID, "insights", "category-breakdown")
	if err := s.client.get(ctx, path, query, &breakdown); err != nil {
		return nil, errors.Wrap(err, "failed to get category breakdown")
	}
	return breakdown, nil
}

// IncomeExpenseTrend buckets income and expense per interval, monthly by default
func (s *insightService) IncomeExpenseTrend(ctx context.Context, ledgerID int, params *InsightParams) ([]*TrendPoint, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query := insightQuery(params)
	if query.Get("interval") == "" {
		query.Set("interval", "month")
	}

	var trend []*TrendPoint
	path := ledgerPath(ledgerID, "insights", "income-expense-trend")
	if err := s.client.get(ctx, path, query, &trend); err != nil {
		return nil, errors.Wrap(err, "failed to get income/expense trend")
	}
	return trend, nil
}

// NetWorth summarizes a ledger's holdings
func (s *insightService) NetWorth(ctx context.Context, ledgerID int) (*NetWorth, error) {
	var nw NetWorth
	if err := s.client.get(ctx, ledgerPath(ledgerID, "insights", "net-worth"), nil, &nw); err != nil {
		return nil, errors.Wrap(err, "failed to get net worth")
	}
	return &nw, nil
}

func insightQuery(params *InsightParams) url.Values {
	query := url.Values{}
	if params == nil {
		return query
	}
	if !params.Start.IsZero() {
		query.Set("start_date", formatDate(params.Start))
	}
	if !params.End.IsZero() {
		query.Set("end_date", formatDate(params.End))
	}
	if params.Type != "" {
		query.Set("type", string(params.Type))
	}
	if params.Interval != "" {
		query.Set("interval", params.Interval)
	}
	return query
}
