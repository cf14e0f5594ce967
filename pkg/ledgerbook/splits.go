package ledgerbook

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DraftSplit is one allocation inside a SplitDraft
type DraftSplit struct {
	CategoryID int
	Amount     decimal.Decimal
	Notes      string
}

// SplitDraft holds the split allocation of a transaction while it is being
// composed. The last split always absorbs whatever the earlier splits leave
// of the total, so the draft stays reconciled while the user edits it.
//
// A SplitDraft is not safe for concurrent use.
type SplitDraft struct {
	total   decimal.Decimal
	enabled bool
	splits  []DraftSplit
}

// NewSplitDraft creates a draft for a transaction of the given total.
// Split mode starts disabled.
func NewSplitDraft(total decimal.Decimal) *SplitDraft {
	return &SplitDraft{total: total}
}

// Total returns the transaction total
func (d *SplitDraft) Total() decimal.Decimal {
	return d.total
}

// SetTotal changes the transaction total and rebalances the last split
func (d *SplitDraft) SetTotal(total decimal.Decimal) {
	d.total = total
	if d.enabled {
		d.rebalance()
	}
}

// Enabled reports whether split mode is on
func (d *SplitDraft) Enabled() bool {
	return d.enabled
}

// Enable turns split mode on, seeding one split with the full total.
// Enabling an enabled draft is a no-op.
func (d *SplitDraft) Enable() {
	if d.enabled {
		return
	}
	d.enabled = true
	d.splits = []DraftSplit{{Amount: d.total}}
}

// Disable turns split mode off and discards every split
func (d *SplitDraft) Disable() {
	d.enabled = false
	d.splits = nil
}

// Len returns the number of splits
func (d *SplitDraft) Len() int {
	return len(d.splits)
}

// SetAmount sets the amount of split i.
//
// Editing a split before the last makes the last split absorb the remaining
// balance, floored at zero. Editing the last split appends a new split holding
// the remainder when the allocation falls short of the total; setting it to
// zero removes it instead, unless it is the only split, which then stays at
// zero.
func (d *SplitDraft) SetAmount(i int, amount decimal.Decimal) error {
	if err := d.check(i); err != nil {
		return err
	}
	if amount.IsNegative() {
		return &ValidationError{Field: splitField(i, "amount"), Message: "amount cannot be negative", Value: amount.String()}
	}

	last := len(d.splits) - 1
	d.splits[i].Amount = amount

	if i < last {
		d.rebalance()
	} else if amount.IsZero() && last > 0 {
		d.splits = d.splits[:last]
		d.rebalance()
		return nil
	} else if remaining := d.Remaining(); remaining.IsPositive() && amount.IsPositive() {
		d.splits = append(d.splits, DraftSplit{Amount: remaining})
	}

	d.prune()
	return nil
}

// SetCategory sets the category of split i
func (d *SplitDraft) SetCategory(i, categoryID int) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.splits[i].CategoryID = categoryID
	return nil
}

// SetNotes sets the notes of split i
func (d *SplitDraft) SetNotes(i int, notes string) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.splits[i].Notes = notes
	return nil
}

// Add appends a split holding the unallocated remainder and returns its index
func (d *SplitDraft) Add() (int, error) {
	if !d.enabled {
		return -1, errors.New("split mode is disabled")
	}
	remaining := d.Remaining()
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	d.splits = append(d.splits, DraftSplit{Amount: remaining})
	return len(d.splits) - 1, nil
}

// Remove deletes split i and rebalances into the last split. The only
// remaining split cannot be removed; disable split mode instead.
func (d *SplitDraft) Remove(i int) error {
	if err := d.check(i); err != nil {
		return err
	}
	if len(d.splits) == 1 {
		return errors.New("cannot remove the only split")
	}
	d.splits = append(d.splits[:i], d.splits[i+1:]...)
	d.rebalance()
	return nil
}

// Allocated returns the sum of the split amounts
func (d *SplitDraft) Allocated() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range d.splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// Remaining returns total minus allocated. It is negative when the splits
// over-allocate the total.
func (d *SplitDraft) Remaining() decimal.Decimal {
	return d.total.Sub(d.Allocated())
}

// Splits returns a copy of the current splits
func (d *SplitDraft) Splits() []DraftSplit {
	out := make([]DraftSplit, len(d.splits))
	copy(out, d.splits)
	return out
}

// Validate reports every problem that blocks submission
func (d *SplitDraft) Validate() error {
	errs := &ValidationErrors{}
	if !d.total.IsPositive() {
		errs.Add("amount", "amount must be greater than zero", d.total.String())
	}
	if !d.enabled {
		return errs.Err()
	}
	if len(d.splits) == 0 {
		errs.Add("splits", "at least one split is required", nil)
		return errs.Err()
	}
	for i, s := range d.splits {
		if s.CategoryID <= 0 {
			errs.Add(splitField(i, "category_id"), "category is required", s.CategoryID)
		}
		if !s.Amount.IsPositive() {
			errs.Add(splitField(i, "amount"), "amount must be greater than zero", s.Amount.String())
		}
	}
	if !withinTolerance(d.Allocated(), d.total) {
		errs.Add("splits", fmt.Sprintf("split amounts add up to %s, expected %s",
			d.Allocated().StringFixed(2), d.total.StringFixed(2)), d.Remaining().String())
	}
	return errs.Err()
}

// Inputs converts the splits to their wire form, rounded to cents.
// It returns nil when split mode is off.
func (d *SplitDraft) Inputs() []SplitInput {
	if !d.enabled {
		return nil
	}
	out := make([]SplitInput, 0, len(d.splits))
	for _, s := range d.splits {
		out = append(out, SplitInput{
			CategoryID: s.CategoryID,
			Amount:     s.Amount.Round(2).InexactFloat64(),
			Notes:      s.Notes,
		})
	}
	return out
}

// rebalance makes the last split absorb what the others leave of the total
func (d *SplitDraft) rebalance() {
	if len(d.splits) == 0 {
		return
	}
	last := len(d.splits) - 1
	others := decimal.Zero
	for _, s := range d.splits[:last] {
		others = others.Add(s.Amount)
	}
	remaining := d.total.Sub(others)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	d.splits[last].Amount = remaining
	d.prune()
}

// prune drops a trailing zero split unless it is the first
func (d *SplitDraft) prune() {
	last := len(d.splits) - 1
	if last > 0 && d.splits[last].Amount.IsZero() {
		d.splits = d.splits[:last]
	}
}

func (d *SplitDraft) check(i int) error {
	if !d.enabled {
		return errors.New("split mode is disabled")
	}
	if i < 0 || i >= len(d.splits) {
		return errors.Errorf("split index %d out of range [0,%d)", i, len(d.splits))
	}
	return nil
}

// ReconcileSplits checks submitted splits against a transaction total: each
// split needs a category and a positive amount, and the amounts must add up
// to the total within 0.01.
func ReconcileSplits(total float64, splits []SplitInput) error {
	errs := &ValidationErrors{}
	reconcileSplits(errs, total, splits)
	return errs.Err()
}

func reconcileSplits(errs *ValidationErrors, total float64, splits []SplitInput) {
	amounts := make([]float64, 0, len(splits))
	for i, s := range splits {
		if s.CategoryID <= 0 {
			errs.Add(splitField(i, "category_id"), "category is required", s.CategoryID)
		}
		if s.Amount <= 0 {
			errs.Add(splitField(i, "amount"), "amount must be greater than zero", s.Amount)
		}
		amounts = append(amounts, s.Amount)
	}

	sum := sumFloats(amounts...)
	want := decimal.NewFromFloat(total)
	if !withinTolerance(sum, want) {
		errs.Add("splits", fmt.Sprintf("split amounts add up to %s, expected %s",
			sum.StringFixed(2), want.StringFixed(2)), sum.Sub(want).String())
	}
}

func splitField(i int, name string) string {
	return fmt.Sprintf("splits[%d].%s", i, name)
}
