package ledgerbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// amounts returns the split amounts as fixed two-decimal strings
func amounts(d *SplitDraft) []string {
	out := make([]string, 0, d.Len())
	for _, s := range d.Splits() {
		out = append(out, s.Amount.StringFixed(2))
	}
	return out
}

func TestSplitDraft_Enable(t *testing.T) {
	d := NewSplitDraft(dec("100"))
	assert.False(t, d.Enabled())
	assert.Equal(t, 0, d.Len())
	assert.Nil(t, d.Inputs())

	d.Enable()
	assert.True(t, d.Enabled())
	assert.Equal(t, []string{"100.00"}, amounts(d))

	// Enabling again keeps the existing splits
	require.NoError(t, d.SetAmount(0, dec("40")))
	d.Enable()
	assert.Equal(t, []string{"40.00", "60.00"}, amounts(d))

	d.Disable()
	assert.False(t, d.Enabled())
	assert.Equal(t, 0, d.Len())
}

func TestSplitDraft_SetAmount(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		index int
		value string
		want  []string
	}{
		{
			name:  "editing the only split appends the remainder",
			index: 0,
			value: "30",
			want:  []string{"30.00", "70.00"},
		},
		{
			name:  "editing an earlier split rebalances the last",
			setup: []string{"30"},
			index: 0,
			value: "45.50",
			want:  []string{"45.50", "54.50"},
		},
		{
			name:  "over-allocating floors the last split and drops it",
			setup: []string{"30"},
			index: 0,
			value: "120",
			want:  []string{"120.00"},
		},
		{
			name:  "zeroing the last split removes it",
			setup: []string{"30"},
			index: 1,
			value: "0",
			want:  []string{"100.00"},
		},
		{
			name:  "lowering the last split appends the remainder",
			setup: []string{"30"},
			index: 1,
			value: "50",
			want:  []string{"30.00", "50.00", "20.00"},
		},
		{
			name:  "zeroing the only split keeps it",
			index: 0,
			value: "0",
			want:  []string{"0.00"},
		},
		{
			name:  "filling the total exactly adds nothing",
			setup: []string{"30"},
			index: 1,
			value: "70",
			want:  []string{"30.00", "70.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewSplitDraft(dec("100"))
			d.Enable()
			for i, v := range tt.setup {
				require.NoError(t, d.SetAmount(i, dec(v)))
			}

			require.NoError(t, d.SetAmount(tt.index, dec(tt.value)))
			assert.Equal(t, tt.want, amounts(d))
		})
	}
}

func TestSplitDraft_SetAmount_Errors(t *testing.T) {
	d := NewSplitDraft(dec("100"))
	assert.Error(t, d.SetAmount(0, dec("10")), "disabled draft")

	d.Enable()
	assert.Error(t, d.SetAmount(3, dec("10")), "out of range")

	err := d.SetAmount(0, dec("-1"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, []string{"100.00"}, amounts(d))
}

func TestSplitDraft_AddAndRemove(t *testing.T) {
	d := NewSplitDraft(dec("90"))

	_, err := d.Add()
	assert.Error(t, err)

	d.Enable()
	require.NoError(t, d.SetAmount(0, dec("30")))
	require.NoError(t, d.SetAmount(1, dec("30")))
	assert.Equal(t, []string{"30.00", "30.00", "30.00"}, amounts(d))

	// Fully allocated, so the new split starts at zero
	i, err := d.Add()
	require.NoError(t, err)
	assert.Equal(t, 3, i)
	assert.True(t, d.Splits()[3].Amount.IsZero())

	require.NoError(t, d.Remove(0))
	assert.Equal(t, []string{"30.00", "30.00", "30.00"}, amounts(d))

	require.NoError(t, d.Remove(2))
	assert.Equal(t, []string{"30.00", "60.00"}, amounts(d))

	require.NoError(t, d.Remove(1))
	assert.Equal(t, []string{"90.00"}, amounts(d))

	assert.Error(t, d.Remove(0))
}

func TestSplitDraft_SetTotal(t *testing.T) {
	d := NewSplitDraft(dec("100"))
	d.Enable()
	require.NoError(t, d.SetAmount(0, dec("25")))

	d.SetTotal(dec("80"))
	assert.Equal(t, []string{"25.00", "55.00"}, amounts(d))
	assert.True(t, d.Remaining().IsZero())

	d.SetTotal(dec("20"))
	assert.Equal(t, []string{"25.00"}, amounts(d))
	assert.Equal(t, "-5", d.Remaining().String())
}

func TestSplitDraft_Validate(t *testing.T) {
	d := NewSplitDraft(dec("100"))
	require.NoError(t, d.Validate(), "split mode off only needs a positive total")

	d.Enable()
	require.NoError(t, d.SetAmount(0, dec("60")))

	err := d.Validate()
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("splits[0].category_id"))
	assert.NotNil(t, verrs.Field("splits[1].category_id"))
	assert.Nil(t, verrs.Field("splits"))

	require.NoError(t, d.SetCategory(0, 4))
	require.NoError(t, d.SetCategory(1, 5))
	require.NoError(t, d.SetNotes(1, "rest"))
	require.NoError(t, d.Validate())

	inputs := d.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, SplitInput{CategoryID: 4, Amount: 60}, inputs[0])
	assert.Equal(t, SplitInput{CategoryID: 5, Amount: 40, Notes: "rest"}, inputs[1])

	// Shrinking the total under the first split leaves it over-allocated
	d.SetTotal(dec("50"))
	err = d.Validate()
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("splits"))
}

func TestSplitDraft_Inputs_RoundsToCents(t *testing.T) {
	d := NewSplitDraft(dec("10"))
	d.Enable()
	require.NoError(t, d.SetAmount(0, dec("3.333")))

	inputs := d.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, 3.33, inputs[0].Amount)
	assert.Equal(t, 6.67, inputs[1].Amount)
}

func TestReconcileSplits(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		splits []SplitInput
		fields []string
	}{
		{
			name:   "exact",
			total:  100,
			splits: []SplitInput{{CategoryID: 1, Amount: 60}, {CategoryID: 2, Amount: 40}},
		},
		{
			name:   "thirds within a cent",
			total:  100,
			splits: []SplitInput{{CategoryID: 1, Amount: 33.33}, {CategoryID: 2, Amount: 33.33}, {CategoryID: 3, Amount: 33.33}},
		},
		{
			name:   "float noise",
			total:  0.3,
			splits: []SplitInput{{CategoryID: 1, Amount: 0.1}, {CategoryID: 2, Amount: 0.2}},
		},
		{
			name:   "off by two cents",
			total:  100,
			splits: []SplitInput{{CategoryID: 1, Amount: 60}, {CategoryID: 2, Amount: 39.98}},
			fields: []string{"splits"},
		},
		{
			name:   "missing category and zero amount",
			total:  50,
			splits: []SplitInput{{Amount: 50}, {CategoryID: 2, Amount: 0}},
			fields: []string{"splits[0].category_id", "splits[1].amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReconcileSplits(tt.total, tt.splits)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs *ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Len(t, verrs.Errors, len(tt.fields))
			for _, field := range tt.fields {
				assert.NotNil(t, verrs.Field(field), field)
			}
		})
	}
}
