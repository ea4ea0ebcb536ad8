package accounting_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGSTComponent(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		ratio         string
		wantGST       string
		wantExclusive string
	}{
		{name: "full claim sale", amount: "115", ratio: "1", wantGST: "15.00", wantExclusive: "100.00"},
		{name: "entertainment outflow", amount: "-200", ratio: "0.5", wantGST: "-13.04", wantExclusive: "-186.96"},
		{name: "zero rated", amount: "-57.50", ratio: "0", wantGST: "0.00", wantExclusive: "-57.50"},
		{name: "zero amount", amount: "0", ratio: "1", wantGST: "0.00", wantExclusive: "0.00"},
		{name: "full claim outflow", amount: "-23", ratio: "1", wantGST: "-3.00", wantExclusive: "-20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gst := accounting.GSTComponent(d(tt.amount), accounting.DefaultGSTRate, d(tt.ratio))
			assert.Equal(t, tt.wantGST, accounting.FormatMoney(gst))
			assert.Equal(t, tt.wantExclusive, accounting.FormatMoney(accounting.Exclusive(d(tt.amount), gst)))
		})
	}
}

func TestGSTComponent_KeepsFullPrecision(t *testing.T) {
	gst := accounting.GSTComponent(d("-200"), accounting.DefaultGSTRate, d("0.5"))
	assert.False(t, gst.Equal(accounting.RoundMoney(gst)), "internal value must not be rounded")
}

func TestValidateRatio(t *testing.T) {
	assert.NoError(t, accounting.ValidateRatio(d("0")))
	assert.NoError(t, accounting.ValidateRatio(d("1")))
	assert.NoError(t, accounting.ValidateRatio(d("0.5")))
	assert.Error(t, accounting.ValidateRatio(d("-0.01")))
	assert.Error(t, accounting.ValidateRatio(d("1.01")))
	assert.NoError(t, accounting.ValidateRatio(d("0.3333")))
	assert.NoError(t, accounting.ValidateRatio(d("0.500000")), "trailing zeros are not extra precision")
	assert.Error(t, accounting.ValidateRatio(d("0.333333")), "more places than storage keeps")
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, accounting.ValidateRate(d("0.15")))
	assert.NoError(t, accounting.ValidateRate(d("0")))
	assert.Error(t, accounting.ValidateRate(d("-0.15")))
	assert.Error(t, accounting.ValidateRate(d("0.12345")))
}

func TestValidateBalance(t *testing.T) {
	assert.NoError(t, accounting.ValidateBalance(d("100.004"), d("100.001")))
	assert.NoError(t, accounting.ValidateBalance(d("100.01"), d("100.00")))

	err := accounting.ValidateBalance(d("100.02"), d("100.00"))
	assert.True(t, errors.Is(err, apperrors.ErrJournalImbalance))
}
