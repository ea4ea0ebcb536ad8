package accounting

import (
	"fmt"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is rounded to for presentation.
const MoneyPlaces int32 = 2

// RatioPlaces is the most decimal places a claim ratio or GST rate may carry; storage keeps no more.
const RatioPlaces int32 = 4

var (
	// DefaultGSTRate is the New Zealand statutory GST rate.
	DefaultGSTRate = decimal.RequireFromString("0.15")

	// BalanceTolerance is the largest rounded difference tolerated between debits and credits.
	BalanceTolerance = decimal.RequireFromString("0.01")

	one = decimal.NewFromInt(1)
)

// GSTComponent returns the claimable GST contained in a GST-inclusive amount.
//
//	gst = amount * rate / (1 + rate) * ratio
//
// The multiplication happens before the division so exact cases (115 at 15% -> 15) stay exact.
// The result carries the sign of amount.
func GSTComponent(amount, rate, ratio decimal.Decimal) decimal.Decimal {
	if amount.IsZero() || ratio.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate).Mul(ratio).Div(one.Add(rate))
}

// Exclusive returns the GST-exclusive part of amount given its GST component.
func Exclusive(amount, gst decimal.Decimal) decimal.Decimal {
	return amount.Sub(gst)
}

// ValidateRatio checks a claim ratio lies within [0, 1] with at most RatioPlaces decimals.
func ValidateRatio(ratio decimal.Decimal) error {
	if ratio.IsNegative() || ratio.GreaterThan(one) {
		return fmt.Errorf("gst ratio %s must be between 0 and 1", ratio.String())
	}
	if !fitsPlaces(ratio) {
		return fmt.Errorf("gst ratio %s must have at most %d decimal places", ratio.String(), RatioPlaces)
	}
	return nil
}

// ValidateRate checks a statutory rate is non-negative with at most RatioPlaces decimals.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("gst rate %s must not be negative", rate.String())
	}
	if !fitsPlaces(rate) {
		return fmt.Errorf("gst rate %s must have at most %d decimal places", rate.String(), RatioPlaces)
	}
	return nil
}

func fitsPlaces(v decimal.Decimal) bool {
	return v.Equal(v.Truncate(RatioPlaces))
}

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// FormatMoney renders an amount with exactly two decimal places.
// Example: 13.0434782 returns "13.04"
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPlaces)
}

// ValidateBalance checks that debits and credits agree once rounded to cents.
func ValidateBalance(totalDebit, totalCredit decimal.Decimal) error {
	diff := RoundMoney(totalDebit).Sub(RoundMoney(totalCredit)).Abs()
	if diff.GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: debits %s, credits %s",
			apperrors.ErrJournalImbalance, FormatMoney(totalDebit), FormatMoney(totalCredit))
	}
	return nil
}
