package money_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/money"
)

func TestToMajorUnits(t *testing.T) {
	cases := map[int64]int64{
		0:      0,
		1:      0,
		49:     0,
		50:     1,
		99:     1,
		100:    1,
		149:    1,
		150:    2,
		180:    2,
		1000:   10,
		1180:   12,
		123456: 1235,
	}
	for minor, want := range cases {
		require.Equal(t, want, money.ToMajorUnits(minor), "minor=%d", minor)
	}
}

func TestToMajorUnitsNegativeRoundsTowardPositive(t *testing.T) {
	require.Equal(t, int64(-1), money.ToMajorUnits(-150))
	require.Equal(t, int64(0), money.ToMajorUnits(-50))
}

func TestSplitDomesticTax(t *testing.T) {
	for total := int64(0); total <= 41; total++ {
		split := money.SplitDomesticTax(total, true)
		require.Equal(t, split.CGST, split.SGST)
		require.Zero(t, split.IGST)
		sum := split.CGST + split.SGST
		if total%2 == 0 {
			require.Equal(t, total, sum)
		} else {
			require.Equal(t, int64(1), sum-total)
		}
	}

	require.Equal(t, money.TaxSplit{CGST: 9, SGST: 9}, money.SplitDomesticTax(18, true))
	require.Equal(t, money.TaxSplit{CGST: 1, SGST: 1}, money.SplitDomesticTax(2, true))
	require.Equal(t, money.TaxSplit{}, money.SplitDomesticTax(18, false))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "Rs. 0.00", money.Format("INR", 0))
	require.Equal(t, "Rs. 1,180.00", money.Format("inr", 1180))
	require.Equal(t, "$1,234,567.00", money.Format("USD", 1234567))
	require.Equal(t, "-Rs. 50.00", money.Format("INR", -50))
	require.Equal(t, "AED 12.00", money.Format("aed", 12))
	require.Equal(t, "Rs. 12.00", money.FormatMinor("INR", 1180))
}

func TestIsDomesticCurrency(t *testing.T) {
	require.True(t, money.IsDomesticCurrency("inr"))
	require.True(t, money.IsDomesticCurrency(" INR "))
	require.False(t, money.IsDomesticCurrency("usd"))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	require.Equal(t, "05 Mar 2024", money.FormatDate(ts))
	require.Equal(t, "05 Mar 2024, 14:30", money.FormatDateTime(ts))
	require.Empty(t, money.FormatDate(time.Time{}))
}
