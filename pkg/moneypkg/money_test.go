package moneypkg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "Plain", input: "2500", want: 2500},
		{name: "Whitespace", input: " 100 ", want: 100},
		{name: "TrailingZeroFraction", input: "300.00", want: 300},
		{name: "Zero", input: "0", want: 0},
		{name: "Negative", input: "-50", want: -50},
		{name: "MaxInt64", input: "9223372036854775807", want: 9223372036854775807},
		{name: "OverflowsInt64", input: "9223372036854775808", wantErr: ErrInvalidAmount},
		{name: "WrapsToSmallValue", input: "18446744073709551617", wantErr: ErrInvalidAmount},
		{name: "HugeMagnitude", input: "100000000000000000000", wantErr: ErrInvalidAmount},
		{name: "Fractional", input: "99.99", wantErr: ErrInvalidAmount},
		{name: "NonNumeric", input: "сто", wantErr: ErrInvalidAmount},
		{name: "Empty", input: "", wantErr: ErrInvalidAmount},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		amount int64
		want   string
	}{
		{amount: 0, want: "+0 ₽"},
		{amount: 500, want: "+500 ₽"},
		{amount: -2500, want: "-2 500 ₽"},
		{amount: 65000, want: "+65 000 ₽"},
		{amount: 1234567, want: "+1 234 567 ₽"},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, Format(tc.amount))
		})
	}
}
