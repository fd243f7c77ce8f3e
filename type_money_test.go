package tradebook

import (
	"testing"
)

func TestQuantityPrice_RoundsHalfEven(t *testing.T) {
	testCases := []struct {
		name  string
		qty   float64
		price float64
		want  float64
	}{
		{name: "exact", qty: 10, price: 30, want: 300},
		{name: "two decimals kept", qty: 3, price: 10.11, want: 30.33},
		{name: "half rounds to even down", qty: 1, price: 0.125, want: 0.12},
		{name: "half rounds to even up", qty: 1, price: 0.135, want: 0.14},
		{name: "fractional quantity tie", qty: 2.5, price: 10.01, want: 25.02},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Q(tc.qty).Price(usd(tc.price))
			assertMoney(t, "Price()", got, tc.want)
		})
	}
}

func TestMoneyShare_Proportional(t *testing.T) {
	// 10 among a 3/10 split: 3.00, remainder 7.00.
	com := usd(10)
	frag := com.Share(Q(3), Q(10))
	assertMoney(t, "Share(3,10)", frag, 3)
	assertMoney(t, "remainder", com.Sub(frag), 7)

	// A share that does not divide evenly rounds half-even.
	com = usd(1)
	frag = com.Share(Q(1), Q(3))
	assertMoney(t, "Share(1,3)", frag, 0.33)
}

func TestMoneyOver_FourDecimalRatio(t *testing.T) {
	// 90 / 305 = 0.29508... -> 0.2951 -> 29.51%
	got := usd(90).Over(usd(305))
	if !got.Equal(Percent(29.51)) {
		t.Errorf("Over() = %v, want 29.51", got)
	}
}

func TestMoneyArithmetic_WeakCurrency(t *testing.T) {
	zero := Money{}
	sum := zero.Add(usd(10))
	if sum.Currency() != "USD" {
		t.Errorf("Add() currency = %q, want USD", sum.Currency())
	}
	assertMoney(t, "Add()", sum, 10)
}

func TestMoneySignedString(t *testing.T) {
	if got := usd(0).SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q, want %q", got, "-")
	}
	if got := usd(12).SignedString(); got[0] != '+' {
		t.Errorf("SignedString(12) = %q, want leading +", got)
	}
}
