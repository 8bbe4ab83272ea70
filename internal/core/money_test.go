package core

import "testing"

func TestRound2(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{66.666666, 66.67},
		{0.125, 0.13},
		{100, 100},
		{-99.995, -100},
		{-0.001, 0},
		{19333.333333, 19333.33},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.out {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount("₹", 100, 0); got != "₹100" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmount("€", 12.5, 2); got != "€12.50" {
		t.Fatalf("got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDecimalKeepsSign(t *testing.T) {
	v, err := ParseDecimal("-150.5")
	if err != nil || v != -150.5 {
		t.Fatalf("got %v, %v", v, err)
	}
}
