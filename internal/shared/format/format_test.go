package format

import "testing"

func TestGrouped(t *testing.T) {
	cases := []struct {
		v    float64
		d    int
		want string
	}{
		{1234567.891, 2, "1,234,567.89"},
		{999, 0, "999"},
		{1000, 0, "1,000"},
		{0.5, 2, "0.50"},
		{-1234.5, 1, "-1,234.5"},
		{-0.001, 2, "0.00"},
	}
	for _, c := range cases {
		if got := Grouped(c.v, c.d); got != c.want {
			t.Fatalf("Grouped(%v,%d)=%q want=%q", c.v, c.d, got, c.want)
		}
	}
}

func TestUSDAndPercent(t *testing.T) {
	if got := USD(1500000, 0); got != "$1,500,000" {
		t.Fatalf("USD=%q", got)
	}
	if got := USD(-12.5, 2); got != "-$12.50" {
		t.Fatalf("USD negative=%q", got)
	}
	if got := Percent(0.1234, 2); got != "12.34%" {
		t.Fatalf("Percent=%q", got)
	}
}
