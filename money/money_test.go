package money

import "testing"

func TestToPaise(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1250.00", 125000, true},
		{"850", 85000, true},
		{"0.50", 50, true},
		{"199.9", 19990, true},
		{"0", 0, true},
		{"", 0, false},
		{"-10", 0, false},
		{"12.345", 0, false},
		{"12.", 0, false},
		{"1.-5", 0, false},
		{"1.+5", 0, false},
		{"+10", 0, false},
		{"abc", 0, false},
		{"1,250.00", 0, false},
	}

	for _, c := range cases {
		got, err := ToPaise(c.in)
		if c.ok && err != nil {
			t.Errorf("ToPaise(%q): unexpected error %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("ToPaise(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if got != c.want {
			t.Errorf("ToPaise(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromPaise(t *testing.T) {
	if got := FromPaise(125000); got != "1250.00" {
		t.Errorf("FromPaise(125000) = %q", got)
	}
	if got := FromPaise(5); got != "0.05" {
		t.Errorf("FromPaise(5) = %q", got)
	}
}
