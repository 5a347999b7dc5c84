package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-01", "2024-03-01", true},
		{"2024-02-29", "2024-02-29", true},
		{"2024-03-01T18:45:00Z", "2024-03-01", true},
		{"2024-03-01T23:30:00+02:00", "2024-03-01", true},
		{"2023-02-29", "", false},
		{"01/03/2024", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok != (err == nil) {
			t.Fatalf("%q: unexpected error state %v", tc.in, err)
		}
		if !tc.ok {
			continue
		}
		if got.Format(DateLayout) != tc.want {
			t.Fatalf("%q: expected %s got %s", tc.in, tc.want, got.Format(DateLayout))
		}
		if got.Location() != time.UTC || got.Hour() != 0 || got.Minute() != 0 {
			t.Fatalf("%q: expected UTC midnight got %s", tc.in, got)
		}
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2024, 12, 31, 23, 59, 59, 999, time.UTC)
	got := Midnight(in)
	if !got.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected midnight %s", got)
	}
}
