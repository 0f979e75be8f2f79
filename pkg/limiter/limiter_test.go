package limiter

import (
	"math"
	"testing"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		in      string
		perSec  float64
		wantErr bool
	}{
		{"5-S", 5, false},
		{"120-M", 2, false},
		{"3600-H", 1, false},
		{"86400-D", 1, false},
		{"30000-H", 30000.0 / 3600.0, false},
		{"abc-S", 0, true},
		{"5-X", 0, true},
		{"5", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		rate, err := ParseLimit(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLimit(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLimit(%q): %v", tc.in, err)
			continue
		}
		if math.Abs(rate.Rate-tc.perSec) > 1e-9 {
			t.Errorf("ParseLimit(%q) = %v, want %v", tc.in, rate.Rate, tc.perSec)
		}
	}
}

func TestRouteToKeyString(t *testing.T) {
	got := routeToKeyString("/v1/tasks/:id/complete")
	if got != "-v1-tasks-_id-complete" {
		t.Errorf("routeToKeyString = %q", got)
	}
}
