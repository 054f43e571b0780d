package timezone

import (
	"testing"
	"time"
)

func TestLoadFallsBackToClinicZone(t *testing.T) {
	c, err := Load("Not/AZone")
	if err == nil {
		t.Fatalf("expected an error for an unknown zone")
	}
	if got := c.Location().String(); got != DefaultTimezone {
		t.Fatalf("expected %s, got %s", DefaultTimezone, got)
	}

	if _, err := Load(""); err == nil {
		t.Fatalf("empty zone must be reported")
	}

	c, err = Load("UTC")
	if err != nil || c.Location().String() != "UTC" {
		t.Fatalf("expected UTC, got %v %v", c.Location(), err)
	}
}

func TestPassedUsesClinicWallClock(t *testing.T) {
	npt := time.FixedZone("NPT", 5*3600+45*60)

	// 06:30 UTC is 12:15 in Kathmandu
	c := Fixed(npt, func() time.Time { return time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC) })

	if got := c.Now().Format("15:04"); got != "12:15" {
		t.Fatalf("Now() = %s, want 12:15", got)
	}

	cases := []struct {
		date, clock string
		want        bool
	}{
		{"2025-03-10", "12:00", true},
		{"2025-03-10", "13:00", false},
		{"2025-03-09", "16:00", true},
		{"2025-03-11", "10:00", false},
	}
	for _, tc := range cases {
		got, err := c.Passed(tc.date, tc.clock)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.date, tc.clock, err)
		}
		if got != tc.want {
			t.Fatalf("%s %s: passed = %v, want %v", tc.date, tc.clock, got, tc.want)
		}
	}

	if _, err := c.Passed("10/03/2025", "12:00"); err == nil {
		t.Fatalf("expected an error for a malformed date")
	}
}
