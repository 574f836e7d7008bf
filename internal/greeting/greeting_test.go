package greeting

import (
	"testing"
	"time"
)

func TestForHour(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, Night},
		{3, Night},
		{4, Morning},
		{11, Morning},
		{12, Day},
		{17, Day},
		{18, Evening},
		{22, Evening},
		{23, Night},
	}
	for _, tt := range tests {
		if got := ForHour(tt.hour); got != tt.want {
			t.Errorf("ForHour(%d) = %q; want %q", tt.hour, got, tt.want)
		}
	}
}

func TestAt(t *testing.T) {
	ts := time.Date(2020, 5, 20, 13, 5, 0, 0, time.UTC)
	if got := At(ts); got != Day {
		t.Errorf("At(%v) = %q; want %q", ts, got, Day)
	}
}
