package gtfs

import "testing"

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantOK  bool
	}{
		{"08:00:00", 480, true},
		{"00:00:00", 0, true},
		{"23:59:59", 23*60 + 59, true},
		{"24:05:00", 24*60 + 5, true}, // next-day service
		{"27:30:00", 27*60 + 30, true},
		{" 08:15:00 ", 495, true},
		{"8:05:30", 485, true},
		{"", 0, false},
		{"08:00", 0, false},
		{"08:60:00", 0, false},
		{"08:00:61", 0, false},
		{"-1:00:00", 0, false},
		{"ab:cd:ef", 0, false},
		{"08.00.00", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseScheduleTime(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseScheduleTime(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseScheduleTime(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTripDuration(t *testing.T) {
	tests := []struct {
		name      string
		departure string
		arrival   string
		want      int
		wantOK    bool
	}{
		{"same-morning trip", "08:00:00", "08:12:00", 12, true},
		{"zero-length hop", "08:00:00", "08:00:00", 0, true},
		{"overnight wrap encoded past 24h", "23:50:00", "24:05:00", 15, true},
		{"overnight wrap at plain clock times", "23:50:00", "00:05:00", 15, true},
		{"long next-day run", "23:00:00", "25:30:00", 150, true},
		{"bad departure", "xx:00:00", "08:12:00", 0, false},
		{"bad arrival", "08:00:00", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TripDuration(tt.departure, tt.arrival)
			if ok != tt.wantOK {
				t.Fatalf("TripDuration(%q, %q) ok = %v, want %v", tt.departure, tt.arrival, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("TripDuration(%q, %q) = %d, want %d", tt.departure, tt.arrival, got, tt.want)
			}
			if ok && got < 0 {
				t.Errorf("TripDuration returned negative minutes: %d", got)
			}
		})
	}
}
