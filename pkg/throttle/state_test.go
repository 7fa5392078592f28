package throttle

import (
	"testing"
	"time"
)

func TestParseCallLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUsed int
		wantMax  int
		wantErr  bool
	}{
		{"typical", "32/40", 32, 40, false},
		{"exhausted", "40/40", 40, 40, false},
		{"whitespace", " 5 / 40 ", 5, 40, false},
		{"empty", "", 0, 0, true},
		{"no separator", "3240", 0, 0, true},
		{"non numeric used", "x/40", 0, 0, true},
		{"non numeric max", "32/y", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used, max, err := ParseCallLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCallLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if used != tt.wantUsed || max != tt.wantMax {
				t.Errorf("ParseCallLimit(%q) = %d/%d, want %d/%d", tt.input, used, max, tt.wantUsed, tt.wantMax)
			}
		})
	}
}

func TestState_Thresholds(t *testing.T) {
	tests := []struct {
		name         string
		used, max    int
		wantBlock    bool
		wantThrottle bool
	}{
		{"plenty of headroom", 10, 40, false, false},
		{"warning zone", 35, 40, false, true},
		{"critical", 39, 40, true, false},
		{"exhausted", 40, 40, true, false},
		{"overshoot clamps to zero", 45, 40, true, false},
		{"unknown bucket is open", 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{Used: tt.used, Max: tt.max, UpdatedAt: time.Now()}
			if got := s.NeedsBlock(); got != tt.wantBlock {
				t.Errorf("NeedsBlock() = %v, want %v", got, tt.wantBlock)
			}
			if got := s.NeedsThrottling(); got != tt.wantThrottle {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.wantThrottle)
			}
		})
	}
}

func TestState_Staleness(t *testing.T) {
	fresh := State{Used: 1, Max: 40, UpdatedAt: time.Now()}
	if fresh.IsStale() {
		t.Error("just-updated state reported stale")
	}

	old := State{Used: 1, Max: 40, UpdatedAt: time.Now().Add(-time.Minute)}
	if !old.IsStale() {
		t.Error("minute-old state not reported stale")
	}
}

func TestState_Remaining(t *testing.T) {
	s := State{Used: 45, Max: 40}
	if got := s.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0 when overshot", got)
	}
}
