package debug

import (
	"testing"
)

func TestInit(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := Init(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestDebugTimingDisabled(t *testing.T) {
	done := DebugTiming(false, "noop")
	if done == nil {
		t.Fatal("DebugTiming returned nil func")
	}
	done()
}
