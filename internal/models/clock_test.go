package models

import (
	"testing"
	"time"
)

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{80.25, 80.3},
		{99.94, 99.9},
		{99.95, 100},
		{66.666666, 66.7},
		{12.04, 12},
	}

	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp(-3) = %v, want 0", got)
	}
	if got := Clamp(130, 0, 100); got != 100 {
		t.Errorf("Clamp(130) = %v, want 100", got)
	}
	if got := Clamp(42.5, 0, 100); got != 42.5 {
		t.Errorf("Clamp(42.5) = %v, want 42.5", got)
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC)
	c := FixedClock{T: at}
	if !c.Now().Equal(at) {
		t.Errorf("FixedClock.Now() = %v, want %v", c.Now(), at)
	}
}

func TestDisasterIsActive(t *testing.T) {
	tests := []struct {
		status DisasterStatus
		want   bool
	}{
		{DisasterActive, true},
		{DisasterMonitoring, true},
		{DisasterResolved, false},
	}
	for _, tt := range tests {
		d := Disaster{Status: tt.status}
		if got := d.IsActive(); got != tt.want {
			t.Errorf("IsActive(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
