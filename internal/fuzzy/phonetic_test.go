package fuzzy

import "testing"

func TestPhoneticKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Lakshmi", "LXM"},
		{"Laxmi", "LXM"},
		{"Ramesh Kumar", "RMX KMR"},
		{"Mohammed", "MD"},
		{"Phillip", "FLP"},
		{"  ", ""},
		{"42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhoneticKey(tt.name); got != tt.want {
				t.Errorf("PhoneticKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSoundsAlike(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Lakshmi Devi", "Laxmi Devi", true},
		{"Ramesh", "Rameesh", true},
		{"Mohammed Ali", "Muhammad Ali", true},
		{"Ramesh", "Rajesh", false},
		{"Ramesh Kumar", "Ramesh", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := SoundsAlike(tt.a, tt.b); got != tt.want {
				t.Errorf("SoundsAlike(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
