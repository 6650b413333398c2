package services

import "testing"

func TestGreeting(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ana", "Welcome back, Ana!"},
		{"", "Welcome back, !"},
		{"bo#zz999", "Welcome back, bo#zz999!"},
	}

	for _, tt := range tests {
		if got := Greeting(tt.name); got != tt.want {
			t.Errorf("Greeting(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
