package download

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	cooldown := 750 * time.Millisecond
	max := 8 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 750 * time.Millisecond},
		{2, 1500 * time.Millisecond},
		{3, 3 * time.Second},
		{4, 6 * time.Second},
		{5, 8 * time.Second},
		{6, 8 * time.Second},
		{20, 8 * time.Second},
		{0, 750 * time.Millisecond},
		{-3, 750 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, cooldown, max); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffWithoutCap(t *testing.T) {
	if got := Backoff(4, time.Second, 0); got != 8*time.Second {
		t.Errorf("Backoff(4) without cap = %v, want 8s", got)
	}
}
