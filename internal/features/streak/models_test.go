package streak

import (
	"strings"
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		prev  State
		score int
		want  State
	}{
		{"first positive day", State{0, 0}, 55, State{1, 1}},
		{"extends and sets record", State{4, 4}, 1, State{5, 5}},
		{"extends below record", State{2, 9}, 10, State{3, 9}},
		{"zero resets", State{6, 9}, 0, State{0, 9}},
		{"negative resets", State{9, 9}, -30, State{0, 9}},
		{"reset from nothing", State{0, 3}, -1, State{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.prev, tt.score); got != tt.want {
				t.Fatalf("Next(%+v, %d) = %+v, want %+v", tt.prev, tt.score, got, tt.want)
			}
		})
	}
}

func TestFlameLevel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, ""},
		{1, "🕯 Искра"},
		{3, "🔥 Огонёк"},
		{6, "🔥 Огонёк"},
		{7, "🔥🔥 Костёр"},
		{100, "💎 Легенда"},
	}
	for _, tt := range tests {
		if got := FlameLevel(tt.days); got != tt.want {
			t.Errorf("FlameLevel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestFormatStreak(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	got := formatStreak(&Streak{CurrentStreak: 8, BestStreak: 12, LastLogDate: &day})
	for _, want := range []string{"Костёр", "8 дней", "12 дней", "2024-05-01"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}

	got = formatStreak(&Streak{BestStreak: 3})
	if !strings.Contains(got, "погас") {
		t.Fatalf("empty streak: %q", got)
	}
}
