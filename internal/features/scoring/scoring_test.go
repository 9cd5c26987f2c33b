package scoring

import (
	"errors"
	"testing"

	"serotonyl.ru/progress-bot/internal/common"
)

func TestCalculateScoreExamples(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Score
	}{
		{
			name: "good day",
			in:   Inputs{StudyHours: 6, WastedHours: 0, WakeTime: "06:30", TasksAssigned: 5, TasksCompleted: 5},
			want: Score{Total: 55, Breakdown: Breakdown{Study: 30, Tasks: 15, Wake: 10, Waste: 0}},
		},
		{
			name: "bad day",
			in:   Inputs{StudyHours: 0, WastedHours: 4, WakeTime: "09:00", TasksAssigned: 5, TasksCompleted: 2},
			want: Score{Total: -30, Breakdown: Breakdown{Study: 0, Tasks: -10, Wake: 0, Waste: -20}},
		},
		{
			name: "no tasks assigned",
			in:   Inputs{StudyHours: 1, WakeTime: "05:45", TasksAssigned: 0, TasksCompleted: 3},
			want: Score{Total: 20, Breakdown: Breakdown{Study: 5, Tasks: 0, Wake: 15, Waste: 0}},
		},
		{
			name: "fractional hours round",
			in:   Inputs{StudyHours: 2.5, WastedHours: 0.5, WakeTime: "08:00", TasksAssigned: 10, TasksCompleted: 9},
			want: Score{Total: 15, Breakdown: Breakdown{Study: 13, Tasks: 0, Wake: 5, Waste: -3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateScore(tt.in)
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestCalculateScoreDeterministic(t *testing.T) {
	in := Inputs{StudyHours: 3.7, WastedHours: 1.1, WakeTime: "07:00", TasksAssigned: 7, TasksCompleted: 8}
	first := CalculateScore(in)
	for i := 0; i < 100; i++ {
		if got := CalculateScore(in); got != first {
			t.Fatalf("run %d: got %+v want %+v", i, got, first)
		}
	}
}

func TestTaskPointsBrackets(t *testing.T) {
	tests := []struct {
		assigned, completed int
		want                int
	}{
		{100, 180, 30},
		{100, 179, 25},
		{100, 150, 25},
		{100, 149, 20},
		{100, 120, 20},
		{100, 100, 15},
		{5, 5, 15},
		{100, 99, 10},
		{100, 91, 10},
		{100, 90, 0},
		{100, 81, 0},
		{100, 80, -10},
		{5, 0, -10},
		{0, 0, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := TaskPoints(tt.assigned, tt.completed); got != tt.want {
			t.Fatalf("TaskPoints(%d, %d)=%d want %d", tt.assigned, tt.completed, got, tt.want)
		}
	}
}

func TestWakePointsInclusive(t *testing.T) {
	tests := []struct {
		wake string
		want int
	}{
		{"04:00", 15},
		{"06:00", 15},
		{"06:01", 10},
		{"7:00", 10},
		{"07:00", 10},
		{"07:01", 5},
		{"08:00", 5},
		{"08:01", 0},
		{"23:59", 0},
	}
	for _, tt := range tests {
		minutes, err := ParseWakeTime(tt.wake)
		if err != nil {
			t.Fatalf("ParseWakeTime(%q): %v", tt.wake, err)
		}
		if got := WakePoints(minutes); got != tt.want {
			t.Fatalf("WakePoints(%q)=%d want %d", tt.wake, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := Inputs{StudyHours: 1, WakeTime: "07:00", TasksAssigned: 1, TasksCompleted: 1}
	tests := []struct {
		name    string
		mutate  func(in *Inputs)
		wantErr bool
	}{
		{"valid", func(in *Inputs) {}, false},
		{"zero assigned is fine", func(in *Inputs) { in.TasksAssigned = 0 }, false},
		{"negative study", func(in *Inputs) { in.StudyHours = -1 }, true},
		{"negative waste", func(in *Inputs) { in.WastedHours = -0.5 }, true},
		{"negative break", func(in *Inputs) { in.BreakHours = -2 }, true},
		{"too many hours", func(in *Inputs) { in.StudyHours = 25 }, true},
		{"negative tasks", func(in *Inputs) { in.TasksCompleted = -1 }, true},
		{"hour out of range", func(in *Inputs) { in.WakeTime = "25:00" }, true},
		{"minute out of range", func(in *Inputs) { in.WakeTime = "07:60" }, true},
		{"garbage minutes", func(in *Inputs) { in.WakeTime = "7:5x" }, true},
		{"no colon", func(in *Inputs) { in.WakeTime = "0700" }, true},
		{"empty", func(in *Inputs) { in.WakeTime = "" }, true},
		{"signed", func(in *Inputs) { in.WakeTime = "-7:00" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			err := in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, common.ErrValidation) {
				t.Fatalf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}
