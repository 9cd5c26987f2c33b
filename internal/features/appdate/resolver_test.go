package appdate

import (
	"errors"
	"testing"
	"time"

	"serotonyl.ru/progress-bot/internal/common"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return loc
}

func TestResolveAppDateCutoff(t *testing.T) {
	r := New(DefaultCutoffHour)
	msk := mustLoc(t, "Europe/Moscow")

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"04:59 is previous day", time.Date(2024, 5, 2, 4, 59, 0, 0, msk), "2024-05-01"},
		{"05:00 is current day", time.Date(2024, 5, 2, 5, 0, 0, 0, msk), "2024-05-02"},
		{"midnight is previous day", time.Date(2024, 5, 2, 0, 0, 0, 0, msk), "2024-05-01"},
		{"late evening", time.Date(2024, 5, 2, 23, 59, 0, 0, msk), "2024-05-02"},
		{"year boundary", time.Date(2024, 1, 1, 3, 0, 0, 0, msk), "2023-12-31"},
		{"month boundary", time.Date(2024, 3, 1, 1, 0, 0, 0, msk), "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveAppDate(tt.now, "Europe/Moscow")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestResolveAppDateUsesTimezone(t *testing.T) {
	r := New(DefaultCutoffHour)
	// 01:30 UTC: в Москве 04:30 (ещё вчера), в Токио 10:30 (уже сегодня)
	now := time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC)

	got, err := r.ResolveAppDate(now, "Europe/Moscow")
	if err != nil || got != "2024-05-01" {
		t.Fatalf("moscow: got %s err %v", got, err)
	}
	got, err = r.ResolveAppDate(now, "Asia/Tokyo")
	if err != nil || got != "2024-05-02" {
		t.Fatalf("tokyo: got %s err %v", got, err)
	}
}

func TestResolveAppDateBadTimezone(t *testing.T) {
	r := New(DefaultCutoffHour)
	_, err := r.ResolveAppDate(time.Now(), "Mars/Olympus")
	if !errors.Is(err, common.ErrInvalidTimezone) {
		t.Fatalf("want ErrInvalidTimezone, got %v", err)
	}
}

func TestTodayUsesInjectedClock(t *testing.T) {
	r := New(DefaultCutoffHour)
	r.Now = func() time.Time { return time.Date(2024, 7, 10, 2, 0, 0, 0, time.UTC) }
	got, err := r.Today("UTC")
	if err != nil || got != "2024-07-09" {
		t.Fatalf("got %s err %v", got, err)
	}
}

func TestNextCutoff(t *testing.T) {
	r := New(DefaultCutoffHour)
	msk := mustLoc(t, "Europe/Moscow")

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before cutoff", time.Date(2024, 5, 2, 3, 0, 0, 0, msk), time.Date(2024, 5, 2, 5, 0, 0, 0, msk)},
		{"exactly at cutoff", time.Date(2024, 5, 2, 5, 0, 0, 0, msk), time.Date(2024, 5, 3, 5, 0, 0, 0, msk)},
		{"after cutoff", time.Date(2024, 5, 2, 18, 0, 0, 0, msk), time.Date(2024, 5, 3, 5, 0, 0, 0, msk)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.NextCutoff(tt.now, "Europe/Moscow")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}

	d, err := r.UntilNextCutoff(time.Date(2024, 5, 2, 4, 30, 0, 0, msk), "Europe/Moscow")
	if err != nil || d != 30*time.Minute {
		t.Fatalf("UntilNextCutoff: got %s err %v", d, err)
	}
}

func TestIsSameAppDay(t *testing.T) {
	if !IsSameAppDay("2024-05-01", "2024-05-01") {
		t.Fatal("same date must match")
	}
	if IsSameAppDay("2024-05-01", "2024-05-02") {
		t.Fatal("different dates must not match")
	}
	if IsSameAppDay("2024-5-1", "2024-05-01") {
		t.Fatal("malformed date must not match")
	}
}

func TestNormalizeDate(t *testing.T) {
	if got, err := NormalizeDate("2024-02-29"); err != nil || got != "2024-02-29" {
		t.Fatalf("got %s err %v", got, err)
	}
	for _, bad := range []string{"", "2024-02-30", "01.05.2024", "2024/05/01"} {
		if _, err := NormalizeDate(bad); !errors.Is(err, common.ErrInvalidDate) {
			t.Fatalf("NormalizeDate(%q): want ErrInvalidDate, got %v", bad, err)
		}
	}
}
