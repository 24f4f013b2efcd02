package quests

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, raw string) *Schedule {
	t.Helper()
	sched, err := ParseSchedule(raw)
	if err != nil {
		t.Fatalf("ParseSchedule(%s) failed: %v", raw, err)
	}
	return sched
}

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func tsp(value string) *time.Time {
	t := ts(value)
	return &t
}

func TestParseScheduleRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json at all"},
		{"unknown type", `{"type": "hourly", "time": "08:00"}`},
		{"missing time", `{"type": "daily"}`},
		{"malformed time", `{"type": "daily", "time": "eight"}`},
		{"hour out of range", `{"type": "daily", "time": "24:00"}`},
		{"minute out of range", `{"type": "daily", "time": "08:60"}`},
		{"weekly without day", `{"type": "weekly", "time": "08:00"}`},
		{"weekly bad day name", `{"type": "weekly", "time": "08:00", "day": "someday"}`},
		{"weekly numeric day", `{"type": "weekly", "time": "08:00", "day": 3}`},
		{"monthly day zero", `{"type": "monthly", "time": "08:00", "day": 0}`},
		{"monthly day too large", `{"type": "monthly", "time": "08:00", "day": 32}`},
		{"monthly string day", `{"type": "monthly", "time": "08:00", "day": "first"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchedule(tt.raw); err == nil {
				t.Errorf("ParseSchedule(%s) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	daily := `{"type": "daily", "time": "08:00"}`
	weekly := `{"type": "weekly", "time": "18:30", "day": "friday"}`

	tests := []struct {
		name       string
		recurrence string
		schedule   *string
		wantErr    bool
	}{
		{"one-off without schedule", "one-off", nil, false},
		{"one-off with schedule", "one-off", &daily, true},
		{"daily with matching schedule", "daily", &daily, false},
		{"daily without schedule", "daily", nil, true},
		{"recurrence type mismatch", "daily", &weekly, true},
		{"weekly with matching schedule", "weekly", &weekly, false},
		{"unknown recurrence", "fortnightly", &daily, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.recurrence, tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSchedule(%s) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestNextGenerationTimeDaily(t *testing.T) {
	sched := mustParse(t, `{"type": "daily", "time": "08:00"}`)

	tests := []struct {
		name string
		now  time.Time
		last *time.Time
		want time.Time
	}{
		{
			// Catch-up: a brand new schedule fires today even though 08:00 passed.
			name: "never generated, time already past",
			now:  ts("2026-03-10 14:00"),
			want: ts("2026-03-10 08:00"),
		},
		{
			name: "never generated, time still ahead",
			now:  ts("2026-03-10 06:00"),
			want: ts("2026-03-10 08:00"),
		},
		{
			name: "generated earlier today",
			now:  ts("2026-03-10 09:00"),
			last: tsp("2026-03-10 08:01"),
			want: ts("2026-03-11 08:00"),
		},
		{
			name: "generated yesterday",
			now:  ts("2026-03-10 06:00"),
			last: tsp("2026-03-09 08:00"),
			want: ts("2026-03-10 08:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextGenerationTime(tt.now, tt.last, sched)
			if err != nil {
				t.Fatalf("NextGenerationTime() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextGenerationTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextGenerationTimeWeekly(t *testing.T) {
	sched := mustParse(t, `{"type": "weekly", "time": "08:00", "day": "wednesday"}`)

	// 2026-03-10 is a Tuesday.
	tests := []struct {
		name string
		now  time.Time
		last *time.Time
		want time.Time
	}{
		{
			name: "day ahead this week",
			now:  ts("2026-03-10 12:00"),
			want: ts("2026-03-11 08:00"),
		},
		{
			name: "target day, time not yet passed",
			now:  ts("2026-03-11 06:00"),
			want: ts("2026-03-11 08:00"),
		},
		{
			name: "target day, time already passed",
			now:  ts("2026-03-11 09:00"),
			want: ts("2026-03-18 08:00"),
		},
		{
			name: "day already passed this week wraps forward",
			now:  ts("2026-03-13 12:00"),
			want: ts("2026-03-18 08:00"),
		},
		{
			name: "recent generation pushes a week out",
			now:  ts("2026-03-10 12:00"),
			last: tsp("2026-03-09 08:00"),
			want: ts("2026-03-18 08:00"),
		},
		{
			name: "old generation does not push",
			now:  ts("2026-03-10 12:00"),
			last: tsp("2026-03-01 08:00"),
			want: ts("2026-03-11 08:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextGenerationTime(tt.now, tt.last, sched)
			if err != nil {
				t.Fatalf("NextGenerationTime() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextGenerationTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextGenerationTimeMonthly(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		now  time.Time
		last *time.Time
		want time.Time
	}{
		{
			name: "later this month",
			raw:  `{"type": "monthly", "time": "09:00", "day": 15}`,
			now:  ts("2026-03-10 12:00"),
			want: ts("2026-03-15 09:00"),
		},
		{
			name: "already passed this month rolls forward",
			raw:  `{"type": "monthly", "time": "09:00", "day": 5}`,
			now:  ts("2026-03-10 12:00"),
			want: ts("2026-04-05 09:00"),
		},
		{
			name: "generated this month targets next month",
			raw:  `{"type": "monthly", "time": "09:00", "day": 15}`,
			now:  ts("2026-03-10 12:00"),
			last: tsp("2026-03-01 09:00"),
			want: ts("2026-04-15 09:00"),
		},
		{
			name: "day 31 clamps in non-leap february",
			raw:  `{"type": "monthly", "time": "09:00", "day": 31}`,
			now:  ts("2026-02-10 12:00"),
			want: ts("2026-02-28 09:00"),
		},
		{
			name: "day 31 clamps in leap february",
			raw:  `{"type": "monthly", "time": "09:00", "day": 31}`,
			now:  ts("2028-02-10 12:00"),
			want: ts("2028-02-29 09:00"),
		},
		{
			name: "december rolls into january",
			raw:  `{"type": "monthly", "time": "09:00", "day": 15}`,
			now:  ts("2026-12-20 12:00"),
			want: ts("2027-01-15 09:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextGenerationTime(tt.now, tt.last, mustParse(t, tt.raw))
			if err != nil {
				t.Fatalf("NextGenerationTime() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextGenerationTime() = %v, want %v", got, tt.want)
			}
		})
	}
}
