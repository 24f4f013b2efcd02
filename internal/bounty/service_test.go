package bounty

import (
	"testing"
	"time"

	"github.com/ini272/majordomo/internal/models"
)

func assigned(questID int64) *models.DailyBounty {
	return &models.DailyBounty{QuestID: &questID, Status: models.BountyStatusAssigned}
}

func TestFilterRepeat(t *testing.T) {
	tests := []struct {
		name       string
		candidates []int64
		yesterday  *models.DailyBounty
		want       []int64
	}{
		{
			name:       "no prior decision keeps pool",
			candidates: []int64{1, 2, 3},
			yesterday:  nil,
			want:       []int64{1, 2, 3},
		},
		{
			name:       "yesterday none_eligible keeps pool",
			candidates: []int64{1, 2},
			yesterday:  &models.DailyBounty{Status: models.BountyStatusNoneEligible},
			want:       []int64{1, 2},
		},
		{
			name:       "yesterday's pick excluded when alternatives exist",
			candidates: []int64{1, 2, 3},
			yesterday:  assigned(2),
			want:       []int64{1, 3},
		},
		{
			name:       "single candidate repeats rather than starve",
			candidates: []int64{2},
			yesterday:  assigned(2),
			want:       []int64{2},
		},
		{
			name:       "yesterday's pick no longer a candidate",
			candidates: []int64{4, 5},
			yesterday:  assigned(2),
			want:       []int64{4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterRepeat(tt.candidates, tt.yesterday)
			if len(got) != len(tt.want) {
				t.Fatalf("filterRepeat() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("filterRepeat() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLocalDateIn(t *testing.T) {
	// 2026-03-10 23:30 UTC is already the 11th in Tokyo but still the 10th
	// in New York.
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		tz      string
		want    string
		wantErr bool
	}{
		{"empty zone uses UTC", "", "2026-03-10", false},
		{"zone ahead of UTC rolls forward", "Asia/Tokyo", "2026-03-11", false},
		{"zone behind UTC stays", "America/New_York", "2026-03-10", false},
		{"unknown zone falls back to UTC", "Mars/Olympus", "2026-03-10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := localDateIn(tt.tz, now)
			if got != tt.want {
				t.Errorf("localDateIn(%q) = %s, want %s", tt.tz, got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("localDateIn(%q) err = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}

func TestPreviousDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-03-10", "2026-03-09"},
		{"2026-03-01", "2026-02-28"},
		{"2028-03-01", "2028-02-29"},
		{"2026-01-01", "2025-12-31"},
	}

	for _, tt := range tests {
		if got := previousDate(tt.date); got != tt.want {
			t.Errorf("previousDate(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}
