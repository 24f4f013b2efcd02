package achievements

import (
	"testing"

	"github.com/ini272/majordomo/internal/models"
)

func TestCriteriaMet(t *testing.T) {
	stats := &UserStats{
		QuestsCompleted:   10,
		Level:             4,
		XP:                650,
		GoldEarned:        320,
		BountiesCompleted: 2,
	}

	tests := []struct {
		name         string
		criteriaType string
		value        int
		want         bool
	}{
		{"quests met exactly", models.CriteriaQuestsCompleted, 10, true},
		{"quests not met", models.CriteriaQuestsCompleted, 11, false},
		{"level met", models.CriteriaLevelReached, 3, true},
		{"level not met", models.CriteriaLevelReached, 5, false},
		{"gold met", models.CriteriaGoldEarned, 300, true},
		{"gold not met", models.CriteriaGoldEarned, 500, false},
		{"xp met", models.CriteriaXPEarned, 650, true},
		{"xp not met", models.CriteriaXPEarned, 651, false},
		{"bounties met", models.CriteriaBountiesCompleted, 2, true},
		{"bounties not met", models.CriteriaBountiesCompleted, 5, false},
		{"unknown criteria never met", "mystery", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &models.Achievement{CriteriaType: tt.criteriaType, CriteriaValue: tt.value}
			if got := criteriaMet(a, stats); got != tt.want {
				t.Errorf("criteriaMet(%s, %d) = %v, want %v", tt.criteriaType, tt.value, got, tt.want)
			}
		})
	}
}
