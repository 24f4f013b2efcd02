package achievements

import (
	"log"

	"github.com/ini272/majordomo/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// criteriaMet evaluates one achievement against a stats snapshot.
func criteriaMet(a *models.Achievement, stats *UserStats) bool {
	switch a.CriteriaType {
	case models.CriteriaQuestsCompleted:
		return stats.QuestsCompleted >= a.CriteriaValue
	case models.CriteriaLevelReached:
		return stats.Level >= a.CriteriaValue
	case models.CriteriaGoldEarned:
		return stats.GoldEarned >= a.CriteriaValue
	case models.CriteriaXPEarned:
		return stats.XP >= int64(a.CriteriaValue)
	case models.CriteriaBountiesCompleted:
		return stats.BountiesCompleted >= a.CriteriaValue
	default:
		return false
	}
}

// CheckAndAward re-evaluates every reachable achievement against the user's
// current stats and returns the newly unlocked ones. Already-unlocked rows
// are skipped by the idempotent insert.
func (s *Service) CheckAndAward(userID, homeID int64) ([]models.UserAchievement, error) {
	stats, err := s.store.Stats(userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.store.ListForHome(homeID)
	if err != nil {
		return nil, err
	}

	newly := []models.UserAchievement{}
	for i := range achievements {
		a := &achievements[i]
		if !criteriaMet(a, stats) {
			continue
		}
		unlocked, err := s.store.Unlock(userID, a.ID)
		if err != nil {
			log.Printf("[achievements] failed to unlock %d for user %d: %v", a.ID, userID, err)
			continue
		}
		if unlocked != nil {
			newly = append(newly, *unlocked)
		}
	}

	return newly, nil
}
