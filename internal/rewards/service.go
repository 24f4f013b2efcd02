package rewards

import (
	"log"
	"time"

	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/users"
)

const (
	xpBoostCharges = 3
	shieldDuration = 24 * time.Hour
)

type Service struct {
	store *Store
	users *users.Store
}

func NewService(store *Store, userStore *users.Store) *Service {
	return &Service{store: store, users: userStore}
}

// Claim spends gold on a reward and arms its consumable effect, if any.
// The gold debit enforces the non-negative balance; an effect that is
// already active refunds the debit and reports a conflict.
func (s *Service) Claim(homeID, userID, rewardID int64, now time.Time) (*models.ClaimRewardResponse, error) {
	reward, err := s.store.Get(rewardID, homeID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.AddGold(userID, -reward.Cost)
	if err != nil {
		return nil, err
	}

	if reward.Effect != nil {
		var effectErr error
		switch *reward.Effect {
		case models.EffectXPBoost:
			effectErr = s.users.SetXPBoost(userID, xpBoostCharges)
		case models.EffectShield:
			effectErr = s.users.SetShield(userID, now.Add(shieldDuration))
		}
		if effectErr != nil {
			if refunded, rerr := s.users.AddGold(userID, reward.Cost); rerr != nil {
				log.Printf("[rewards] failed to refund %d gold to user %d: %v", reward.Cost, userID, rerr)
			} else {
				user = refunded
			}
			return nil, effectErr
		}
	}

	claim, err := s.store.InsertClaim(userID, rewardID)
	if err != nil {
		return nil, err
	}

	return &models.ClaimRewardResponse{Claim: claim, GoldRemaining: user.GoldBalance}, nil
}
