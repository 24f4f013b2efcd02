package progression

import (
	"time"

	"github.com/ini272/majordomo/internal/models"
)

const (
	// Each corrupted quest in the home shaves 5% off payouts, capped at 50%.
	corruptionPenaltyPerQuest = 0.05
	corruptionPenaltyCap      = 0.50

	bountyMultiplier  = 2
	xpBoostMultiplier = 2
)

// BountyEligibilityAge is how old a quest must be before the daily bounty
// selector will consider it.
const BountyEligibilityAge = 48 * time.Hour

// ModifierState captures everything outside the quest itself that affects
// its payout at the moment of completion.
type ModifierState struct {
	CorruptedCount   int
	ShieldActive     bool
	IsDailyBounty    bool
	XPBoostRemaining int
}

// CorruptionDebuff returns the payout multiplier for a home with the given
// number of active corrupted quests. A shield suppresses the debuff entirely.
func CorruptionDebuff(corruptedCount int, shieldActive bool) float64 {
	if shieldActive || corruptedCount <= 0 {
		return 1.0
	}
	penalty := float64(corruptedCount) * corruptionPenaltyPerQuest
	if penalty > corruptionPenaltyCap {
		penalty = corruptionPenaltyCap
	}
	return 1.0 - penalty
}

// ComputeRewards runs the modifier pipeline over a quest's base rewards.
// Order matters: corruption debuff first, then the bounty doubling, then the
// XP boost (which never touches gold). Results are truncated to integers.
func ComputeRewards(baseXP, baseGold int, isCorrupted bool, state ModifierState) models.RewardBreakdown {
	debuff := CorruptionDebuff(state.CorruptedCount, state.ShieldActive)

	xp := float64(baseXP) * debuff
	gold := float64(baseGold) * debuff

	breakdown := models.RewardBreakdown{
		BaseXP:           baseXP,
		BaseGold:         baseGold,
		IsDailyBounty:    state.IsDailyBounty,
		IsCorrupted:      isCorrupted,
		CorruptionDebuff: debuff,
		BountyMultiplier: 1,
	}

	if state.IsDailyBounty {
		xp *= bountyMultiplier
		gold *= bountyMultiplier
		breakdown.BountyMultiplier = bountyMultiplier
	}

	if state.XPBoostRemaining > 0 {
		xp *= xpBoostMultiplier
		breakdown.XPBoostActive = true
		breakdown.XPBoostRemaining = state.XPBoostRemaining - 1
	}

	breakdown.XP = int(xp)
	breakdown.Gold = int(gold)
	return breakdown
}
