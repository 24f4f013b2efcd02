package progression

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCorruptionDebuff(t *testing.T) {
	tests := []struct {
		name      string
		corrupted int
		shield    bool
		want      float64
	}{
		{"no corruption", 0, false, 1.0},
		{"one corrupted", 1, false, 0.95},
		{"five corrupted", 5, false, 0.75},
		{"ten corrupted hits cap", 10, false, 0.50},
		{"beyond cap stays capped", 25, false, 0.50},
		{"shield suppresses debuff", 8, true, 1.0},
		{"shield with no corruption", 0, true, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CorruptionDebuff(tt.corrupted, tt.shield); !almostEqual(got, tt.want) {
				t.Errorf("CorruptionDebuff(%d, %v) = %v, want %v", tt.corrupted, tt.shield, got, tt.want)
			}
		})
	}
}

func TestComputeRewards(t *testing.T) {
	tests := []struct {
		name     string
		baseXP   int
		baseGold int
		state    ModifierState
		wantXP   int
		wantGold int
	}{
		{
			name:   "no modifiers",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{},
			wantXP: 50, wantGold: 25,
		},
		{
			name:   "one corrupted quest truncates down",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{CorruptedCount: 1},
			wantXP: 47, wantGold: 23,
		},
		{
			name:   "shield restores full payout",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{CorruptedCount: 1, ShieldActive: true},
			wantXP: 50, wantGold: 25,
		},
		{
			name:   "daily bounty doubles both",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{IsDailyBounty: true},
			wantXP: 100, wantGold: 50,
		},
		{
			name:   "xp boost doubles xp only",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{XPBoostRemaining: 3},
			wantXP: 100, wantGold: 25,
		},
		{
			name:   "debuff applies before bounty doubling",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{CorruptedCount: 1, IsDailyBounty: true},
			wantXP: 95, wantGold: 47,
		},
		{
			name:   "all modifiers stacked",
			baseXP: 50, baseGold: 25,
			state:  ModifierState{CorruptedCount: 2, IsDailyBounty: true, XPBoostRemaining: 1},
			wantXP: 180, wantGold: 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRewards(tt.baseXP, tt.baseGold, false, tt.state)
			if got.XP != tt.wantXP || got.Gold != tt.wantGold {
				t.Errorf("ComputeRewards() = xp %d gold %d, want xp %d gold %d",
					got.XP, got.Gold, tt.wantXP, tt.wantGold)
			}
		})
	}
}

func TestComputeRewardsBreakdown(t *testing.T) {
	got := ComputeRewards(40, 20, true, ModifierState{
		CorruptedCount:   3,
		IsDailyBounty:    true,
		XPBoostRemaining: 2,
	})

	if !got.IsCorrupted {
		t.Error("expected IsCorrupted to be set")
	}
	if !almostEqual(got.CorruptionDebuff, 0.85) {
		t.Errorf("CorruptionDebuff = %v, want 0.85", got.CorruptionDebuff)
	}
	if got.BountyMultiplier != 2 {
		t.Errorf("BountyMultiplier = %d, want 2", got.BountyMultiplier)
	}
	if !got.XPBoostActive || got.XPBoostRemaining != 1 {
		t.Errorf("boost = active %v remaining %d, want active with 1 remaining", got.XPBoostActive, got.XPBoostRemaining)
	}
	if got.BaseXP != 40 || got.BaseGold != 20 {
		t.Errorf("base = %d/%d, want 40/20", got.BaseXP, got.BaseGold)
	}
}
