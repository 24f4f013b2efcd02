package progression

import "testing"

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		name string
		xp   int64
		want int
	}{
		{"zero xp is level 1", 0, 1},
		{"just under level 2", 99, 1},
		{"exactly level 2", 100, 2},
		{"mid level 2", 250, 2},
		{"exactly level 3", 300, 3},
		{"just under level 4", 599, 3},
		{"exactly level 4", 600, 4},
		{"level 5 threshold", 1000, 5},
		{"deep progression", 10000, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelForXP(tt.xp); got != tt.want {
				t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
			}
		})
	}
}

func TestXPForLevelRoundTrip(t *testing.T) {
	for level := 1; level <= 20; level++ {
		xp := XPForLevel(level)
		if got := LevelForXP(xp); got != level {
			t.Errorf("LevelForXP(XPForLevel(%d)) = %d, want %d", level, got, level)
		}
		if level > 1 {
			if got := LevelForXP(xp - 1); got != level-1 {
				t.Errorf("LevelForXP(%d) = %d, want %d", xp-1, got, level-1)
			}
		}
	}
}
