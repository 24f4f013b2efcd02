// Package progression holds the pure XP, level and reward math. Nothing in
// here touches the database, so every rule is unit-testable in isolation.
package progression

// LevelForXP derives a user's level from lifetime XP. Level N requires
// 100*N more XP than level N-1, so the thresholds are 0, 100, 300, 600, ...
func LevelForXP(xp int64) int {
	level := 1
	threshold := int64(0)
	for xp >= threshold {
		threshold += int64(level) * 100
		level++
	}
	return level - 1
}

// XPForLevel returns the minimum lifetime XP for the given level.
func XPForLevel(level int) int64 {
	total := int64(0)
	for l := 1; l < level; l++ {
		total += int64(l) * 100
	}
	return total
}
