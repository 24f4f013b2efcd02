package scribe

import "testing"

func TestParseContent(t *testing.T) {
	raw := `{"display_name": "Purge the Porcelain Throne", "description": "Scrub until it gleams.", "tags": "bathroom,cleaning", "time": 2, "effort": 3, "dread": 5}`

	content, err := ParseContent(raw)
	if err != nil {
		t.Fatalf("ParseContent() error: %v", err)
	}
	if content.DisplayName != "Purge the Porcelain Throne" {
		t.Errorf("DisplayName = %q", content.DisplayName)
	}
	if content.XP() != 20 {
		t.Errorf("XP() = %d, want 20", content.XP())
	}
	if content.Gold() != 10 {
		t.Errorf("Gold() = %d, want 10", content.Gold())
	}
}

func TestParseContentStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"display_name\": \"Sweep the Keep\", \"description\": \"d\", \"tags\": \"t\", \"time\": 1, \"effort\": 1, \"dread\": 1}\n```"

	content, err := ParseContent(raw)
	if err != nil {
		t.Fatalf("ParseContent() error: %v", err)
	}
	if content.DisplayName != "Sweep the Keep" {
		t.Errorf("DisplayName = %q", content.DisplayName)
	}
}

func TestParseContentRejectsGarbage(t *testing.T) {
	if _, err := ParseContent("the scribe is unwell today"); err == nil {
		t.Error("expected error for non-JSON response")
	}
	if _, err := ParseContent("{}"); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestRatingsClampedForRewards(t *testing.T) {
	tests := []struct {
		name     string
		content  Content
		wantXP   int
		wantGold int
	}{
		{"all max", Content{Time: 5, Effort: 5, Dread: 5}, 30, 15},
		{"above range clamps down", Content{Time: 9, Effort: 7, Dread: 100}, 30, 15},
		{"below range clamps up", Content{Time: 0, Effort: -3, Dread: 1}, 6, 3},
		{"mixed", Content{Time: 3, Effort: 2, Dread: 4}, 18, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.XP(); got != tt.wantXP {
				t.Errorf("XP() = %d, want %d", got, tt.wantXP)
			}
			if got := tt.content.Gold(); got != tt.wantGold {
				t.Errorf("Gold() = %d, want %d", got, tt.wantGold)
			}
		})
	}
}
