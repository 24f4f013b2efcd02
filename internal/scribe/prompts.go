package scribe

import "fmt"

const systemPrompt = `You are the Majordomo's scribe. Given a mundane household chore,
you rewrite it as a short fantasy quest and rate it.

Respond with a single JSON object, no prose, no code fences:
{
  "display_name": "heroic quest name, max 60 characters",
  "description": "one or two sentences of quest flavor text",
  "tags": "comma-separated lowercase tags",
  "time": <1-5, how long the chore takes>,
  "effort": <1-5, how physically demanding it is>,
  "dread": <1-5, how much people avoid it>
}`

func buildUserPrompt(title string) string {
	return fmt.Sprintf("Chore: %s", title)
}
