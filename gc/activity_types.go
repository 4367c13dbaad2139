package gc

import "strings"

// typeEmojis maps Garmin activity type keys to a terminal emoji. Type
// keys come from the activity-service activityTypes catalog; parent
// types cover the common cases, the rest fall through on prefix.
var typeEmojis = map[string]string{
	"running":           "🏃",
	"trail_running":     "🏃",
	"treadmill_running": "🏃",
	"track_running":     "🏃",
	"cycling":           "🚴",
	"road_biking":       "🚴",
	"mountain_biking":   "🚵",
	"gravel_cycling":    "🚴",
	"indoor_cycling":    "🚴",
	"virtual_ride":      "🚴",
	"swimming":          "🏊",
	"lap_swimming":      "🏊",
	"open_water_swimming": "🏊",
	"walking":           "🚶",
	"casual_walking":    "🚶",
	"hiking":            "🥾",
	"strength_training": "🏋️",
	"fitness_equipment": "🏋️",
	"indoor_cardio":     "🏋️",
	"yoga":              "🧘",
	"multi_sport":       "🏅",
	"skiing":            "⛷️",
	"resort_skiing_snowboarding": "⛷️",
	"backcountry_skiing": "⛷️",
	"cross_country_skiing": "🎿",
	"rowing":            "🚣",
	"paddling":          "🛶",
	"golf":              "⛳",
	"surfing":           "🏄",
}

// emojiForType returns an emoji for a Garmin activity type key, falling
// back to a generic marker for unknown types.
func emojiForType(typeKey string) string {
	key := strings.ToLower(typeKey)
	if emoji, ok := typeEmojis[key]; ok {
		return emoji
	}
	// Try prefix matches for the many variants (e.g. "virtual_run").
	switch {
	case strings.Contains(key, "run"):
		return "🏃"
	case strings.Contains(key, "cycl"), strings.Contains(key, "biking"), strings.Contains(key, "ride"):
		return "🚴"
	case strings.Contains(key, "swim"):
		return "🏊"
	case strings.Contains(key, "ski"):
		return "⛷️"
	case strings.Contains(key, "walk"):
		return "🚶"
	default:
		return "🏅"
	}
}
