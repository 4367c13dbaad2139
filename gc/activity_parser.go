package gc

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// activityListEntry is the subset of an activity-list-service entry we
// decode. The full entry carries dozens more fields; they stay opaque.
type activityListEntry struct {
	ActivityID   int64  `json:"activityId"`
	ActivityName string `json:"activityName"`
	StartTimeLocal string `json:"startTimeLocal"`
	ActivityType struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
}

const startTimeLayout = "2006-01-02 15:04:05"

// ParseActivities decodes raw activity-list entries into ActivityInfo,
// newest first, with week bounds filled in for presentation grouping.
func ParseActivities(raw []json.RawMessage) ([]ActivityInfo, error) {
	activities := make([]ActivityInfo, 0, len(raw))
	for _, entry := range raw {
		var parsed activityListEntry
		if err := json.Unmarshal(entry, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse activity entry: %w", err)
		}
		if parsed.ActivityID == 0 {
			continue
		}

		info := ActivityInfo{
			ID:        parsed.ActivityID,
			Name:      parsed.ActivityName,
			Type:      parsed.ActivityType.TypeKey,
			TypeEmoji: emojiForType(parsed.ActivityType.TypeKey),
		}
		if t, err := time.Parse(startTimeLayout, parsed.StartTimeLocal); err == nil {
			info.StartTime = t
			info.WeekStart, info.WeekEnd = weekBounds(t)
		}
		activities = append(activities, info)
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].StartTime.After(activities[j].StartTime)
	})
	return activities, nil
}

// weekBounds returns the Monday-to-Sunday week containing t.
func weekBounds(t time.Time) (start, end time.Time) {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = start.AddDate(0, 0, -daysSinceMonday)
	end = start.AddDate(0, 0, 6)
	return start, end
}
