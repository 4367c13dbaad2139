package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Relative path templates for the connect backend. Every catalog method
// below is a thin wrapper: build a path and parameter set, hand it to the
// generic dispatch, return the JSON untouched.
const (
	pathSocialProfile = "/userprofile-service/socialProfile"
	pathUserSettings  = "/userprofile-service/userprofile/user-settings"

	pathDailySummary     = "/usersummary-service/usersummary/daily/%s"
	pathSummaryChart     = "/wellness-service/wellness/dailySummaryChart/%s"
	pathDailyStepsRange  = "/usersummary-service/stats/steps/daily/%s/%s"
	pathFloorsDaily      = "/wellness-service/wellness/floorsChartData/daily/%s"
	pathHeartRatesDaily  = "/wellness-service/wellness/dailyHeartRate/%s"
	pathRestingHeartRate = "/userstats-service/wellness/daily/%s"
	pathHRV              = "/hrv-service/hrv/%s"

	pathWeightRange     = "/weight-service/weight/dateRange"
	pathWeighInsRange   = "/weight-service/weight/range/%s/%s"
	pathWeighInsDaily   = "/weight-service/weight/dayview/%s"
	pathAddWeighIn      = "/weight-service/user-weight"
	pathDeleteWeighIn   = "/weight-service/weight/%s/byversion/%s"
	pathBodyBattery     = "/wellness-service/wellness/bodyBattery/reports/daily"
	pathBloodPressure   = "/bloodpressure-service/bloodpressure/range/%s/%s"
	pathHydrationDaily  = "/usersummary-service/usersummary/hydration/daily/%s"
	pathRespiration     = "/wellness-service/wellness/daily/respiration/%s"
	pathSpO2Daily       = "/wellness-service/wellness/daily/spo2/%s"
	pathSleepDaily      = "/wellness-service/wellness/dailySleepData/%s"
	pathStressDaily     = "/wellness-service/wellness/dailyStress/%s"
	pathMaxMetrics      = "/metrics-service/metrics/maxmet/daily/%s/%s"
	pathTrainingReady   = "/metrics-service/metrics/trainingreadiness/%s"
	pathTrainingStatus  = "/metrics-service/metrics/trainingstatus/aggregated/%s"
	pathPersonalRecords = "/personalrecord-service/personalrecord/prs/%s"

	pathEarnedBadges        = "/badge-service/badge/earned"
	pathAdhocChallenges     = "/adhocchallenge-service/adHocChallenge/historical"
	pathBadgeChallenges     = "/badgechallenge-service/badgeChallenge/completed"
	pathAvailableChallenges = "/badgechallenge-service/badgeChallenge/available"
	pathPendingChallenges   = "/badgechallenge-service/badgeChallenge/non-completed"
	pathVirtualChallenges   = "/badgechallenge-service/virtualChallenge/inProgress"
	pathGoals               = "/goal-service/goal/goals"

	pathDevices        = "/device-service/deviceregistration/devices"
	pathDeviceSettings = "/device-service/deviceservice/device-info/settings/%s"
	pathDeviceLastUsed = "/device-service/deviceservice/mylastused"

	pathActivities      = "/activitylist-service/activities/search/activities"
	pathActivity        = "/activity-service/activity/%s"
	pathActivityTypes   = "/activity-service/activity/activityTypes"
	pathFitnessStats    = "/fitnessstats-service/activity"
	pathActivityDetail  = "/activity-service/activity/%s/%s"
	pathGearFilter      = "/gear-service/gear/filterGear"
	pathGearStats       = "/gear-service/gear/stats/%s"
	pathGearDefaults    = "/gear-service/gear/user/%s/activityTypes"
	pathSetGearDefault  = "/gear-service/gear/%s/activityType/%s%s"
	pathLogout          = "/auth/logout/?url="
)

// DateFormat is the calendar-date layout the API expects.
const DateFormat = "2006-01-02"

// FormatDate renders t in the API's calendar-date layout.
func FormatDate(t time.Time) string { return t.Format(DateFormat) }

func singleParam(key, value string) url.Values {
	params := url.Values{}
	params.Set(key, value)
	return params
}

func pagingParams(start, limit int) url.Values {
	params := url.Values{}
	params.Set("start", fmt.Sprint(start))
	params.Set("limit", fmt.Sprint(limit))
	return params
}

// UserSummary returns the daily activity summary for date (YYYY-MM-DD).
func (c *Client) UserSummary(ctx context.Context, date string) (json.RawMessage, error) {
	path := fmt.Sprintf(pathDailySummary, c.displayName)
	raw, err := c.api(ctx, http.MethodGet, path, singleParam("calendarDate", date), nil)
	if err != nil {
		return nil, err
	}
	// A privacy-protected summary means the session does not belong to
	// this profile.
	var check struct {
		PrivacyProtected bool `json:"privacyProtected"`
	}
	if err := json.Unmarshal(raw, &check); err == nil && check.PrivacyProtected {
		return nil, &AuthenticationError{Reason: "profile data is privacy protected"}
	}
	return raw, nil
}

// Stats is an alias for UserSummary kept for parity with other Garmin
// tooling.
func (c *Client) Stats(ctx context.Context, date string) (json.RawMessage, error) {
	return c.UserSummary(ctx, date)
}

// StepsData returns the daily summary chart (steps per interval) for date.
func (c *Client) StepsData(ctx context.Context, date string) (json.RawMessage, error) {
	path := fmt.Sprintf(pathSummaryChart, c.displayName)
	return c.api(ctx, http.MethodGet, path, singleParam("date", date), nil)
}

// DailySteps returns aggregated step stats between start and end dates.
func (c *Client) DailySteps(ctx context.Context, start, end string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathDailyStepsRange, start, end), nil, nil)
}

// Floors returns floors-climbed chart data for date.
func (c *Client) Floors(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathFloorsDaily, date), nil, nil)
}

// HeartRates returns heart rate samples for date.
func (c *Client) HeartRates(ctx context.Context, date string) (json.RawMessage, error) {
	path := fmt.Sprintf(pathHeartRatesDaily, c.displayName)
	return c.api(ctx, http.MethodGet, path, singleParam("date", date), nil)
}

// RestingHeartRate returns resting heart rate data for date.
func (c *Client) RestingHeartRate(ctx context.Context, date string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("fromDate", date)
	params.Set("untilDate", date)
	params.Set("metricId", "60")
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathRestingHeartRate, c.displayName), params, nil)
}

// HRVData returns heart rate variability data for date.
func (c *Client) HRVData(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathHRV, date), nil, nil)
}

// BodyComposition returns body composition data for the date range. An
// empty end defaults to start.
func (c *Client) BodyComposition(ctx context.Context, start, end string) (json.RawMessage, error) {
	if end == "" {
		end = start
	}
	params := url.Values{}
	params.Set("startDate", start)
	params.Set("endDate", end)
	return c.api(ctx, http.MethodGet, pathWeightRange, params, nil)
}

// WeighIns returns weigh-ins between start and end dates.
func (c *Client) WeighIns(ctx context.Context, start, end string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathWeighInsRange, start, end), singleParam("includeAll", "true"), nil)
}

// DailyWeighIns returns weigh-ins for a single date.
func (c *Client) DailyWeighIns(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathWeighInsDaily, date), singleParam("includeAll", "true"), nil)
}

// AddWeighIn records a weigh-in. unitKey defaults to kg.
func (c *Client) AddWeighIn(ctx context.Context, weight float64, unitKey string, at time.Time) (json.RawMessage, error) {
	if unitKey == "" {
		unitKey = "kg"
	}
	if at.IsZero() {
		at = time.Now()
	}
	body := map[string]any{
		"dateTimestamp": at.Format("2006-01-02T15:04:05.00"),
		"gmtTimestamp":  at.UTC().Format("2006-01-02T15:04:05.00"),
		"unitKey":       unitKey,
		"value":         weight,
	}
	return c.api(ctx, http.MethodPost, pathAddWeighIn, nil, body)
}

// DeleteWeighIn deletes one weigh-in by sample key. The API tunnels the
// delete through a POST with a method-override header.
func (c *Client) DeleteWeighIn(ctx context.Context, samplePK, date string) (json.RawMessage, error) {
	return c.methodOverride(ctx, fmt.Sprintf(pathDeleteWeighIn, date, samplePK), http.MethodDelete)
}

// BodyBattery returns body battery reports per day for the date range.
func (c *Client) BodyBattery(ctx context.Context, start, end string) (json.RawMessage, error) {
	if end == "" {
		end = start
	}
	params := url.Values{}
	params.Set("startDate", start)
	params.Set("endDate", end)
	return c.api(ctx, http.MethodGet, pathBodyBattery, params, nil)
}

// BloodPressure returns blood pressure readings for the date range.
func (c *Client) BloodPressure(ctx context.Context, start, end string) (json.RawMessage, error) {
	if end == "" {
		end = start
	}
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathBloodPressure, start, end), singleParam("includeAll", "true"), nil)
}

// Hydration returns hydration data for date.
func (c *Client) Hydration(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathHydrationDaily, date), nil, nil)
}

// Respiration returns respiration data for date.
func (c *Client) Respiration(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathRespiration, date), nil, nil)
}

// SpO2 returns pulse-ox data for date.
func (c *Client) SpO2(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathSpO2Daily, date), nil, nil)
}

// SleepData returns sleep data for date.
func (c *Client) SleepData(ctx context.Context, date string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("date", date)
	params.Set("nonSleepBufferMinutes", "60")
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathSleepDaily, c.displayName), params, nil)
}

// StressData returns stress data for date.
func (c *Client) StressData(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathStressDaily, date), nil, nil)
}

// MaxMetrics returns max metric (VO2 max) data for date.
func (c *Client) MaxMetrics(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathMaxMetrics, date, date), nil, nil)
}

// TrainingReadiness returns training readiness data for date.
func (c *Client) TrainingReadiness(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathTrainingReady, date), nil, nil)
}

// TrainingStatus returns aggregated training status for date.
func (c *Client) TrainingStatus(ctx context.Context, date string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathTrainingStatus, date), nil, nil)
}

// PersonalRecords returns the account's personal records.
func (c *Client) PersonalRecords(ctx context.Context) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathPersonalRecords, c.displayName), nil, nil)
}

// EarnedBadges returns earned badges.
func (c *Client) EarnedBadges(ctx context.Context) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathEarnedBadges, nil, nil)
}

// AdhocChallenges returns historical ad-hoc challenges.
func (c *Client) AdhocChallenges(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathAdhocChallenges, pagingParams(start, limit), nil)
}

// BadgeChallenges returns completed badge challenges.
func (c *Client) BadgeChallenges(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathBadgeChallenges, pagingParams(start, limit), nil)
}

// AvailableBadgeChallenges returns badge challenges open for joining.
func (c *Client) AvailableBadgeChallenges(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathAvailableChallenges, pagingParams(start, limit), nil)
}

// PendingBadgeChallenges returns joined but not yet completed challenges.
func (c *Client) PendingBadgeChallenges(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathPendingChallenges, pagingParams(start, limit), nil)
}

// VirtualChallenges returns in-progress virtual challenges.
func (c *Client) VirtualChallenges(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathVirtualChallenges, pagingParams(start, limit), nil)
}

// Goals returns all goals with the given status ("active", "future" or
// "past"), following the pagination until an empty page.
func (c *Client) Goals(ctx context.Context, status string, pageSize int) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		pageSize = 30
	}
	var goals []json.RawMessage
	start := 1
	for {
		params := pagingParams(start, pageSize)
		params.Set("status", status)
		params.Set("sortOrder", "asc")
		raw, err := c.api(ctx, http.MethodGet, pathGoals, params, nil)
		if err != nil {
			return nil, err
		}
		page, err := splitArray(pathGoals, raw)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return goals, nil
		}
		goals = append(goals, page...)
		start += pageSize
	}
}

// Devices returns the registered devices.
func (c *Client) Devices(ctx context.Context) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathDevices, nil, nil)
}

// DeviceSettings returns settings for one device.
func (c *Client) DeviceSettings(ctx context.Context, deviceID string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathDeviceSettings, deviceID), nil, nil)
}

// DeviceLastUsed returns the most recently used device.
func (c *Client) DeviceLastUsed(ctx context.Context) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathDeviceLastUsed, nil, nil)
}

// DeviceAlarms collects active alarms across all registered devices.
func (c *Client) DeviceAlarms(ctx context.Context) ([]json.RawMessage, error) {
	raw, err := c.Devices(ctx)
	if err != nil {
		return nil, err
	}
	var devices []struct {
		DeviceID json.Number `json:"deviceId"`
	}
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, &DecodeError{Path: pathDevices, Size: len(raw)}
	}

	var alarms []json.RawMessage
	for _, d := range devices {
		settings, err := c.DeviceSettings(ctx, d.DeviceID.String())
		if err != nil {
			return nil, err
		}
		var s struct {
			Alarms []json.RawMessage `json:"alarms"`
		}
		if err := json.Unmarshal(settings, &s); err != nil {
			continue
		}
		alarms = append(alarms, s.Alarms...)
	}
	return alarms, nil
}

// Activities returns one page of the activity list.
func (c *Client) Activities(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathActivities, pagingParams(start, limit), nil)
}

// LastActivity returns the most recent activity, or nil if there is none.
func (c *Client) LastActivity(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.Activities(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	page, err := splitArray(pathActivities, raw)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, nil
	}
	return page[len(page)-1], nil
}

// activitiesPageSize mimics the web interface, which loads 20 activities
// at a time and fetches more on scroll.
const activitiesPageSize = 20

// ActivitiesByDate returns all activities between start and end dates,
// optionally filtered by activity type, following the pagination until an
// empty page.
func (c *Client) ActivitiesByDate(ctx context.Context, start, end, activityType string) ([]json.RawMessage, error) {
	var activities []json.RawMessage
	offset := 0
	for {
		params := pagingParams(offset, activitiesPageSize)
		params.Set("startDate", start)
		params.Set("endDate", end)
		if activityType != "" {
			params.Set("activityType", activityType)
		}
		raw, err := c.api(ctx, http.MethodGet, pathActivities, params, nil)
		if err != nil {
			return nil, err
		}
		page, err := splitArray(pathActivities, raw)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return activities, nil
		}
		activities = append(activities, page...)
		offset += activitiesPageSize
	}
}

// ProgressSummary returns aggregated progress for the date range. metric
// is one of "distance", "duration", "movingDuration", "elevationGain".
func (c *Client) ProgressSummary(ctx context.Context, start, end, metric string) (json.RawMessage, error) {
	if metric == "" {
		metric = "distance"
	}
	params := url.Values{}
	params.Set("startDate", start)
	params.Set("endDate", end)
	params.Set("aggregation", "lifetime")
	params.Set("groupByParentActivityType", "true")
	params.Set("metric", metric)
	return c.api(ctx, http.MethodGet, pathFitnessStats, params, nil)
}

// ActivityTypes returns the known activity types.
func (c *Client) ActivityTypes(ctx context.Context) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathActivityTypes, nil, nil)
}

// Activity returns the activity summary, including self evaluation.
func (c *Client) Activity(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathActivity, fmt.Sprint(activityID)), nil, nil)
}

// ActivitySplits returns the activity's splits.
func (c *Client) ActivitySplits(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.activityDetail(ctx, activityID, "splits", nil)
}

// ActivitySplitSummaries returns the activity's split summaries.
func (c *Client) ActivitySplitSummaries(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.activityDetail(ctx, activityID, "split_summaries", nil)
}

// ActivityWeather returns the weather recorded for the activity.
func (c *Client) ActivityWeather(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.activityDetail(ctx, activityID, "weather", nil)
}

// ActivityHRInTimezones returns time-in-heart-rate-zones for the activity.
func (c *Client) ActivityHRInTimezones(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.activityDetail(ctx, activityID, "hrTimeInZones", nil)
}

// ActivityExerciseSets returns the activity's exercise sets.
func (c *Client) ActivityExerciseSets(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.activityDetail(ctx, activityID, "exerciseSets", nil)
}

// ActivityDetails returns chart and polyline details for the activity.
func (c *Client) ActivityDetails(ctx context.Context, activityID int64, maxChart, maxPolyline int) (json.RawMessage, error) {
	if maxChart <= 0 {
		maxChart = 2000
	}
	if maxPolyline <= 0 {
		maxPolyline = 4000
	}
	params := url.Values{}
	params.Set("maxChartSize", fmt.Sprint(maxChart))
	params.Set("maxPolylineSize", fmt.Sprint(maxPolyline))
	return c.activityDetail(ctx, activityID, "details", params)
}

func (c *Client) activityDetail(ctx context.Context, activityID int64, detail string, params url.Values) (json.RawMessage, error) {
	path := fmt.Sprintf(pathActivityDetail, fmt.Sprint(activityID), detail)
	return c.api(ctx, http.MethodGet, path, params, nil)
}

// ActivityGear returns the gear linked to the activity.
func (c *Client) ActivityGear(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathGearFilter, singleParam("activityId", fmt.Sprint(activityID)), nil)
}

// Gear returns all gear registered to the user profile.
func (c *Client) Gear(ctx context.Context, userProfilePK int64) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, pathGearFilter, singleParam("userProfilePk", fmt.Sprint(userProfilePK)), nil)
}

// GearStats returns usage stats for one piece of gear.
func (c *Client) GearStats(ctx context.Context, gearUUID string) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathGearStats, gearUUID), nil, nil)
}

// GearDefaults returns the default gear per activity type.
func (c *Client) GearDefaults(ctx context.Context, userProfilePK int64) (json.RawMessage, error) {
	return c.api(ctx, http.MethodGet, fmt.Sprintf(pathGearDefaults, fmt.Sprint(userProfilePK)), nil, nil)
}

// SetGearDefault marks gear as default (or clears the default) for an
// activity type.
func (c *Client) SetGearDefault(ctx context.Context, activityType, gearUUID string, makeDefault bool) (json.RawMessage, error) {
	suffix := ""
	override := http.MethodDelete
	if makeDefault {
		suffix = "/default/true"
		override = http.MethodPut
	}
	path := fmt.Sprintf(pathSetGearDefault, gearUUID, activityType, suffix)
	return c.methodOverride(ctx, path, override)
}

// Logout invalidates the session on the remote side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.api(ctx, http.MethodGet, pathLogout, nil, nil)
	return err
}

// methodOverride issues a POST tunneling another verb, the way the gear
// and weight services expect it.
func (c *Client) methodOverride(ctx context.Context, path, method string) (json.RawMessage, error) {
	rc := c.rest(backendConnect)
	req := rc.R().SetContext(ctx).SetHeader("x-http-method-override", method)
	resp, err := req.Execute(http.MethodPost, path)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, &ConnectionError{URL: rc.BaseURL + path, Err: err}
	}
	if err := statusError(path, resp); err != nil {
		return nil, err
	}
	data := resp.Body()
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &DecodeError{Path: path, Size: len(data)}
	}
	return json.RawMessage(data), nil
}

// splitArray splits a JSON array into its elements. A nil or null body
// yields an empty slice.
func splitArray(path string, raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Path: path, Size: len(raw)}
	}
	return items, nil
}
