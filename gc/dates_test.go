package gc

import (
	"testing"
	"time"
)

func TestValidateAndParseDates_SpecificDates(t *testing.T) {
	tests := []struct {
		name      string
		untilStr  string
		sinceStr  string
		wantSince string
		wantUntil string
	}{
		{
			name:      "specific until and since dates",
			untilStr:  "2024-01-15",
			sinceStr:  "2024-01-01",
			wantSince: "2024-01-01",
			wantUntil: "2024-01-15",
		},
		{
			name:      "month-only until date resolves to last day",
			untilStr:  "2024-01",
			sinceStr:  "2023-12-01",
			wantSince: "2023-12-01",
			wantUntil: "2024-01-31",
		},
		{
			name:      "year-only until date resolves to Dec 31",
			untilStr:  "2024",
			sinceStr:  "2024-01-01",
			wantSince: "2024-01-01",
			wantUntil: "2024-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, until, err := ValidateAndParseDates(tt.untilStr, tt.sinceStr)
			if err != nil {
				t.Errorf("ValidateAndParseDates() error = %v", err)
				return
			}

			if since.Format("2006-01-02") != tt.wantSince {
				t.Errorf("since = %v, want %v", since.Format("2006-01-02"), tt.wantSince)
			}
			if until.Format("2006-01-02") != tt.wantUntil {
				t.Errorf("until = %v, want %v", until.Format("2006-01-02"), tt.wantUntil)
			}
		})
	}
}

func TestValidateAndParseDates_DurationSince(t *testing.T) {
	tests := []struct {
		name            string
		untilStr        string
		sinceStr        string
		expectedDayDiff int
	}{
		{
			name:            "30 days duration",
			untilStr:        "2024-01-29",
			sinceStr:        "30d",
			expectedDayDiff: 30,
		},
		{
			name:            "2 weeks duration",
			untilStr:        "2024-01-29",
			sinceStr:        "2w",
			expectedDayDiff: 14,
		},
		{
			name:            "6 months duration (approximate)",
			untilStr:        "2024-07-01",
			sinceStr:        "6m",
			expectedDayDiff: 180, // 6 * 30 days
		},
		{
			name:            "1 year duration (approximate)",
			untilStr:        "2024-01-01",
			sinceStr:        "1y",
			expectedDayDiff: 365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, until, err := ValidateAndParseDates(tt.untilStr, tt.sinceStr)
			if err != nil {
				t.Errorf("ValidateAndParseDates() error = %v", err)
				return
			}

			actualDiff := int(until.Sub(since).Hours() / 24)
			if actualDiff != tt.expectedDayDiff {
				t.Errorf("day difference = %d, want %d", actualDiff, tt.expectedDayDiff)
			}
		})
	}
}

func TestValidateAndParseDates_Defaults(t *testing.T) {
	// Empty strings should use sensible defaults
	since, until, err := ValidateAndParseDates("", "")
	if err != nil {
		t.Errorf("ValidateAndParseDates() with empty strings error = %v", err)
		return
	}

	// Until should be today
	now := time.Now()
	expectedUntil := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if until.Format("2006-01-02") != expectedUntil.Format("2006-01-02") {
		t.Errorf("until = %v, want %v", until.Format("2006-01-02"), expectedUntil.Format("2006-01-02"))
	}

	// Since should be 4 weeks before until
	dayDiff := int(until.Sub(since).Hours() / 24)
	if dayDiff != 28 {
		t.Errorf("day difference = %d, want 28", dayDiff)
	}
}

func TestValidateAndParseDates_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		untilStr string
		sinceStr string
		wantErr  bool
	}{
		{
			name:     "invalid until date format",
			untilStr: "2024-13-45",
			sinceStr: "2024-01-01",
			wantErr:  true,
		},
		{
			name:     "invalid since date format",
			untilStr: "2024-01-15",
			sinceStr: "2024-25-99",
			wantErr:  true,
		},
		{
			name:     "invalid duration format",
			untilStr: "2024-01-15",
			sinceStr: "30x",
			wantErr:  true,
		},
		{
			name:     "since after until",
			untilStr: "2024-01-01",
			sinceStr: "2024-01-15",
			wantErr:  true,
		},
		{
			name:     "since equals until",
			untilStr: "2024-01-01",
			sinceStr: "2024-01-01",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ValidateAndParseDates(tt.untilStr, tt.sinceStr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndParseDates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, input := range []string{"", "d", "30", "1y2w", "-5d", "30D"} {
		if _, err := parseDuration(input); err == nil {
			t.Errorf("parseDuration(%q) expected error", input)
		}
	}
}
