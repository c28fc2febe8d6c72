package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// kickoffShiftHours corrects the clock the upstream site renders kickoff
// times in. This is a fixed source-specific offset, not a timezone conversion.
const kickoffShiftHours = 6

var nonTimeChars = regexp.MustCompile(`[^0-9:]`)

// NormalizeKickoff converts a localized 12-hour kickoff label into a shifted
// 24-hour "HH:MM" label. The PM half of the day is detected by the Arabic
// evening markers; everything that is not a digit or colon is stripped before
// parsing. Unparseable input is returned unchanged rather than treated as an
// error, so a garbled label flows through as-is instead of dropping the field.
func NormalizeKickoff(raw string) string {
	if raw == "" || !strings.Contains(raw, ":") {
		return raw
	}

	isPM := strings.Contains(raw, "م") || strings.Contains(raw, "مساء")

	clean := nonTimeChars.ReplaceAllString(raw, "")
	parts := strings.Split(clean, ":")
	if len(parts) != 2 {
		return raw
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return raw
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return raw
	}

	if isPM && hour != 12 {
		hour += 12
		if hour > 23 {
			// 12-hour labels cannot carry an hour past 11 PM; leave the
			// original alone like any other parse failure.
			return raw
		}
	} else if !isPM && hour == 12 {
		hour = 0
	}

	hour = (hour + kickoffShiftHours) % 24
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
