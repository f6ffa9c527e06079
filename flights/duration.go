package flights

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	hourToken   = regexp.MustCompile(`(\d+)H`)
	minuteToken = regexp.MustCompile(`(\d+)M`)
)

// ParseISODuration converts an ISO-8601 duration like "PT5H30M" to total
// minutes. Missing tokens default to 0, so malformed input yields 0 rather
// than an error.
func ParseISODuration(duration string) int {
	hours := 0
	minutes := 0

	if m := hourToken.FindStringSubmatch(duration); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := minuteToken.FindStringSubmatch(duration); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	}

	return hours*60 + minutes
}

// FormatDuration renders minutes as "5h 30m", "1h", "45m" or "N/A" for zero
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}

	hours := minutes / 60
	mins := minutes % 60

	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// ToDDMM converts a YYYY-MM-DD date to the DDMM form used in affiliate
// search paths ("2025-12-15" -> "1512"). Anything shorter than a full date
// yields "".
func ToDDMM(date string) string {
	if len(date) < 10 {
		return ""
	}
	return date[8:10] + date[5:7]
}
