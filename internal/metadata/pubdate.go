package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Douban prints publication dates in a handful of loose forms:
// "2008-1", "2008-01-01", "2008年1月", "2008年1月1日", "2008.1", "2008/1/2"
// and occasionally just "2008".
var pubdateRe = regexp.MustCompile(`(\d{4})(?:[-./年]\s*(\d{1,2}))?(?:[-./月]\s*(\d{1,2}))?`)

// ParsePubDate parses a loose publication date string into a UTC time.
// The day defaults to the 15th and the month to January when absent, so a
// partial date still sorts near the middle of its period.
func ParsePubDate(raw string) (time.Time, error) {
	m := pubdateRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized pubdate %q", raw)
	}

	year, err := strconv.Atoi(m[1])
	if err != nil || year < 1000 {
		return time.Time{}, fmt.Errorf("unrecognized pubdate %q", raw)
	}

	month := 1
	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return time.Time{}, fmt.Errorf("invalid month in pubdate %q", raw)
		}
	}

	day := 15
	if m[3] != "" {
		day, _ = strconv.Atoi(m[3])
		if day < 1 || day > 31 {
			return time.Time{}, fmt.Errorf("invalid day in pubdate %q", raw)
		}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
