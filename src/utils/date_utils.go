package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const ISODateFormat = "2006-01-02"

var dateGroups = regexp.MustCompile(`\d+`)

// NormalizeDate converts a bank date cell into YYYY-MM-DD.
// Accepted shapes are DD/MM/YYYY, DD-MM-YYYY, YYYY-MM-DD and YYYY/MM/DD; the
// order is decided by whether the first numeric group has four digits.
// Two-digit years are taken as 20xx. Missing or unparseable dates resolve to
// now, which is a deliberate lossy default.
func NormalizeDate(raw string, now time.Time) string {
	fallback := now.Format(ISODateFormat)
	parts := dateGroups.FindAllString(raw, -1)
	if len(parts) < 3 {
		return fallback
	}

	var year, month, day string
	if len(parts[0]) == 4 {
		year, month, day = parts[0], parts[1], parts[2]
	} else {
		day, month, year = parts[0], parts[1], parts[2]
		if len(year) <= 2 {
			year = "20" + fmt.Sprintf("%02s", year)
		}
	}
	if len(year) != 4 {
		return fallback
	}

	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return fallback
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31/02 -> 03/03); such dates are invalid.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return fallback
	}
	return t.Format(ISODateFormat)
}
