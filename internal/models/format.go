package models

import (
	"strconv"
	"time"
)

// FormatPrice renders an amount in the smallest currency unit with thousands
// separators, e.g. 1250000 -> "1,250,000".
func FormatPrice(p int64) string {
	s := strconv.FormatInt(p, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// FormatDate converts a stored ISO date into the display form DD/MM/YYYY.
// Unparseable or empty values are returned unchanged.
func FormatDate(iso string) string {
	if iso == "" {
		return iso
	}
	d, err := time.Parse(DateLayout, iso)
	if err != nil {
		return iso
	}
	return d.Format(InputDateLayout)
}
