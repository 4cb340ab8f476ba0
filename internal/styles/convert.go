package styles

import (
	"fmt"
	"math"
	"time"
)

// serialToTime converts an Excel day-serial number to a time.Time, handling
// both date systems.
//
// The 1900 system compensates for the Lotus 1-2-3 leap-year bug: Excel
// treats 1900 as a leap year, so serial 60 is displayed as the non-existent
// 1900-02-29. Using an epoch of 1899-12-31 and plain day addition for
// serials below 61 reproduces that quirk naturally (Go's calendar rolls the
// nonexistent Feb 29 1900 into Mar 1 automatically); serials 61 and above
// subtract one day to undo the phantom leap day so later dates land on
// their real calendar day.
func serialToTime(serial float64, date1904 bool) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, fmt.Errorf("styles: invalid serial %v", serial)
	}
	if serial < 0 {
		return time.Time{}, fmt.Errorf("styles: negative serial %v not supported", serial)
	}

	fracSec, rollover := fractionalSeconds(serial)

	if date1904 {
		base := time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
		intPart := int(serial) + rollover
		return base.Add(time.Duration(intPart)*24*time.Hour + time.Duration(fracSec)*time.Second), nil
	}

	base := time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	intPart := int(serial) + rollover
	switch {
	case intPart == 0:
		return time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(fracSec) * time.Second), nil
	case intPart >= 61:
		return base.Add(time.Duration(intPart-1)*24*time.Hour + time.Duration(fracSec)*time.Second), nil
	default:
		return base.Add(time.Duration(intPart)*24*time.Hour + time.Duration(fracSec)*time.Second), nil
	}
}

// fractionalSeconds converts the fractional-day part of an Excel serial
// into a whole-second count within the day (0-86399), plus a day-rollover
// flag (0 or 1) for when half-second rounding pushes the result to the next
// midnight.
func fractionalSeconds(serial float64) (seconds int64, rollover int) {
	const roundEpsilon = 1e-9
	fracDay := (serial - math.Trunc(serial)) + roundEpsilon
	const nanosPerDay = float64(24 * 60 * 60 * 1e9)
	durNanos := time.Duration(fracDay * nanosPerDay)
	ns := int(durNanos % time.Second)
	secs := int64(durNanos / time.Second)
	if ns > 500_000_000 {
		secs++
	}
	if secs < 0 {
		secs = 0
	}
	rollover = int(secs / 86400)
	secs = secs % 86400
	return secs, rollover
}
