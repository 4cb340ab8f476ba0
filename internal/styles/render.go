package styles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/nfp"
)

// RenderDate renders a date serial number using formatCode (the cell's
// resolved number format) unless override is non-empty, in which case
// override is used as the rendering pattern directly. Both paths accept the
// portable strftime-like verbs produced by translateFormatCode: %Y %y %m %d
// %H %M %S %I %p %A %a %B %b.
func RenderDate(raw string, formatCode string, override string, date1904 bool) (string, error) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("styles: date value %q: %w", raw, err)
	}
	t, err := serialToTime(serial, date1904)
	if err != nil {
		return "", fmt.Errorf("styles: date value %q: %w", raw, err)
	}
	pattern := override
	if pattern == "" {
		pattern = translateFormatCode(formatCode)
	}
	return strings.TrimSpace(strftime(t, pattern)), nil
}

// RenderTime renders a time-of-day serial number (the fractional-day part
// of an Excel serial) using timeformat, defaulting to "%H:%M" when empty.
func RenderTime(raw string, timeformat string) (string, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("styles: time value %q: %w", raw, err)
	}
	if timeformat == "" {
		timeformat = "%H:%M"
	}
	frac := v - float64(int64(v))
	if frac < 0 {
		frac += 1
	}
	totalSeconds := roundToMicros(frac * 86400)
	h := int(totalSeconds) / 3600 % 24
	m := int(totalSeconds) / 60 % 60
	s := int(totalSeconds) % 60
	return strftimeHMS(timeformat, h, m, s), nil
}

func roundToMicros(seconds float64) float64 {
	const scale = 1e6
	return float64(int64(seconds*scale+0.5)) / scale
}

// RenderFloat renders a numeric value according to spec §4.7.3's float
// rules: scientific-notation input or an unsupported/general format use
// floatformat (default "%f") with trailing zeros and a dangling decimal
// point stripped; formats beginning with "0.0" use a fixed decimal count
// taken from the format's own placeholder tokens, counted with
// github.com/xuri/nfp's tokenizer. For such a format containing a percent
// sign, the value is scaled by 100 and one extra decimal is used; no
// percent sign is appended.
func RenderFloat(raw string, formatCode string, floatformat string) (string, error) {
	if floatformat == "" {
		floatformat = "%f"
	}
	lower := strings.ToLower(formatCode)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("styles: float value %q: %w", raw, err)
	}

	if scientificNotation.MatchString(raw) || lower == "general" || lower == "" || !strings.HasPrefix(lower, "0.0") {
		s := sprintfOne(floatformat, v)
		return stripTrailingZeros(s), nil
	}

	decimals, hasPercent := decimalPlaceholders(formatCode)
	if hasPercent {
		decimals++
		v *= 100
	}
	return fmt.Sprintf("%.*f", decimals, v), nil
}

var scientificNotation = regexp.MustCompile(`[eE][+-]?\d+`)

// decimalPlaceholders parses format with nfp's number-format tokenizer and
// counts the zero/hash placeholders after the decimal point in its first
// section, reporting also whether that section contains a percent sign.
func decimalPlaceholders(format string) (decimals int, hasPercent bool) {
	sections := nfp.NumberFormatParser().Parse(format)
	if len(sections) == 0 {
		return fractionDigitsFallback(format), strings.Contains(format, "%")
	}
	afterDecimal := false
	for _, tok := range sections[0].Items {
		switch tok.TType {
		case nfp.TokenTypeDecimalPoint:
			afterDecimal = true
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if afterDecimal {
				decimals += len(tok.TValue)
			}
		case nfp.TokenTypePercent:
			hasPercent = true
		}
	}
	return decimals, hasPercent
}

// fractionDigitsFallback counts the digits of the fractional placeholder
// run right after the decimal point directly, used only if nfp fails to
// produce any section for an otherwise well-formed "0.0"-style format.
func fractionDigitsFallback(format string) int {
	idx := strings.IndexByte(format, '.')
	if idx < 0 {
		return 0
	}
	n := 0
	for i := idx + 1; i < len(format) && (format[i] == '0' || format[i] == '#'); i++ {
		n++
	}
	return n
}

func stripTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// sprintfOne applies a caller-supplied single-verb format string (in the
// style of Python's "%f"/"%.2f") to v using fmt.Sprintf, which accepts the
// same verb syntax for floats.
func sprintfOne(format string, v float64) string {
	return fmt.Sprintf(format, v)
}
