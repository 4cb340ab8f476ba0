package styles

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// translateFormatCode turns a number format code such as "mm-dd-yy" or
// "h:mm:ss" into a pattern built from the portable verbs strftime
// understands (%Y %y %m %d %H %M %S %I %p %A %a %B %b), so a cell that
// carries no caller-supplied dateformat override still renders using the
// shape the workbook author chose.
//
// Unlike a blind left-to-right substring replace, tokens are scanned as
// runs of identical letters so that "mm" can be resolved correctly: it
// means minutes only when it immediately follows an hour token ("h:mm"),
// and month otherwise ("mm-dd-yy"). This mirrors the hour-context tracking
// every Excel-format renderer needs for the same ambiguity.
func translateFormatCode(format string) string {
	format = localeTag.ReplaceAllString(format, "")
	format = strings.TrimSuffix(strings.TrimSpace(format), ";@")

	var out strings.Builder
	lastWasHour := false
	runes := []rune(format)
	for i := 0; i < len(runes); {
		ch := runes[i]
		lower := toLowerRune(ch)

		switch {
		case strings.HasPrefix(strings.ToLower(string(runes[i:])), "am/pm"):
			out.WriteString("%p")
			i += 5
			continue
		case strings.HasPrefix(strings.ToLower(string(runes[i:])), "a/p"):
			out.WriteString("%p")
			i += 3
			continue
		}

		if isLetter(lower) {
			j := i
			for j < len(runes) && toLowerRune(runes[j]) == lower {
				j++
			}
			run := string(runes[i:j])
			n := len(run)

			switch lower {
			case 'y':
				if n >= 4 {
					out.WriteString("%Y")
				} else {
					out.WriteString("%y")
				}
				lastWasHour = false
			case 'm':
				switch {
				case n >= 4:
					out.WriteString("%B")
					lastWasHour = false
				case n == 3:
					out.WriteString("%b")
					lastWasHour = false
				case lastWasHour:
					out.WriteString("%M")
				default:
					out.WriteString("%m")
					lastWasHour = false
				}
			case 'd':
				switch {
				case n >= 4:
					out.WriteString("%A")
				case n == 3:
					out.WriteString("%a")
				default:
					out.WriteString("%d")
				}
				lastWasHour = false
			case 'h':
				if n >= 2 {
					out.WriteString("%H")
				} else {
					out.WriteString("%I")
				}
				lastWasHour = true
			case 's':
				out.WriteString("%S")
				lastWasHour = false
			default:
				out.WriteString(run)
			}
			i = j
			continue
		}

		out.WriteRune(ch)
		i++
	}
	return out.String()
}

var localeTag = regexp.MustCompile(`\[\$-[^\]]*\]`)

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// strftime expands the portable verbs translateFormatCode produces (plus
// any the caller supplied directly via a dateformat override) against t.
func strftime(t time.Time, pattern string) string {
	r := strings.NewReplacer(
		"%Y", fmt.Sprintf("%04d", t.Year()),
		"%y", fmt.Sprintf("%02d", t.Year()%100),
		"%m", fmt.Sprintf("%02d", int(t.Month())),
		"%d", fmt.Sprintf("%02d", t.Day()),
		"%H", fmt.Sprintf("%02d", t.Hour()),
		"%M", fmt.Sprintf("%02d", t.Minute()),
		"%S", fmt.Sprintf("%02d", t.Second()),
		"%I", fmt.Sprintf("%02d", hour12(t.Hour())),
		"%p", ampm(t.Hour()),
		"%A", t.Weekday().String(),
		"%a", t.Weekday().String()[:3],
		"%B", t.Month().String(),
		"%b", t.Month().String()[:3],
	)
	return r.Replace(pattern)
}

// strftimeHMS expands the same verb set against a bare hour/minute/second
// triple, used for time-of-day values that carry no calendar date.
func strftimeHMS(pattern string, h, m, s int) string {
	r := strings.NewReplacer(
		"%H", fmt.Sprintf("%02d", h),
		"%M", fmt.Sprintf("%02d", m),
		"%S", fmt.Sprintf("%02d", s),
		"%I", fmt.Sprintf("%02d", hour12(h)),
		"%p", ampm(h),
	)
	return r.Replace(pattern)
}

func hour12(h int) int {
	h = h % 12
	if h == 0 {
		h = 12
	}
	return h
}

func ampm(h int) string {
	if h >= 12 {
		return "PM"
	}
	return "AM"
}
