// Package timeparse converts free-form time expressions into absolute
// timestamps. It is a pure function of the input text and a reference
// instant, with no side effects.
//
// Supported grammar families, tried in order until one fully matches:
//
//  1. Relative short-form: "3d 12h", "1h 30m", "45m"
//  2. Relative long-form: "2 hours 15 minutes", "1 day"
//  3. Colon duration: "1:30" (one hour thirty minutes from now, not clock time)
//  4. Named day plus optional time: "today 3pm", "tomorrow", "fri 10am"
//  5. Explicit date: "4/20", "12-25 18:00", "apr 15", "may 20 2024 2pm"
//  6. Bare time of day: "3pm", "15h30", "7"
//
// When a date or day name carries no time of day, midnight (00:00) is used.
// Results are always strictly after the reference instant: a clock time that
// has already passed today rolls to tomorrow, a weekday equal to today whose
// time has passed (or equals the reference) rolls to next week, and a
// month/day without an explicit year that has already passed rolls to next
// year.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnrecognizedFormat reports input that matches no grammar family.
	ErrUnrecognizedFormat = errors.New("unrecognized time format")

	// ErrInvalidValue reports a matched grammar with an out-of-range field,
	// such as month 13, minute 61, or February 30.
	ErrInvalidValue = errors.New("invalid time value")
)

// matcher attempts one grammar family against the normalized input.
// It reports whether the family's pattern fully matched; a match with an
// out-of-range field returns an error wrapping ErrInvalidValue.
type matcher func(input string, now time.Time) (time.Time, bool, error)

var matchers = []matcher{
	matchRelativeShort,
	matchRelativeLong,
	matchColonDuration,
	matchNamedDay,
	matchExplicitDate,
	matchClockTime,
}

// Parse resolves a time expression against the reference instant now.
// The input is trimmed and matched case-insensitively. The first grammar
// family whose pattern fully matches wins; there is no backtracking across
// families.
func Parse(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnrecognizedFormat)
	}

	for _, match := range matchers {
		t, ok, err := match(s, now)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedFormat, input)
}

var (
	relShortFullRe  = regexp.MustCompile(`^(?:\d+[dhm][\s,]*)+$`)
	relShortTokenRe = regexp.MustCompile(`(\d+)([dhm])`)
)

// matchRelativeShort handles sequences of <integer><unit> tokens where the
// unit is d, h, or m. Tokens may appear in any order and repeat; their
// durations are summed.
func matchRelativeShort(input string, now time.Time) (time.Time, bool, error) {
	if !relShortFullRe.MatchString(input) {
		return time.Time{}, false, nil
	}

	var total time.Duration
	for _, tok := range relShortTokenRe.FindAllStringSubmatch(input, -1) {
		n, err := strconv.Atoi(tok[1])
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidValue, tok[1])
		}
		switch tok[2] {
		case "d":
			total += time.Duration(n) * 24 * time.Hour
		case "h":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		}
	}
	return now.Add(total), true, nil
}

var relLongRe = regexp.MustCompile(
	`^(?:(\d+)\s*days?)?[\s,]*(?:(\d+)\s*(?:hours?|hrs?))?[\s,]*(?:(\d+)\s*(?:minutes?|mins?))?$`)

// matchRelativeLong handles spelled-out units: "2 hours 15 minutes",
// "1 day", "90 mins". Same semantics as the short form.
func matchRelativeLong(input string, now time.Time) (time.Time, bool, error) {
	m := relLongRe.FindStringSubmatch(input)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "") {
		return time.Time{}, false, nil
	}

	var total time.Duration
	for i, unit := range []time.Duration{24 * time.Hour, time.Hour, time.Minute} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidValue, m[i+1])
		}
		total += time.Duration(n) * unit
	}
	return now.Add(total), true, nil
}

var colonDurationRe = regexp.MustCompile(`^(\d+):(\d{2})$`)

// matchColonDuration handles "H:MM" as a duration added to now. A bare
// colon expression is never interpreted as clock time; clock times with a
// colon are only reachable after a day name or date prefix.
func matchColonDuration(input string, now time.Time) (time.Time, bool, error) {
	m := colonDurationRe.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, false, nil
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if minutes > 59 {
		return time.Time{}, false, fmt.Errorf("%w: minute %d out of range", ErrInvalidValue, minutes)
	}
	return now.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), true, nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "weds": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// matchNamedDay handles "today", "tomorrow", or a weekday name, optionally
// followed by a time of day. Without a time, midnight is assumed. A result
// not after now advances by the implied period: a day for "today", a week
// for a weekday equal to today.
func matchNamedDay(input string, now time.Time) (time.Time, bool, error) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	var dayOffset int
	var weekRoll bool

	switch name {
	case "today":
	case "tomorrow", "tmr", "tmrw":
		dayOffset = 1
	default:
		wd, ok := weekdays[name]
		if !ok {
			return time.Time{}, false, nil
		}
		dayOffset = (int(wd) - int(now.Weekday()) + 7) % 7
		weekRoll = dayOffset == 0
	}

	hour, minute := 0, 0
	if rest != "" {
		h, m, ok, err := parseClock(rest)
		if err != nil {
			return time.Time{}, false, err
		}
		if !ok {
			return time.Time{}, false, nil
		}
		hour, minute = h, m
	}

	t := time.Date(now.Year(), now.Month(), now.Day()+dayOffset, hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		if weekRoll {
			t = t.AddDate(0, 0, 7)
		} else {
			t = t.AddDate(0, 0, 1)
		}
	}
	return t, true, nil
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var (
	numericDateRe   = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{4}))?(?:\s+(.+))?$`)
	monthNameDateRe = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{1,2})(?:,?\s+(\d{4}))?(?:\s+(.+))?$`)
)

// matchExplicitDate handles "M/D", "M-D", and month-name dates, with an
// optional year and an optional trailing time of day. Without a year the
// current year is assumed; if that instant has already passed, the date
// rolls to next year. An explicit year producing a past instant is rejected.
func matchExplicitDate(input string, now time.Time) (time.Time, bool, error) {
	var month time.Month
	var day, year int
	var rest string
	yearGiven := false

	if m := numericDateRe.FindStringSubmatch(input); m != nil {
		mo, _ := strconv.Atoi(m[1])
		if mo < 1 || mo > 12 {
			return time.Time{}, false, fmt.Errorf("%w: month %d out of range", ErrInvalidValue, mo)
		}
		month = time.Month(mo)
		day, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			yearGiven = true
		}
		rest = m[4]
	} else if m := monthNameDateRe.FindStringSubmatch(input); m != nil {
		mo, ok := months[m[1]]
		if !ok {
			return time.Time{}, false, nil
		}
		month = mo
		day, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			yearGiven = true
		}
		rest = m[4]
	} else {
		return time.Time{}, false, nil
	}

	hour, minute := 0, 0
	if rest = strings.TrimSpace(rest); rest != "" {
		h, mi, ok, err := parseClock(rest)
		if err != nil {
			return time.Time{}, false, err
		}
		if !ok {
			return time.Time{}, false, nil
		}
		hour, minute = h, mi
	}

	if !yearGiven {
		year = now.Year()
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if t.Month() != month || t.Day() != day {
		// time.Date normalized an impossible day, e.g. February 30.
		return time.Time{}, false, fmt.Errorf("%w: day %d out of range for %s", ErrInvalidValue, day, month)
	}

	if !t.After(now) {
		if yearGiven {
			return time.Time{}, false, fmt.Errorf("%w: %q is in the past", ErrInvalidValue, input)
		}
		t = t.AddDate(1, 0, 0)
	}
	return t, true, nil
}

// matchClockTime handles a bare time of day, resolved against today and
// rolling to tomorrow if already past.
func matchClockTime(input string, now time.Time) (time.Time, bool, error) {
	hour, minute, ok, err := parseClock(input)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true, nil
}

var (
	clock12Re   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	clock24Re   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clockEuroRe = regexp.MustCompile(`^(\d{1,2})h(\d{2})?$`)
	clockBareRe = regexp.MustCompile(`^(\d{1,2})$`)
)

// parseClock parses a time-of-day expression: 12-hour with am/pm, 24-hour
// "HH:MM", European "15h30"/"15h", or a bare hour number.
func parseClock(s string) (hour, minute int, ok bool, err error) {
	switch {
	case clock12Re.MatchString(s):
		m := clock12Re.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 {
			return 0, 0, false, fmt.Errorf("%w: hour %d out of range for 12-hour clock", ErrInvalidValue, hour)
		}
		if hour == 12 {
			hour = 0
		}
		if m[3] == "pm" {
			hour += 12
		}
	case clock24Re.MatchString(s):
		m := clock24Re.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	case clockEuroRe.MatchString(s):
		m := clockEuroRe.FindStringSubmatch(s)
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
	case clockBareRe.MatchString(s):
		hour, _ = strconv.Atoi(s)
	default:
		return 0, 0, false, nil
	}

	if hour > 23 {
		return 0, 0, false, fmt.Errorf("%w: hour %d out of range", ErrInvalidValue, hour)
	}
	if minute > 59 {
		return 0, 0, false, fmt.Errorf("%w: minute %d out of range", ErrInvalidValue, minute)
	}
	return hour, minute, true, nil
}
