// Package schedule evaluates the five-field schedule expressions that control
// when a team's reminder fires.
//
// The expression format is minute, hour, day-of-month, month, day-of-week,
// separated by whitespace. Reminders run at most hourly, so only the hour and
// day-of-week fields are evaluated; minute, day-of-month, and month are
// accepted for familiarity but never checked. Day-of-week values are 0-6 with
// 0 meaning Sunday.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	fieldCount = 5

	wildcard = "*"

	maxHour      = 23
	maxDayOfWeek = 6
)

// Expression is a parsed schedule expression.
type Expression struct {
	raw  string
	hour int // -1 for wildcard
	days map[time.Weekday]struct{}
}

// Parse validates and parses a schedule expression. Inverted day-of-week
// ranges such as "5-2" are rejected rather than given wraparound semantics.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("schedule %q: expected %d fields, got %d", expr, fieldCount, len(fields))
	}

	e := &Expression{raw: expr, hour: -1}

	hourField := fields[1]
	if hourField != wildcard {
		hour, err := strconv.Atoi(hourField)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: invalid hour %q: %w", expr, hourField, err)
		}
		if hour < 0 || hour > maxHour {
			return nil, fmt.Errorf("schedule %q: hour %d out of range 0-%d", expr, hour, maxHour)
		}
		e.hour = hour
	}

	dowField := fields[4]
	if dowField != wildcard {
		days, err := parseDayOfWeek(dowField)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", expr, err)
		}
		e.days = days
	}

	return e, nil
}

// parseDayOfWeek expands a comma-separated list of day literals and inclusive
// ranges into a weekday set.
func parseDayOfWeek(field string) (map[time.Weekday]struct{}, error) {
	days := make(map[time.Weekday]struct{})

	for _, token := range strings.Split(field, ",") {
		start, end, found := strings.Cut(token, "-")
		if !found {
			end = start
		}

		lo, err := parseDay(start)
		if err != nil {
			return nil, err
		}
		hi, err := parseDay(end)
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, fmt.Errorf("inverted day-of-week range %q", token)
		}

		for d := lo; d <= hi; d++ {
			days[time.Weekday(d)] = struct{}{}
		}
	}

	return days, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid day-of-week %q: %w", s, err)
	}
	if day < 0 || day > maxDayOfWeek {
		return 0, fmt.Errorf("day-of-week %d out of range 0-%d", day, maxDayOfWeek)
	}
	return day, nil
}

// Matches reports whether the expression fires at the given instant. The
// result depends only on the instant's hour and weekday; callers decide which
// clock (and time zone) to feed in.
func (e *Expression) Matches(now time.Time) bool {
	if e.hour >= 0 && now.Hour() != e.hour {
		return false
	}
	if e.days != nil {
		if _, ok := e.days[now.Weekday()]; !ok {
			return false
		}
	}
	return true
}

// String returns the original expression text.
func (e *Expression) String() string {
	return e.raw
}
