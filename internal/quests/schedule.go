package quests

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

// Schedule is the structured recurrence payload stored as JSON on templates
// and subscriptions. Day is a weekday name for weekly schedules and a
// day-of-month number for monthly ones.
type Schedule struct {
	Type string          `json:"type"`
	Time string          `json:"time"`
	Day  json.RawMessage `json:"day,omitempty"`
}

var weekdays = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// ParseSchedule decodes and validates a stored schedule JSON string.
func ParseSchedule(raw string) (*Schedule, error) {
	var sched Schedule
	if err := json.Unmarshal([]byte(raw), &sched); err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidSchedule, "Schedule is not valid JSON")
	}

	if _, _, err := parseClock(sched.Time); err != nil {
		return nil, err
	}

	switch sched.Type {
	case models.RecurrenceDaily:
		// No day field needed.
	case models.RecurrenceWeekly:
		if _, err := sched.weekday(); err != nil {
			return nil, err
		}
	case models.RecurrenceMonthly:
		if _, err := sched.monthDay(); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Unknown schedule type %q", sched.Type))
	}

	return &sched, nil
}

// ValidateSchedule checks a template or subscription's schedule against its
// recurrence. One-off recurrences must not carry a schedule; recurring ones
// must, and the schedule type must match the recurrence.
func ValidateSchedule(recurrence string, schedule *string) error {
	switch recurrence {
	case models.RecurrenceOneOff:
		if schedule != nil {
			return apperr.Validation(apperr.CodeInvalidSchedule, "One-off templates cannot have a schedule")
		}
		return nil
	case models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		if schedule == nil {
			return apperr.Validation(apperr.CodeInvalidSchedule,
				fmt.Sprintf("A %s recurrence requires a schedule", recurrence))
		}
		sched, err := ParseSchedule(*schedule)
		if err != nil {
			return err
		}
		if sched.Type != recurrence {
			return apperr.Validation(apperr.CodeInvalidSchedule,
				fmt.Sprintf("Schedule type %q does not match recurrence %q", sched.Type, recurrence))
		}
		return nil
	default:
		return apperr.Validation(apperr.CodeInvalidInput,
			fmt.Sprintf("Unknown recurrence %q", recurrence))
	}
}

func (s *Schedule) weekday() (int, error) {
	var name string
	if err := json.Unmarshal(s.Day, &name); err != nil {
		return 0, apperr.Validation(apperr.CodeInvalidSchedule, "Weekly schedule day must be a weekday name")
	}
	wd, ok := weekdays[strings.ToLower(name)]
	if !ok {
		return 0, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Unknown weekday %q", name))
	}
	return wd, nil
}

func (s *Schedule) monthDay() (int, error) {
	var day int
	if err := json.Unmarshal(s.Day, &day); err != nil {
		return 0, apperr.Validation(apperr.CodeInvalidSchedule, "Monthly schedule day must be a number")
	}
	if day < 1 || day > 31 {
		return 0, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Day of month %d is out of range", day))
	}
	return day, nil
}

func parseClock(value string) (hour, minute int, err error) {
	if _, perr := fmt.Sscanf(value, "%d:%d", &hour, &minute); perr != nil {
		return 0, 0, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Invalid time %q, expected HH:MM", value))
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Invalid time %q, expected HH:MM", value))
	}
	return hour, minute, nil
}

// NextGenerationTime computes when a recurring template or subscription
// should next materialize a quest.
func NextGenerationTime(now time.Time, lastGeneratedAt *time.Time, sched *Schedule) (time.Time, error) {
	hour, minute, err := parseClock(sched.Time)
	if err != nil {
		return time.Time{}, err
	}

	at := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	}

	switch sched.Type {
	case models.RecurrenceDaily:
		// Never generated: today's slot even if it already passed, so the
		// sweep catches up immediately instead of waiting a day.
		if lastGeneratedAt == nil {
			return at(now), nil
		}
		if sameDay(*lastGeneratedAt, now) {
			return at(now.AddDate(0, 0, 1)), nil
		}
		return at(now), nil

	case models.RecurrenceWeekly:
		target, err := sched.weekday()
		if err != nil {
			return time.Time{}, err
		}
		// Monday=0 to match the stored day names.
		current := (int(now.Weekday()) + 6) % 7
		daysAhead := target - current
		if daysAhead < 0 {
			daysAhead += 7
		}
		if daysAhead == 0 && !now.Before(at(now)) {
			daysAhead = 7
		}
		next := at(now.AddDate(0, 0, daysAhead))
		if lastGeneratedAt != nil && next.Sub(*lastGeneratedAt) < 7*24*time.Hour {
			next = next.AddDate(0, 0, 7)
		}
		return next, nil

	case models.RecurrenceMonthly:
		day, err := sched.monthDay()
		if err != nil {
			return time.Time{}, err
		}
		year, month := now.Year(), now.Month()
		generatedThisMonth := lastGeneratedAt != nil &&
			lastGeneratedAt.Year() == year && lastGeneratedAt.Month() == month

		next := monthlyAt(year, month, day, hour, minute, now.Location())
		if generatedThisMonth || next.Before(now) {
			year, month = nextMonth(year, month)
			next = monthlyAt(year, month, day, hour, minute, now.Location())
		}
		return next, nil

	default:
		return time.Time{}, apperr.Validation(apperr.CodeInvalidSchedule,
			fmt.Sprintf("Unknown schedule type %q", sched.Type))
	}
}

// monthlyAt builds the target instant, clamping the requested day to the
// month's last valid day (31 in February becomes the 28th or 29th).
func monthlyAt(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
