package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ms-reminders/internal/models"
)

// Window is the appointment reminder sub-type that is due on a given run.
type Window string

const (
	WindowNone            Window = ""
	WindowOneHour         Window = "1hour"
	WindowTwentyFourHours Window = "24hours"
)

const dateLayout = "2006-01-02"

// AppointmentLookback must stay shorter than the 23h gap between the two
// appointment windows, otherwise a 24hours reminder would suppress the 1hour one.
const AppointmentLookback = 2 * time.Hour

var ErrInvalidSchedule = errors.New("invalid schedule value")

// ParseDate reads a naive calendar date in loc. Timestamps are truncated to their date part.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidSchedule, s)
	}
	return d, nil
}

// parseClock accepts "15:04", "15:04:05" and "15:04:05.999999".
func parseClock(s string) (hour, minute, second int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, s)
	}
	if parts[0] == "" || parts[1] == "" {
		return 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, s)
	}
	if len(parts) == 3 {
		sec := parts[2]
		if i := strings.IndexByte(sec, '.'); i >= 0 {
			sec = sec[:i]
		}
		second, err = strconv.Atoi(sec)
		if err != nil || second < 0 || second > 59 {
			return 0, 0, 0, fmt.Errorf("%w: time %q", ErrInvalidSchedule, s)
		}
	}
	return hour, minute, second, nil
}

// AppointmentAt combines the appointment's date and time of day into one instant in loc.
func AppointmentAt(a models.Appointment, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	h, m, s, err := parseClock(a.Time)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc), nil
}

// ClassifyAppointment decides which reminder, if any, is due for a at now.
// Both windows are one hour wide, so a sweep that runs less often than hourly can miss one.
func ClassifyAppointment(a models.Appointment, now time.Time) (Window, time.Time, error) {
	if !a.Status.IsReminderEligible() {
		return WindowNone, time.Time{}, nil
	}

	at, err := AppointmentAt(a, now.Location())
	if err != nil {
		return WindowNone, time.Time{}, err
	}

	hoursUntil := at.Sub(now).Hours()
	switch {
	case hoursUntil > 0 && hoursUntil <= 1:
		return WindowOneHour, at, nil
	case hoursUntil > 23 && hoursUntil <= 24:
		return WindowTwentyFourHours, at, nil
	default:
		return WindowNone, at, nil
	}
}

// IsPrescriptionActive reports whether p covers the calendar day of now.
func IsPrescriptionActive(p models.Prescription, now time.Time) (bool, error) {
	today := StartOfDay(now)

	start, err := ParseDate(p.StartDate, now.Location())
	if err != nil {
		return false, err
	}
	if start.After(today) {
		return false, nil
	}

	if p.EndDate == nil || strings.TrimSpace(*p.EndDate) == "" {
		return true, nil
	}
	end, err := ParseDate(*p.EndDate, now.Location())
	if err != nil {
		return false, err
	}
	return !end.Before(today), nil
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LookbackStart returns the earliest sent_at that still counts as a prior send.
func LookbackStart(nt models.NotificationType, now time.Time) time.Time {
	if nt == models.NotificationTypeMedicationReminder {
		return StartOfDay(now)
	}
	return now.Add(-AppointmentLookback)
}

// claimTTL is how long a cross-instance claim must outlive the run to cover the lookback.
func claimTTL(nt models.NotificationType, now time.Time) time.Duration {
	if nt == models.NotificationTypeMedicationReminder {
		return StartOfDay(now).AddDate(0, 0, 1).Sub(now)
	}
	return AppointmentLookback
}
