package booking

import (
	"errors"
	"strings"
	"time"

	"hrdesk/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var errSkippedTime = errors.New("time skipped by a daylight saving transition")

var (
	clockLayouts    = []string{clockLayout, "15:04:05"}
	dateTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02 15:04:05"}
)

// resolve turns the civil input into an absolute UTC interval.
func (in IntervalInput) resolve(loc *time.Location) (time.Time, time.Time, error) {
	date := strings.TrimSpace(in.Date)
	startClock := strings.TrimSpace(in.StartTime)
	endClock := strings.TrimSpace(in.EndTime)
	startAt := strings.TrimSpace(in.StartAt)
	endAt := strings.TrimSpace(in.EndAt)

	useDateTimes := startAt != "" || endAt != ""
	useClock := date != "" || startClock != "" || endClock != ""
	if useDateTimes && useClock {
		return time.Time{}, time.Time{}, invalidField("start_at", "use either date with start_time and end_time, or start_at with end_at")
	}

	fields := map[string]string{}
	var start, end time.Time

	if useDateTimes {
		var err error
		if start, err = parseDateTime(startAt, loc); err != nil {
			fields["start_at"] = dateTimeMessage(startAt, err, loc)
		}
		if end, err = parseDateTime(endAt, loc); err != nil {
			fields["end_at"] = dateTimeMessage(endAt, err, loc)
		}
	} else {
		day, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			fields["date"] = requiredOr(date, "must be a date in YYYY-MM-DD format")
		}
		startOff, err := parseClock(startClock)
		if err != nil {
			fields["start_time"] = requiredOr(startClock, "must be a time in HH:mm format")
		}
		endOff, err := parseClock(endClock)
		if err != nil {
			fields["end_time"] = requiredOr(endClock, "must be a time in HH:mm format")
		}
		if len(fields) == 0 {
			var ok bool
			if start, ok = atClock(day, startOff, loc); !ok {
				fields["start_time"] = skippedMessage(loc)
			}
			if end, ok = atClock(day, endOff, loc); !ok {
				fields["end_time"] = skippedMessage(loc)
			}
		}
	}

	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &ValidationError{Fields: fields}
	}

	start = domain.NormalizeTime(start)
	end = domain.NormalizeTime(end)
	if !start.Before(end) {
		field := "end_time"
		if useDateTimes {
			field = "end_at"
		}
		return time.Time{}, time.Time{}, invalidField(field, "must be after the start")
	}
	return start, end, nil
}

// parseDateTime accepts a civil date-time in loc, or RFC3339 with an explicit offset.
func parseDateTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrValidation
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			if t.Format(layout) != s {
				return time.Time{}, errSkippedTime
			}
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseClock(s string) (time.Duration, error) {
	if s == "" {
		return 0, ErrValidation
	}
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// atClock builds the wall-clock time on day in loc, so DST days keep their
// civil meaning. It reports false for a time skipped by a forward transition.
func atClock(day time.Time, off time.Duration, loc *time.Location) (time.Time, bool) {
	h := int(off / time.Hour)
	m := int(off % time.Hour / time.Minute)
	sec := int(off % time.Minute / time.Second)
	t := time.Date(day.Year(), day.Month(), day.Day(), h, m, sec, 0, loc)
	return t, t.Hour() == h && t.Minute() == m
}

// dayBounds returns the UTC interval covering the civil date in loc.
func dayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidField("date", requiredOr(date, "must be a date in YYYY-MM-DD format"))
	}
	next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	return day.UTC(), next.UTC(), nil
}

func dateTimeMessage(s string, err error, loc *time.Location) string {
	if errors.Is(err, errSkippedTime) {
		return skippedMessage(loc)
	}
	return requiredOr(s, "must be a date-time like 2006-01-02T15:04 or RFC3339")
}

func skippedMessage(loc *time.Location) string {
	return "does not exist on this date in " + loc.String()
}

func requiredOr(value, msg string) string {
	if strings.TrimSpace(value) == "" {
		return "is required"
	}
	return msg
}
