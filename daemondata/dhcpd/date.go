package dhcpddata

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Layout of the date and time in the lease file, e.g. 2019/01/01 22:00:00.
const dateLayout = "2006/01/02 15:04:05"

// Calendar timestamp of a lease event. The lease file writes the weekday
// next to the date; the weekday is kept as written and is not checked
// against the date. The timezone token, if present, is recorded but the
// time is always interpreted as UTC.
type Date struct {
	Weekday  time.Weekday
	Time     time.Time
	Timezone string
}

// Creates a date from the lease file tokens. The weekday is a number
// from 0 (Sunday) to 6 (Saturday). An empty timezone means that the
// timezone was not specified.
func NewDate(weekday, date, clock, timezone string) (Date, error) {
	day, err := strconv.Atoi(weekday)
	if err != nil || day < 0 || day > 6 {
		return Date{}, errors.Errorf("invalid weekday '%s'; expected a number from 0 to 6", weekday)
	}
	parsed, err := time.Parse(dateLayout, fmt.Sprintf("%s %s", date, clock))
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid date '%s %s'", date, clock)
	}
	return Date{
		Weekday:  time.Weekday(day),
		Time:     parsed.UTC(),
		Timezone: timezone,
	}, nil
}

// Creates a date from the number of seconds since the Unix epoch. This
// form is written by the server configured with the local time format.
func NewDateFromEpoch(seconds string) (Date, error) {
	value, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid epoch time '%s'", seconds)
	}
	t := time.Unix(value, 0).UTC()
	return Date{
		Weekday: t.Weekday(),
		Time:    t,
	}, nil
}

// Creates a date from the time value.
func NewDateFromTime(t time.Time) Date {
	t = t.UTC()
	return Date{
		Weekday: t.Weekday(),
		Time:    t,
	}
}

// Compares two dates. It returns -1 when d is earlier than other, +1 when
// it is later and 0 when both dates denote the same instant.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// Checks if the date is earlier than the other date.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Checks if the date is later than the other date.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Checks if both dates denote the same instant.
func (d Date) Equal(other Date) bool {
	return d.Compare(other) == 0
}

// Returns the date in the form: Monday 1985/01/01 00:00:00.
func (d Date) String() string {
	return fmt.Sprintf("%s %s", d.Weekday, d.Time.Format(dateLayout))
}
