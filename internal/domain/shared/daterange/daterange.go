package daterange

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// KeyLayout is the canonical day key used for every set lookup and comparison.
const KeyLayout = "2006-01-02"

var (
	ErrInvalidDay   = errors.New("daterange: invalid day")
	ErrInvalidRange = errors.New("daterange: end must not be before start")
)

// Day is a calendar date with no time-of-day, stored as UTC midnight.
type Day struct {
	t time.Time
}

// Date builds a day from calendar components.
func Date(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf converts an instant to UTC and drops the time of day.
func DayOf(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// Today returns the calendar date observed in loc at now.
func Today(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return Date(local.Year(), local.Month(), local.Day())
}

// ParseDay accepts a YYYY-MM-DD key or an RFC3339 timestamp. Timestamps are
// normalized to UTC before the date is taken.
func ParseDay(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Day{}, fmt.Errorf("%w: empty value", ErrInvalidDay)
	}
	if t, err := time.Parse(KeyLayout, raw); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return DayOf(t), nil
	}
	return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
}

// MustParseDay is ParseDay for literals known to be valid.
func MustParseDay(raw string) Day {
	d, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) Key() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(KeyLayout)
}

func (d Day) String() string { return d.Key() }

func (d Day) Time() time.Time { return d.t }

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) AddDays(n int) Day {
	if d.IsZero() {
		return d
	}
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Before(other Day) bool { return d.t.Before(other.t) }

func (d Day) After(other Day) bool { return d.t.After(other.t) }

func (d Day) Equal(other Day) bool { return d.t.Equal(other.t) }

// DaysUntil counts calendar days from d to other; negative when other is earlier.
func (d Day) DaysUntil(other Day) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Key())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(*raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is a closed interval [Start, End] of calendar days.
type Range struct {
	Start Day
	End   Day
}

func New(start, end Day) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if r.End.Before(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether d lies in the range, both bounds inclusive.
func (r Range) Contains(d Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len is the number of days in the range.
func (r Range) Len() int {
	if r.Validate() != nil {
		return 0
	}
	return r.Start.DaysUntil(r.End) + 1
}

// Nights treats Start as check-in and End as check-out.
func (r Range) Nights() int {
	if r.Validate() != nil {
		return 0
	}
	return r.Start.DaysUntil(r.End)
}

func (r Range) Overlaps(other Range) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Days walks the range from Start to End inclusive.
func (r Range) Days() []Day {
	n := r.Len()
	if n == 0 {
		return nil
	}
	out := make([]Day, 0, n)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Keys formats days with Key, preserving order.
func Keys(days []Day) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Key())
	}
	return out
}

// Set is a collection of day keys.
type Set map[string]struct{}

func NewSet(days ...Day) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s Set) Add(d Day) { s[d.Key()] = struct{}{} }

func (s Set) Remove(d Day) { delete(s, d.Key()) }

func (s Set) Has(d Day) bool {
	_, ok := s[d.Key()]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the keys in calendar order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
