package report

import (
	"fmt"
	"time"
)

// Week is an ISO 8601 week.
type Week struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	y, w := t.ISOWeek()
	return Week{Year: y, Week: w}
}

// CurrentWeek returns the ISO week of now.
func CurrentWeek(now time.Time) Week {
	return WeekOf(now)
}

// Bounds returns the Monday and Sunday of the week, at midnight UTC.
func (w Week) Bounds() (start, end time.Time) {
	// January 4th always falls in week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	start = jan4.AddDate(0, 0, -offset+(w.Week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// WeekBounds is shorthand for Week{year, week}.Bounds().
func WeekBounds(year, week int) (start, end time.Time) {
	return Week{Year: year, Week: week}.Bounds()
}

func (w Week) Prev() Week {
	start, _ := w.Bounds()
	return WeekOf(start.AddDate(0, 0, -7))
}

func (w Week) Next() Week {
	start, _ := w.Bounds()
	return WeekOf(start.AddDate(0, 0, 7))
}

// Valid reports whether the week exists in its year.
func (w Week) Valid() bool {
	if w.Year < 1 || w.Week < 1 || w.Week > 53 {
		return false
	}
	start, _ := w.Bounds()
	return WeekOf(start) == w
}

func (w Week) String() string {
	return fmt.Sprintf("%d-%02d", w.Year, w.Week)
}

// ParseWeek parses "YYYY-WW".
func ParseWeek(s string) (Week, error) {
	var w Week
	if _, err := fmt.Sscanf(s, "%d-%d", &w.Year, &w.Week); err != nil {
		return Week{}, fmt.Errorf("invalid week %q: want YYYY-WW", s)
	}
	if !w.Valid() {
		return Week{}, fmt.Errorf("week %s does not exist", w)
	}
	return w, nil
}
