package filters

import (
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goodsign/monday"
)

const noDay = "-"

// DateTZ reads value's wall clock as UTC, converts it to a time zone and
// formats it with a Go layout in the configured locale. args are an optional
// layout and an optional IANA zone name; an unknown zone falls back to the
// configured one.
func (s *Set) DateTZ(value time.Time, args ...string) string {
	if value.IsZero() {
		return ""
	}
	layout := s.deps.DateFormat
	if len(args) > 0 && args[0] != "" {
		layout = args[0]
	}
	loc := s.deps.Location
	if len(args) > 1 && args[1] != "" {
		zone, err := time.LoadLocation(args[1])
		if err != nil {
			s.deps.Logger.Warn("dateTZ", "zone", args[1], "error", err)
		} else {
			loc = zone
		}
	}

	utc := time.Date(value.Year(), value.Month(), value.Day(),
		value.Hour(), value.Minute(), value.Second(), value.Nanosecond(), time.UTC)
	return monday.Format(utc.In(loc), layout, s.deps.Locale)
}

// Weekday maps 1..7 to Monday..Sunday. Indices wrap from the end the way a
// sequence lookup does, so 0 is Sunday and -6 is Monday; anything else is "-".
func (s *Set) Weekday(value any) string {
	idx, ok := dayIndex(value)
	if !ok {
		return noDay
	}
	return s.days[idx]
}

// WeekdayAbbr is Weekday with abbreviated names.
func (s *Set) WeekdayAbbr(value any) string {
	idx, ok := dayIndex(value)
	if !ok {
		return noDay
	}
	return s.dayAbbrs[idx]
}

func dayIndex(value any) (int, bool) {
	n, ok := toInt(value)
	if !ok {
		return 0, false
	}
	idx := n - 1
	if idx < -7 || idx > 6 {
		return 0, false
	}
	if idx < 0 {
		idx += 7
	}
	return idx, true
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
