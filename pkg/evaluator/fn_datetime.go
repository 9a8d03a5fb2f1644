package evaluator

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/sandrolain/goadaptive/pkg/compare"
	"github.com/sandrolain/goadaptive/pkg/memory"
	"github.com/sandrolain/goadaptive/pkg/types"
)

// Ticks count 100ns intervals since 0001-01-01T00:00:00Z.
const (
	ticksAtUnixEpoch = 621355968000000000
	ticksPerMilli    = 10000
	ticksPerMinute   = 600000000
	ticksPerHour     = 36000000000
	ticksPerDay      = 864000000000
)

// defaultDateFormat renders the same text as isoLayout.
const defaultDateFormat = "yyyy-MM-ddTHH:mm:ss.fffZ"

func datetimeFunctions() []*FunctionDef {
	return []*FunctionDef{
		newFunction("utcNow", "<s?:s>", applyWithState(fnUtcNow, nil)),
		newFunction("addDays", "<x-n-s?:x>", applyWithError(addTime(func(t time.Time, n int64) time.Time { return t.AddDate(0, 0, int(n)) }), nil)),
		newFunction("addHours", "<x-n-s?:x>", applyWithError(addTime(func(t time.Time, n int64) time.Time { return t.Add(time.Duration(n) * time.Hour) }), nil)),
		newFunction("addMinutes", "<x-n-s?:x>", applyWithError(addTime(func(t time.Time, n int64) time.Time { return t.Add(time.Duration(n) * time.Minute) }), nil)),
		newFunction("addSeconds", "<x-n-s?:x>", applyWithError(addTime(func(t time.Time, n int64) time.Time { return t.Add(time.Duration(n) * time.Second) }), nil)),
		datePart("dayOfMonth", func(t time.Time) int64 { return int64(t.Day()) }),
		datePart("dayOfWeek", func(t time.Time) int64 { return int64(t.Weekday()) }),
		datePart("dayOfYear", func(t time.Time) int64 { return int64(t.YearDay()) }),
		datePart("month", func(t time.Time) int64 { return int64(t.Month()) }),
		datePart("year", func(t time.Time) int64 { return int64(t.Year()) }),
		newFunction("startOfDay", "<x-s?:x>", applyWithError(fnStartOfDay, nil)),
		newFunction("formatDateTime", "<x-s?:s>", applyWithError(fnFormatDateTime, nil)),
		newFunction("ticks", "<x:n>", applyWithError(fnTicks, nil)),
		newFunction("ticksToDays", "<n:n>", applyWithError(ticksTo(ticksPerDay), verifyInteger)),
		newFunction("ticksToHours", "<n:n>", applyWithError(ticksTo(ticksPerHour), verifyInteger)),
		newFunction("ticksToMinutes", "<n:n>", applyWithError(ticksTo(ticksPerMinute), verifyInteger)),
		newFunction("dateTimeDiff", "<x-x:n>", applyWithError(fnDateTimeDiff, nil)),
	}
}

// isDateTimeValue reports whether v is a date/time or an ISO 8601 string.
func isDateTimeValue(v interface{}) bool {
	if types.KindOf(v) == types.KindDateTime {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := parseISO(s)
	return err == nil
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

func parseISO(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// timestampArg reads a date/time or ISO string argument. fromString records
// which one it was, so results come back in the same form.
func timestampArg(v interface{}) (t time.Time, fromString bool, err error) {
	if t, ok := compare.ToTime(v); ok {
		return t, false, nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false, types.NewError(types.ErrInvalidTimestamp, "%v is not a valid timestamp", v)
	}
	t, perr := parseISO(s)
	if perr != nil {
		return time.Time{}, true, types.NewError(types.ErrInvalidTimestamp, "%q is not a valid ISO 8601 timestamp", s).WithCause(perr)
	}
	return t, true, nil
}

func formatArg(args []interface{}, i int) (string, error) {
	if i >= len(args) || types.IsNull(args[i]) {
		return defaultDateFormat, nil
	}
	f, ok := args[i].(string)
	if !ok {
		return "", types.NewError(types.ErrTypeMismatch, "format %v is not a string", args[i])
	}
	return f, nil
}

// timestampResult returns t as a date/time when the input was one, and as
// formatted text otherwise.
func timestampResult(t time.Time, fromString bool, args []interface{}, formatIndex int) (interface{}, error) {
	if !fromString && formatIndex >= len(args) {
		return t, nil
	}
	format, err := formatArg(args, formatIndex)
	if err != nil {
		return nil, err
	}
	return formatTimestamp(t, format), nil
}

func fnUtcNow(s *State, _ memory.Memory, args []interface{}) (interface{}, error) {
	format, err := formatArg(args, 0)
	if err != nil {
		return nil, err
	}
	return formatTimestamp(s.Now().UTC(), format), nil
}

func addTime(add func(t time.Time, n int64) time.Time) func(args []interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		t, fromString, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		n, ok := types.ToInt64(args[1])
		if !ok {
			return nil, types.NewError(types.ErrTypeMismatch, "%v is not an integer.", args[1])
		}
		return timestampResult(add(t, n), fromString, args, 2)
	}
}

func datePart(name string, part func(time.Time) int64) *FunctionDef {
	return newFunction(name, "<x:n>", applyWithError(func(args []interface{}) (interface{}, error) {
		t, _, err := timestampArg(args[0])
		if err != nil {
			return nil, err
		}
		return part(t.UTC()), nil
	}, nil))
}

func fnStartOfDay(args []interface{}) (interface{}, error) {
	t, fromString, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	u := t.UTC()
	return timestampResult(time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), fromString, args, 1)
}

func fnFormatDateTime(args []interface{}) (interface{}, error) {
	t, _, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	format, err := formatArg(args, 1)
	if err != nil {
		return nil, err
	}
	return formatTimestamp(t.UTC(), format), nil
}

// ticksOf returns the ticks of t at millisecond precision.
func ticksOf(t time.Time) *big.Int {
	ticks := big.NewInt(t.UnixMilli())
	ticks.Mul(ticks, big.NewInt(ticksPerMilli))
	return ticks.Add(ticks, big.NewInt(ticksAtUnixEpoch))
}

func fnTicks(args []interface{}) (interface{}, error) {
	t, _, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	return ticksOf(t), nil
}

func ticksTo(unit int64) func(args []interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		v, err := divideDecimal(args[0], unit)
		if err != nil {
			return nil, types.NewError(types.ErrInvalidRange, "%v cannot be converted", args[0]).WithCause(err)
		}
		return v, nil
	}
}

func fnDateTimeDiff(args []interface{}) (interface{}, error) {
	a, _, err := timestampArg(args[0])
	if err != nil {
		return nil, err
	}
	b, _, err := timestampArg(args[1])
	if err != nil {
		return nil, err
	}
	ta, tb := ticksOf(a), ticksOf(b)
	return narrow(ta.Sub(ta, tb)), nil
}

// formatTimestamp renders t with a .NET-style custom format: yyyy yy MMMM
// MMM MM M dddd ddd dd d HH H hh h mm m ss s fff ff f tt. Text in single
// quotes and characters after a backslash are copied literally.
func formatTimestamp(t time.Time, format string) string {
	if format == defaultDateFormat {
		return t.UTC().Format(isoLayout)
	}
	var sb strings.Builder
	for i := 0; i < len(format); {
		c := format[i]
		switch c {
		case '\'':
			end := strings.IndexByte(format[i+1:], '\'')
			if end < 0 {
				sb.WriteString(format[i+1:])
				return sb.String()
			}
			sb.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		case '\\':
			if i+1 < len(format) {
				sb.WriteByte(format[i+1])
			}
			i += 2
			continue
		case 'y', 'M', 'd', 'H', 'h', 'm', 's', 'f', 't':
		default:
			sb.WriteByte(c)
			i++
			continue
		}
		n := 1
		for i+n < len(format) && format[i+n] == c {
			n++
		}
		sb.WriteString(formatToken(t, c, n))
		i += n
	}
	return sb.String()
}

func formatToken(t time.Time, c byte, n int) string {
	pad := func(v, width int) string {
		s := strconv.Itoa(v)
		for len(s) < width {
			s = "0" + s
		}
		return s
	}
	width := n
	if width > 2 {
		width = 2
	}
	switch c {
	case 'y':
		if n <= 2 {
			return pad(t.Year()%100, n)
		}
		return pad(t.Year(), n)
	case 'M':
		switch {
		case n >= 4:
			return t.Month().String()
		case n == 3:
			return t.Month().String()[:3]
		}
		return pad(int(t.Month()), width)
	case 'd':
		switch {
		case n >= 4:
			return t.Weekday().String()
		case n == 3:
			return t.Weekday().String()[:3]
		}
		return pad(t.Day(), width)
	case 'H':
		return pad(t.Hour(), width)
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		return pad(h, width)
	case 'm':
		return pad(t.Minute(), width)
	case 's':
		return pad(t.Second(), width)
	case 'f':
		if n > 9 {
			n = 9
		}
		frac := pad(t.Nanosecond(), 9)
		return frac[:n]
	case 't':
		ampm := "AM"
		if t.Hour() >= 12 {
			ampm = "PM"
		}
		return ampm[:min(n, 2)]
	}
	return ""
}
