package widgets

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/signage/pkg/core"
	"github.com/go-drift/signage/pkg/dom"
	"github.com/go-drift/signage/pkg/refresh"
)

// DefaultClockFormat is the format used by a Clock without one.
const DefaultClockFormat = "MMMM Do, h:mm:ss a"

// Clock displays the current time, updated every Period (one second by
// default).
//
// Format uses moment-style tokens rather than Go reference layouts, since
// layouts are authored by people who write display templates, not Go:
//
//	YYYY YY        year
//	MMMM MMM MM M  month name, short name, zero-padded, number
//	Do DD D        day with ordinal suffix, zero-padded, number
//	dddd ddd d     weekday name, short name, number (Sunday is 0)
//	HH H hh h      24-hour and 12-hour clock, padded and not
//	mm m ss s      minutes and seconds
//	A a            AM/PM, am/pm
//
// Text in square brackets is copied verbatim.
type Clock struct {
	Format string
	Period time.Duration
}

func (c Clock) ClassName() string { return "clock" }

func (c Clock) Build(ctx core.BuildContext) core.Widget {
	format := c.Format
	if format == "" {
		format = DefaultClockFormat
	}
	period := c.Period
	if period <= 0 {
		period = time.Second
	}
	clock := ctx.Clock()
	r := refresh.Every(period, func() core.Widget {
		return core.Node(dom.TextElement("div", FormatMoment(clock.Now(), format)))
	})
	r.Name = "widgets.Clock"
	return r
}

// momentTokens is ordered so that longer tokens match before their
// prefixes.
var momentTokens = []string{
	"YYYY", "MMMM", "dddd",
	"MMM", "ddd",
	"YY", "MM", "Do", "DD", "HH", "hh", "mm", "ss",
	"M", "D", "d", "H", "h", "m", "s", "A", "a",
}

// FormatMoment formats t with a moment-style format string. See Clock for
// the supported tokens.
func FormatMoment(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			if end := strings.IndexByte(format[i+1:], ']'); end >= 0 {
				b.WriteString(format[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}
		tok := matchToken(format[i:])
		if tok == "" {
			b.WriteByte(format[i])
			i++
			continue
		}
		b.WriteString(momentField(t, tok))
		i += len(tok)
	}
	return b.String()
}

func matchToken(s string) string {
	for _, tok := range momentTokens {
		if strings.HasPrefix(s, tok) {
			return tok
		}
	}
	return ""
}

func momentField(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return strconv.Itoa(t.Year())
	case "YY":
		return pad2(t.Year() % 100)
	case "MMMM":
		return t.Month().String()
	case "MMM":
		return t.Month().String()[:3]
	case "MM":
		return pad2(int(t.Month()))
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "Do":
		return strconv.Itoa(t.Day()) + ordinal(t.Day())
	case "DD":
		return pad2(t.Day())
	case "D":
		return strconv.Itoa(t.Day())
	case "dddd":
		return t.Weekday().String()
	case "ddd":
		return t.Weekday().String()[:3]
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "HH":
		return pad2(t.Hour())
	case "H":
		return strconv.Itoa(t.Hour())
	case "hh":
		return pad2(hour12(t))
	case "h":
		return strconv.Itoa(hour12(t))
	case "mm":
		return pad2(t.Minute())
	case "m":
		return strconv.Itoa(t.Minute())
	case "ss":
		return pad2(t.Second())
	case "s":
		return strconv.Itoa(t.Second())
	case "A":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	}
	return tok
}

func hour12(t time.Time) int {
	if h := t.Hour() % 12; h != 0 {
		return h
	}
	return 12
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
