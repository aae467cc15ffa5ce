package recur

import (
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"

	"tempocal/internal/model"
)

// weekdayByIndex maps the pattern's 0=Sunday..6=Saturday days-of-week
// convention onto iCalendar weekdays.
var weekdayByIndex = map[int]rrule.Weekday{
	0: rrule.SU,
	1: rrule.MO,
	2: rrule.TU,
	3: rrule.WE,
	4: rrule.TH,
	5: rrule.FR,
	6: rrule.SA,
}

// RuleBody renders a pattern as an iCalendar recurrence-rule value, e.g.
// "FREQ=DAILY;INTERVAL=2" or "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR".
//
// This is one-way (pattern -> string) for export to external calendar
// systems; it does not round-trip arbitrary externally-authored rules.
func RuleBody(p *model.RecurrencePattern) string {
	if p == nil {
		return ""
	}

	interval := p.Interval
	if interval < 1 {
		interval = 1
	}

	opt := rrule.ROption{Interval: interval}
	freqName := "DAILY"
	switch p.Frequency {
	case model.FreqDaily:
		opt.Freq = rrule.DAILY
	case model.FreqWeekly:
		opt.Freq = rrule.WEEKLY
		freqName = "WEEKLY"
		for _, d := range p.DaysOfWeek {
			if wd, ok := weekdayByIndex[d]; ok {
				opt.Byweekday = append(opt.Byweekday, wd)
			}
		}
	case model.FreqMonthly:
		opt.Freq = rrule.MONTHLY
		freqName = "MONTHLY"
		if p.DayOfMonth >= 1 && p.DayOfMonth <= 31 {
			opt.Bymonthday = []int{p.DayOfMonth}
		}
	default:
		return ""
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return ""
	}
	s := r.String()

	// External calendar consumers expect an explicit INTERVAL even when it
	// is 1, so reinsert it if the serializer elided the default.
	if !strings.Contains(s, "INTERVAL=") {
		s = strings.Replace(s, "FREQ="+freqName, "FREQ="+freqName+";INTERVAL="+strconv.Itoa(interval), 1)
	}
	return s
}

// RuleString is RuleBody with the RRULE property prefix, matching the wire
// format used for calendar export ("RRULE:FREQ=DAILY;INTERVAL=2").
func RuleString(p *model.RecurrencePattern) string {
	body := RuleBody(p)
	if body == "" {
		return ""
	}
	return "RRULE:" + body
}
