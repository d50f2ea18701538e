package website

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
)

const (
	calendarProdID  = "-//BrightLoop//School Notifications//EN"
	calendarRefresh = 6 * time.Hour
)

// Calendar writes the notice board of the school as an iCalendar feed: one all-day
// event per notification. Notifications without a valid date are skipped.
func Calendar(w io.Writer, p school.Profile, siteURL string) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProdID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Props.SetText("X-WR-CALNAME", p.Name)

	refresh := ical.NewProp("REFRESH-INTERVAL")
	refresh.SetDuration(calendarRefresh)
	cal.Props.Set(refresh)

	stamp := core.NowFunc().UTC()
	for _, n := range LatestFirst(p.Website.Notifications) {
		date, err := time.Parse(core.DateLayout, n.Date)
		if err != nil {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, n.ID+"@"+p.Slug)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetText(ical.PropSummary, n.Title)

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(date)
		event.Props.Set(start)

		link := n.Link
		if link == "" {
			link = siteURL
		}
		event.Props.SetText(ical.PropURL, link)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return errors.Wrap(writeEmptyCalendar(w, cal.Props), "encoding notifications calendar")
	}
	return errors.Wrap(ical.NewEncoder(w).Encode(cal), "encoding notifications calendar")
}

// writeEmptyCalendar writes a VCALENDAR without components, which ical.Encoder refuses.
// Property values are already escaped by SetText.
func writeEmptyCalendar(w io.Writer, props ical.Props) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	writeContentLine(bw, "BEGIN:"+ical.CompCalendar)
	for _, name := range names {
		for _, prop := range props[name] {
			var line strings.Builder
			line.WriteString(prop.Name)
			params := make([]string, 0, len(prop.Params))
			for k := range prop.Params {
				params = append(params, k)
			}
			sort.Strings(params)
			for _, k := range params {
				line.WriteString(";" + k + "=" + strings.Join(prop.Params[k], ","))
			}
			line.WriteString(":" + prop.Value)
			writeContentLine(bw, line.String())
		}
	}
	writeContentLine(bw, "END:"+ical.CompCalendar)
	return bw.Flush()
}

// writeContentLine folds lines longer than 75 octets, as RFC 5545 requires.
func writeContentLine(bw *bufio.Writer, line string) {
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		_, _ = bw.WriteString(line[:cut] + "\r\n ")
		line = line[cut:]
		limit = 74 // continuation lines start with a space
	}
	_, _ = bw.WriteString(line + "\r\n")
}
