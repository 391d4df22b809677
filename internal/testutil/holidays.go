package testutil

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// HolidayRow is one row of a generated holiday listing.
type HolidayRow struct {
	// Date is written as a millisecond timestamp. Use midnight UTC to mirror
	// real listings.
	Date time.Time

	// Names each become a linked element inside the row's name cell.
	Names []string

	// OmitDate drops the data-date attribute.
	OmitDate bool
}

// HolidayDocument renders a holiday listing page in the shape the holiday
// matcher expects: a table with id "holidays-table", a header section and a
// body section with one row per holiday.
func HolidayDocument(rows ...HolidayRow) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body>\n")
	b.WriteString(`<table id="holidays-table">` + "\n")
	b.WriteString("<thead><tr><th>Date</th><th>Name</th><th>Type</th></tr></thead>\n")
	b.WriteString("<tbody>\n")
	for _, row := range rows {
		if row.OmitDate {
			b.WriteString("<tr>")
		} else {
			fmt.Fprintf(&b, `<tr data-date="%d">`, row.Date.UnixMilli())
		}
		fmt.Fprintf(&b, "<th>%s</th><td>", row.Date.UTC().Format("Jan 2"))
		for _, name := range row.Names {
			fmt.Fprintf(&b, `<a href="/holidays/%s"> %s </a>`, html.EscapeString(slug(name)), html.EscapeString(name))
		}
		b.WriteString("</td><td>Observance</td></tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n</body></html>\n")
	return b.String()
}

// UTCDay returns midnight UTC on the given date.
func UTCDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
