package holiday

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/dynweather/internal/effect"
)

// TableID is the id attribute of the holiday table.
const TableID = "holidays-table"

// dateAttr is the row attribute holding the millisecond timestamp.
const dateAttr = "data-date"

var (
	// ErrNoTable is returned when the document has no holiday table.
	ErrNoTable = errors.New("holiday table not found")

	// ErrNoBody is returned when the holiday table has no row section.
	ErrNoBody = errors.New("holiday table has no body section")
)

// Match returns the names from names that the document lists for today.
// A malformed document yields no matches.
func Match(doc string, names []string, today time.Time) []string {
	matched, _ := MatchDocument(doc, names, today)
	return matched
}

// MatchDocument is Match with the structural problem reported.
//
// The error is ErrNoTable or ErrNoBody when the document lacks the expected
// structure; the returned slice is then nil. Rows with a missing or
// unparseable date are skipped without error.
func MatchDocument(doc string, names []string, today time.Time) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	table := findByID(root, TableID)
	if table == nil {
		return nil, ErrNoTable
	}
	body := elementChild(table, 1)
	if body == nil {
		return nil, ErrNoBody
	}

	wanted := make([]string, len(names))
	for i, name := range names {
		wanted[i] = normalize(name)
	}

	var matched []string
	for row := range elementChildren(body) {
		raw, ok := attr(row, dateAttr)
		if !ok {
			continue
		}
		when, ok := parseMillis(raw)
		if !ok || !sameDay(when, today) {
			continue
		}
		for cell := range elementChildren(row) {
			for node := range elementChildren(cell) {
				text := normalize(textContent(node))
				for i, name := range wanted {
					if name != "" && text == name {
						matched = append(matched, names[i])
					}
				}
			}
		}
	}
	return matched, nil
}

// Names collects the holiday names a catalog recognizes, in catalog order.
func Names(specs []effect.Spec) []string {
	var names []string
	for _, s := range specs {
		if s.HasHoliday() {
			names = append(names, s.Holiday)
		}
	}
	return names
}

// sameDay compares the UTC month/day of when with the local month/day of
// today.
func sameDay(when, today time.Time) bool {
	_, wm, wd := when.UTC().Date()
	_, tm, td := today.Date()
	return wm == tm && wd == td
}

func parseMillis(raw string) (time.Time, bool) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := attr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// elementChildren yields the element children of n, skipping text and
// comment nodes.
func elementChildren(n *html.Node) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func elementChild(n *html.Node, index int) *html.Node {
	i := 0
	for c := range elementChildren(n) {
		if i == index {
			return c
		}
		i++
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
