package ufcstats

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/paginate"
)

const (
	// DefaultEventsURL is the first page of the completed-events listing.
	DefaultEventsURL = "http://ufcstats.com/statistics/events/completed"

	// DefaultNextSelector picks the listing's "next page" link.
	DefaultNextSelector = `a.b-link_style_black[href*="page"]:last-child`
)

// ParseEventList extracts the event rows and the next-page reference of one
// listing page. Rows without a link, name or date are skipped. An empty
// page is not an error.
func ParseEventList(r io.Reader, pageURL, nextSelector string) (paginate.Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return paginate.Page{}, eris.Wrap(err, "ufcstats: parse event list")
	}
	base, _ := url.Parse(pageURL)
	if nextSelector == "" {
		nextSelector = DefaultNextSelector
	}

	page := paginate.Page{Events: []model.EventSummary{}}
	doc.Find("tr.b-statistics__table-row").Each(func(_ int, row *goquery.Selection) {
		a := row.Find("a").First()
		href, _ := a.Attr("href")
		name := collapse(a.Text())
		date := collapse(row.Find("span.b-statistics__date").First().Text())
		if href == "" || name == "" || date == "" {
			return
		}
		page.Events = append(page.Events, model.EventSummary{
			Name:     name,
			Date:     date,
			Location: eventLocation(row),
			Link:     resolve(base, href),
		})
	})

	// Every pagination link is the last child of its own list item, so the
	// default selector matches all of them. The final match is the furthest
	// page; the first would be page 1, which loops back to the start.
	if href, ok := doc.Find(nextSelector).Last().Attr("href"); ok && strings.TrimSpace(href) != "" {
		page.Next = resolve(base, href)
	}
	return page, nil
}

// eventLocation reads the location column of an event row, falling back to
// the first cell of the following row used by older listing layouts.
func eventLocation(row *goquery.Selection) string {
	if loc := collapse(row.Find("td").Eq(1).Text()); loc != "" {
		return loc
	}
	next := row.Next()
	if next.Find("a").Length() > 0 {
		return ""
	}
	return collapse(next.Find("td").First().Text())
}
