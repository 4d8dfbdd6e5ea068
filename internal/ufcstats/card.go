package ufcstats

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
)

// flagMarkers maps the W/L column flag text on an event card to a result
// marker.
var flagMarkers = map[string]string{
	"win":  "W",
	"loss": "L",
	"draw": "D",
	"nc":   "NC",
}

// ParseEventCard extracts an event details page: the event name, the date
// and location from its "Label: value" info box, and one FightLink per bout
// row.
func ParseEventCard(r io.Reader, pageURL string) (*model.EventCard, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "ufcstats: parse event card")
	}
	base, _ := url.Parse(pageURL)

	card := &model.EventCard{
		Event: model.EventSummary{
			Name: collapse(doc.Find("h2.b-content__title").First().Text()),
			Link: pageURL,
		},
		Fights: []model.FightLink{},
	}

	if tokens := rawTokens(doc.Find("li.b-list__box-list-item")); len(tokens) > 0 {
		info, err := normalize.ParseBlock(tokens)
		if err != nil {
			return nil, eris.Wrap(err, "ufcstats: event info box")
		}
		card.Event.Date, _ = info.Get("date")
		card.Event.Location, _ = info.Get("location")
	}

	hdrs := headers(doc.Find("thead.b-fight-details__table-head").First())
	resultCol, fighterCol := columnIndex(hdrs, "w_l", 0), columnIndex(hdrs, "fighter", 1)

	doc.Find("tr.b-fight-details__table-row[data-link]").Each(func(_ int, tr *goquery.Selection) {
		link, _ := tr.Attr("data-link")
		if strings.TrimSpace(link) == "" {
			return
		}
		tds := tr.Find("td")
		fl := model.FightLink{Link: resolve(base, link)}

		tds.Eq(fighterCol).Find("p").Each(func(i int, p *goquery.Selection) {
			if i < 2 {
				fl.Fighters[i] = collapse(p.Text())
			}
		})
		tds.Eq(resultCol).Find(".b-flag__text").Each(func(i int, flag *goquery.Selection) {
			if i < 2 {
				fl.Markers[i] = flagMarkers[strings.ToLower(collapse(flag.Text()))]
			}
		})
		card.Fights = append(card.Fights, fl)
	})

	return card, nil
}

// columnIndex finds the column whose snake key is key, or returns def.
func columnIndex(hdrs []string, key string, def int) int {
	for i, h := range hdrs {
		if model.SnakeKey(h) == key {
			return i
		}
	}
	return def
}
