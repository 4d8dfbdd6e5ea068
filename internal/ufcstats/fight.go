package ufcstats

import (
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
)

// RoundCells is one round's row of a per-round table.
type RoundCells struct {
	Round int
	Cells []model.Cell
}

// FightPage holds the raw fragments of a fight details page.
type FightPage struct {
	URL         string
	EventName   string
	EventLink   string
	WeightClass string
	Bonuses     []string
	Fighters    [2]string
	Markers     [2]string

	// Details are the text tokens of the method/round/time box.
	Details []model.RawToken

	// Totals and SignificantStrikes are the single rows of the summary
	// tables; either is nil when the page has no such table.
	Totals             []model.Cell
	SignificantStrikes []model.Cell

	// Rounds is the per-round totals table.
	Rounds []RoundCells

	// LandedByTarget and LandedByPosition are the significant-strike charts
	// as one two-fighter row: a Fighter cell, then one cell per chart bar.
	// Either is nil when the page has no such chart.
	LandedByTarget   []model.Cell
	LandedByPosition []model.Cell
}

// Chart titles as they appear in the h4 above each chart.
const (
	ChartLandedByTarget   = "Landed by target"
	ChartLandedByPosition = "Landed by position"
)

// bonusIcons names the fight-title icons by image file name.
var bonusIcons = map[string]string{
	"belt.png":  "title",
	"perf.png":  "performance",
	"fight.png": "fight",
	"sub.png":   "submission",
	"ko.png":    "ko",
}

// ParseFightPage extracts a fight details page.
func ParseFightPage(r io.Reader, pageURL string) (*FightPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "ufcstats: parse fight page")
	}
	base, _ := url.Parse(pageURL)

	fp := &FightPage{URL: pageURL}

	title := doc.Find("h2.b-content__title a").First()
	fp.EventName = collapse(title.Text())
	if href, ok := title.Attr("href"); ok {
		fp.EventLink = resolve(base, href)
	}

	fightTitle := doc.Find(".b-fight-details__fight-title").First()
	fp.WeightClass = collapse(fightTitle.Text())
	fightTitle.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if b, ok := bonusIcons[path.Base(src)]; ok {
			fp.Bonuses = append(fp.Bonuses, b)
		}
	})

	doc.Find(".b-fight-details__person").Each(func(i int, p *goquery.Selection) {
		if i >= 2 {
			return
		}
		fp.Fighters[i] = collapse(p.Find(".b-fight-details__person-name").Text())
		fp.Markers[i] = strings.ToUpper(collapse(p.Find(".b-fight-details__person-status").Text()))
	})

	fp.Details = rawTokens(doc.Find(".b-fight-details__content").First())

	summary := doc.Find("thead.b-fight-details__table-head").Parent()
	fp.Totals = firstRow(summary.Eq(0))
	fp.SignificantStrikes = firstRow(summary.Eq(1))

	fp.Rounds = perRound(doc.Find("table.js-fight-table").First())

	fp.LandedByTarget = chart(doc, ChartLandedByTarget, fp.Fighters)
	fp.LandedByPosition = chart(doc, ChartLandedByPosition, fp.Fighters)

	return fp, nil
}

// firstRow returns the cells of the first body row of table, or nil.
func firstRow(table *goquery.Selection) []model.Cell {
	if table.Length() == 0 {
		return nil
	}
	hdrs := headers(table.Find("thead").First())
	tr := table.Find("tbody tr").First()
	if tr.Length() == 0 {
		return nil
	}
	return rowCells(hdrs, tr)
}

// perRound walks a per-round table: a column head, then one "Round N" head
// and one body per round.
func perRound(table *goquery.Selection) []RoundCells {
	if table.Length() == 0 {
		return nil
	}
	hdrs := headers(table.Find("thead.b-fight-details__table-head_rnd").First())

	var out []RoundCells
	table.Find("thead.b-fight-details__table-row_type_head").Each(func(i int, head *goquery.Selection) {
		tr := head.NextFiltered("tbody").Find("tr").First()
		if tr.Length() == 0 {
			return
		}
		out = append(out, RoundCells{
			Round: roundNumber(collapse(head.Text()), i+1),
			Cells: rowCells(hdrs, tr),
		})
	})
	return out
}

// chart reads the bars under the h4 titled title into a two-fighter row.
// Each bar holds a title and two numbers, red corner first. Bars without
// exactly two non-empty numbers are skipped.
func chart(doc *goquery.Document, title string, fighters [2]string) []model.Cell {
	if fighters[0] == "" || fighters[1] == "" {
		return nil
	}
	want := strings.ToLower(title)
	h4 := doc.Find("h4").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(collapse(s.Text())), want)
	}).First()
	if h4.Length() == 0 {
		return nil
	}

	out := []model.Cell{pairCell("Fighter", fighters[0], fighters[1])}
	h4.NextAllFiltered("div").First().Find(".b-fight-details__charts-row").Each(func(_ int, row *goquery.Selection) {
		name := collapse(row.Find(".b-fight-details__charts-row-title").First().Text())
		nums := row.Find(".b-fight-details__charts-num")
		if name == "" || nums.Length() != 2 {
			return
		}
		red, blue := collapse(nums.Eq(0).Text()), collapse(nums.Eq(1).Text())
		if red == "" || blue == "" {
			return
		}
		out = append(out, pairCell(name, red, blue))
	})
	if len(out) == 1 {
		return nil
	}
	return out
}

// pairCell builds a cell holding one value per fighter in both row
// encodings.
func pairCell(header, a, b string) model.Cell {
	return model.Cell{Header: header, Text: a + pairSep + b, Tokens: []string{a, b}}
}

// roundNumber reads "Round 3" as 3, or returns def.
func roundNumber(s string, def int) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return def
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || n <= 0 {
		return def
	}
	return n
}
