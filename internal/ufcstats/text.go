// Package ufcstats selects raw text fragments out of ufcstats.com pages:
// the completed-events listing, event cards and fight details. It does no
// normalization; it hands tokens and cells to internal/normalize.
package ufcstats

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sells-group/fightstats/internal/model"
)

// textNodes returns the non-empty text nodes under sel in document order,
// each with surrounding whitespace removed.
func textNodes(sel *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

// rawTokens converts the text nodes under sel into block tokens.
func rawTokens(sel *goquery.Selection) []model.RawToken {
	return model.Tokens(textNodes(sel)...)
}

// pairSep separates stacked paragraphs in a cell's text. It is the
// double-space row encoding.
const pairSep = "  "

// cellText renders a table cell. Cells holding two or more paragraphs (one
// per fighter) get them joined by pairSep; anything else is its text with
// whitespace collapsed.
func cellText(sel *goquery.Selection) string {
	paras := sel.Find("p")
	if paras.Length() < 2 {
		return strings.Join(textNodes(sel), " ")
	}
	parts := make([]string, 0, paras.Length())
	paras.Each(func(_ int, p *goquery.Selection) {
		parts = append(parts, strings.Join(textNodes(p), " "))
	})
	return strings.TrimSpace(strings.Join(parts, pairSep))
}

// collapse squeezes all whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cell builds a model.Cell from a table cell. Tokens are the cell's
// paragraphs, when it has any.
func cell(header string, td *goquery.Selection) model.Cell {
	c := model.Cell{Header: header, Text: cellText(td)}
	td.Find("p").Each(func(_ int, p *goquery.Selection) {
		c.Tokens = append(c.Tokens, strings.Join(textNodes(p), " "))
	})
	return c
}

// headers returns the collapsed header texts of a table head.
func headers(thead *goquery.Selection) []string {
	var out []string
	thead.Find("th").Each(func(_ int, th *goquery.Selection) {
		out = append(out, collapse(th.Text()))
	})
	return out
}

// rowCells zips one table row with its headers. Cells past the header list
// get a positional name.
func rowCells(hdrs []string, tr *goquery.Selection) []model.Cell {
	var out []model.Cell
	tr.Find("td").Each(func(i int, td *goquery.Selection) {
		h := "col_" + strconv.Itoa(i+1)
		if i < len(hdrs) && hdrs[i] != "" {
			h = hdrs[i]
		}
		out = append(out, cell(h, td))
	})
	return out
}

// resolve turns href into an absolute URL against base. Unparseable hrefs
// are returned trimmed and unchanged.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
