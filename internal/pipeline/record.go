package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
	"github.com/sells-group/fightstats/internal/ufcstats"
)

// BuildRecord normalizes the fragments of one fight page into a record.
// event supplies the date and location the fight page does not show; link
// supplies fallback result markers from the event card.
func BuildRecord(asm *normalize.Assembler, pair normalize.PairOptions, fp *ufcstats.FightPage, event model.EventSummary, link model.FightLink) (*model.FightRecord, error) {
	block, err := normalize.ParseBlock(fp.Details)
	if err != nil {
		return nil, eris.Wrap(err, "details box")
	}

	r1, r2, err := normalize.PairRow(fp.Totals, pair)
	if err != nil {
		return nil, eris.Wrap(err, "totals table")
	}

	rec, err := asm.Assemble(block, [2]model.FighterRow{r1, r2}, eventMeta(fp, event, link))
	if err != nil {
		return nil, eris.Wrap(err, "assemble")
	}

	if fp.SignificantStrikes != nil {
		s1, s2, err := normalize.PairRow(fp.SignificantStrikes, pair)
		if err != nil {
			return nil, eris.Wrap(err, "significant strikes table")
		}
		ss, err := asm.ParseRows([2]model.FighterRow{s1, s2})
		if err != nil {
			return nil, eris.Wrap(err, "significant strikes table")
		}
		rec.SignificantStrikes = &ss
	}

	if rec.LandedByTarget, err = chartPair(asm, pair, fp.LandedByTarget); err != nil {
		return nil, eris.Wrap(err, "landed by target chart")
	}
	if rec.LandedByPosition, err = chartPair(asm, pair, fp.LandedByPosition); err != nil {
		return nil, eris.Wrap(err, "landed by position chart")
	}

	if len(fp.Rounds) > 0 {
		rounds := make([]model.RoundRows, 0, len(fp.Rounds))
		for _, rc := range fp.Rounds {
			a, b, err := normalize.PairRow(rc.Cells, pair)
			if err != nil {
				return nil, eris.Wrapf(err, "round %d table", rc.Round)
			}
			rounds = append(rounds, model.RoundRows{Round: rc.Round, Rows: [2]model.FighterRow{a, b}})
		}
		if rec.Rounds, err = asm.AssembleRounds(rounds); err != nil {
			return nil, eris.Wrap(err, "per-round table")
		}
	}

	return rec, nil
}

// chartPair pairs and parses a chart row. A page without the chart yields
// nil.
func chartPair(asm *normalize.Assembler, pair normalize.PairOptions, cells []model.Cell) (*[2]model.FighterStats, error) {
	if cells == nil {
		return nil, nil
	}
	a, b, err := normalize.PairRow(cells, pair)
	if err != nil {
		return nil, err
	}
	stats, err := asm.ParseCountRows([2]model.FighterRow{a, b})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func eventMeta(fp *ufcstats.FightPage, event model.EventSummary, link model.FightLink) model.EventMeta {
	meta := model.EventMeta{
		EventName:   event.Name,
		EventDate:   event.Date,
		Location:    event.Location,
		EventLink:   event.Link,
		FightLink:   fp.URL,
		WeightClass: fp.WeightClass,
		Bonuses:     fp.Bonuses,
		Markers:     fp.Markers,
	}
	if meta.EventName == "" {
		meta.EventName = fp.EventName
	}
	if meta.EventLink == "" {
		meta.EventLink = fp.EventLink
	}
	if meta.FightLink == "" {
		meta.FightLink = link.Link
	}
	if meta.Markers == [2]string{} {
		meta.Markers = link.Markers
	}
	return meta
}
