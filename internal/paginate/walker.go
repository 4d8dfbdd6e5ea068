// Package paginate walks paged listings by following "next page"
// references discovered on each page.
package paginate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fightstats/internal/model"
)

// Page is what one fetch-and-extract step yields. Next is empty on the last
// page.
type Page struct {
	Events []model.EventSummary
	Next   string
}

// FetchFunc fetches and extracts one listing page. It must not fail on an
// empty page, only on transport problems.
type FetchFunc func(ctx context.Context, ref string) (Page, error)

// FetchError marks a walk aborted by its fetch collaborator. Err is the
// collaborator's error, unchanged.
type FetchError struct {
	Ref string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", model.ErrFetchFailure, e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Kind reports the error kind for callers that classify failures.
func (e *FetchError) Kind() model.ErrorKind { return model.ErrFetchFailure }

// State is the walker's position in its two-state machine.
type State int

const (
	Fetching State = iota + 1
	Done
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Walker drives a sequential pagination walk. Each step's next reference is
// known only after the previous page is parsed, so pages are never fetched
// concurrently within one walk.
type Walker struct {
	fetch    FetchFunc
	maxPages int
}

// NewWalker creates a Walker. maxPages caps the number of fetched pages; 0
// means no cap.
func NewWalker(fetch FetchFunc, maxPages int) *Walker {
	return &Walker{fetch: fetch, maxPages: maxPages}
}

// walk is the mutable state of one traversal. It is owned by a single Walk
// call and never shared.
type walk struct {
	state   State
	ref     string
	visited map[string]bool
	result  model.WalkResult
}

// Walk follows next references from start until there are none, the next
// reference repeats an already visited one, or the page cap is reached. On
// a fetch failure it returns the events gathered so far, marked partial,
// together with a *FetchError.
func (w *Walker) Walk(ctx context.Context, start string) (*model.WalkResult, error) {
	log := zap.L().With(zap.String("component", "paginate.walker"), zap.String("start", start))

	st := &walk{
		state:   Fetching,
		ref:     start,
		visited: make(map[string]bool),
		result:  model.WalkResult{Start: start, Events: []model.EventSummary{}},
	}

	for st.state == Fetching {
		if err := w.step(ctx, st); err != nil {
			st.result.Partial = true
			log.Warn("walk aborted, returning partial result",
				zap.String("ref", st.ref),
				zap.Int("pages", st.result.Pages),
				zap.Int("events", len(st.result.Events)),
				zap.Error(err),
			)
			return &st.result, err
		}
	}

	log.Info("walk complete",
		zap.Int("pages", st.result.Pages),
		zap.Int("events", len(st.result.Events)),
	)
	return &st.result, nil
}

func (w *Walker) step(ctx context.Context, st *walk) error {
	if err := ctx.Err(); err != nil {
		return &FetchError{Ref: st.ref, Err: err}
	}

	st.visited[st.ref] = true
	page, err := w.fetch(ctx, st.ref)
	if err != nil {
		return &FetchError{Ref: st.ref, Err: err}
	}
	st.result.Pages++
	st.result.Events = append(st.result.Events, page.Events...)

	switch {
	case page.Next == "" || page.Next == st.ref:
		st.state = Done
	case st.visited[page.Next]:
		zap.L().Debug("paginate: next page already visited, stopping",
			zap.String("ref", st.ref),
			zap.String("next", page.Next),
		)
		st.state = Done
	case w.maxPages > 0 && st.result.Pages >= w.maxPages:
		st.state = Done
	default:
		st.ref = page.Next
	}
	return nil
}

// WalkResultErr pairs a walk result with the error that ended it.
type WalkResultErr struct {
	Result *model.WalkResult
	Err    error
}

// WalkAll walks independent listings concurrently, at most limit at a time.
// Each listing's outcome lands in the slot matching its index in starts;
// one listing failing does not stop the others.
func (w *Walker) WalkAll(ctx context.Context, starts []string, limit int) []WalkResultErr {
	out := make([]WalkResultErr, len(starts))

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, start := range starts {
		g.Go(func() error {
			res, err := w.Walk(gCtx, start)
			out[i] = WalkResultErr{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}
