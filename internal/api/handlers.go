package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sells-group/fightstats/internal/model"
	"github.com/sells-group/fightstats/internal/normalize"
	"github.com/sells-group/fightstats/internal/paginate"
)

const maxBody = 1 << 20

type blockRequest struct {
	Tokens []string `json:"tokens"`
	Inline bool     `json:"inline"`
}

type rowRequest struct {
	Cells       []model.Cell   `json:"cells"`
	Encoding    string         `json:"encoding"`
	SplitPoints map[string]int `json:"split_points"`
}

type statRequest struct {
	Kind  model.ColumnKind `json:"kind"`
	Value string           `json:"value"`
}

type assembleRequest struct {
	Tokens   []string        `json:"tokens"`
	Cells    []model.Cell    `json:"cells"`
	Encoding string          `json:"encoding"`
	Meta     model.EventMeta `json:"meta"`
}

type fightResult struct {
	Link   string             `json:"link"`
	Record *model.FightRecord `json:"record,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		block *model.LabeledBlock
		err   error
	)
	if req.Inline {
		block, err = normalize.ParseInlineBlock(req.Tokens)
	} else {
		block, err = normalize.ParseBlockStrings(req.Tokens)
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"block": block})
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if !decode(w, r, &req) {
		return
	}
	opts, err := s.pairOptions(req.Encoding)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SplitPoints != nil {
		opts.SplitPoints = req.SplitPoints
	}
	f1, f2, err := normalize.PairRow(req.Cells, opts)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"fighter_1": f1, "fighter_2": f2})
}

func (s *Server) handleStat(w http.ResponseWriter, r *http.Request) {
	var req statRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Kind.Valid() || req.Kind == model.ColumnText {
		respondError(w, http.StatusBadRequest, "kind must be one of landed_of, percent, count, duration")
		return
	}
	stat, err := normalize.ParseStat(req.Kind, req.Value)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stat": stat, "text": stat.String()})
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	var req assembleRequest
	if !decode(w, r, &req) {
		return
	}
	opts, err := s.pairOptions(req.Encoding)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	block, err := normalize.ParseBlockStrings(req.Tokens)
	if err != nil {
		respondErr(w, err)
		return
	}
	f1, f2, err := normalize.PairRow(req.Cells, opts)
	if err != nil {
		respondErr(w, err)
		return
	}
	rec, err := s.assembler.Assemble(block, [2]model.FighterRow{f1, f2}, req.Meta)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"record": rec, "fields": rec.Flatten()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		respondError(w, http.StatusServiceUnavailable, "live scraping is not configured")
		return
	}
	res, err := s.source.Events(r.Context(), r.URL.Query().Get("start"))
	if err != nil {
		var fe *paginate.FetchError
		if res == nil || !errors.As(err, &fe) {
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"result": res, "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		respondError(w, http.StatusServiceUnavailable, "live scraping is not configured")
		return
	}
	eventURL := r.URL.Query().Get("url")
	if eventURL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	card, results, err := s.source.EventFights(r.Context(), eventURL)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	out := make([]fightResult, len(results))
	for i, fr := range results {
		out[i] = fightResult{Link: fr.Link, Record: fr.Record}
		if fr.Err != nil {
			out[i].Error = fr.Err.Error()
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"event": card.Event, "fights": out})
}

func (s *Server) pairOptions(encoding string) (normalize.PairOptions, error) {
	opts := s.pair
	if encoding == "" {
		return opts, nil
	}
	enc, err := normalize.ParseEncoding(encoding)
	if err != nil {
		return opts, err
	}
	opts.Encoding = enc
	return opts, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// respondErr maps a normalization failure to 422 with its kind, field and
// raw text; anything else is a 500.
func respondErr(w http.ResponseWriter, err error) {
	var pe *model.ParseError
	if errors.As(err, &pe) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": pe.Error(),
			"kind":  pe.Kind,
			"field": pe.Field,
			"raw":   pe.Raw,
		})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
