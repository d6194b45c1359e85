package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mapdraw/pkg/buildinfo"
	"github.com/matzehuels/mapdraw/pkg/errors"
	mdio "github.com/matzehuels/mapdraw/pkg/io"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
	"github.com/matzehuels/mapdraw/pkg/store"
)

// planRequest is the body of POST /v1/plans. Exactly one of Graph and
// Dataset names the input. Options left out take their defaults; explicit
// zeros are kept.
type planRequest struct {
	pipeline.Options
	Graph json.RawMessage `json:"graph,omitempty"`
}

type planResponse struct {
	*store.Plan
	CacheHit bool `json:"cache_hit"`
}

type planList struct {
	Plans []planSummary `json:"plans"`
}

// planSummary is a plan without its assignment table.
type planSummary struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	Dataset      string `json:"dataset,omitempty"`
	NumDistricts int    `json:"num_districts"`
	Reason       string `json:"reason"`
	Deviation    int    `json:"deviation"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	ds, err := pipeline.ListDatasets(s.datasetDir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ds == nil {
		ds = []pipeline.Dataset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": ds})
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	req := planRequest{Options: pipeline.DefaultOptions()}
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts := req.Options
	opts.GraphPath = ""
	opts.DatasetDir = s.datasetDir
	opts.Logger = s.logger
	hasGraph := len(req.Graph) > 0 && string(req.Graph) != "null"
	switch {
	case hasGraph && opts.Dataset != "":
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "give either graph or dataset, not both"))
		return
	case !hasGraph && opts.Dataset == "":
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "graph or dataset is required"))
		return
	}

	ctx := r.Context()
	if s.drawTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.drawTimeout)
		defer cancel()
	}

	if err := opts.ValidateForDraw(); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		res *pipeline.Result
		err error
	)
	if hasGraph {
		g, gerr := mdio.ReadJSON(bytes.NewReader(req.Graph), opts.GraphOptions()...)
		if gerr != nil {
			s.writeError(w, r, gerr)
			return
		}
		res, err = s.runner.Draw(ctx, g, opts)
	} else {
		res, err = s.runner.Execute(ctx, opts)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pl := store.NewPlanWithStats(res.Partition, res.Diagnostics, res.GraphHash, opts.PlanKeyOpts(), opts.Stats)
	pl.Dataset = opts.Dataset
	if err := s.store.Put(r.Context(), pl); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("plan drawn",
		"id", pl.ID,
		"units", res.Stats.UnitCount,
		"reason", res.Diagnostics.Reason,
		"deviation", res.Diagnostics.Deviation,
		"cache_hit", res.CacheInfo.PlanHit)

	w.Header().Set("Location", "/v1/plans/"+pl.ID)
	writeJSON(w, http.StatusCreated, planResponse{Plan: pl, CacheHit: res.CacheInfo.PlanHit})
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	pls, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := planList{Plans: make([]planSummary, len(pls))}
	for i, pl := range pls {
		out.Plans[i] = planSummary{
			ID:           pl.ID,
			CreatedAt:    pl.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			Dataset:      pl.Dataset,
			NumDistricts: pl.NumDistricts,
			Reason:       string(pl.Diagnostics.Reason),
			Deviation:    pl.Diagnostics.Deviation,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	pl, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) planStats(w http.ResponseWriter, r *http.Request) {
	pl, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl.Summary)
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
