package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/bmcnally/sasadiff/internal/report"
	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/bmcnally/sasadiff/internal/tree"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type comparePair struct {
	BaseID    string `json:"base_id"`
	VariantID string `json:"variant_id"`
}

type compareRequest struct {
	comparePair
	Kind    string   `json:"kind,omitempty"`
	Epsilon *float64 `json:"epsilon,omitempty"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	rep, status, err := s.runCompare(req.comparePair, req.Kind, req.Epsilon)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

type batchRequest struct {
	Pairs   []comparePair `json:"pairs"`
	Kind    string        `json:"kind,omitempty"`
	Epsilon *float64      `json:"epsilon,omitempty"`
}

type batchResult struct {
	BaseID    string `json:"base_id"`
	VariantID string `json:"variant_id"`
	ReportID  string `json:"report_id,omitempty"`
	Entries   int    `json:"entries,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleBatchCompare runs several comparisons concurrently. Each pair
// succeeds or fails on its own; a bad pair never aborts the batch.
func (s *Server) handleBatchCompare(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Pairs) == 0 {
		jsonError(w, "at least one pair is required", http.StatusBadRequest)
		return
	}
	if len(req.Pairs) > s.cfg.MaxBatch {
		jsonError(w, fmt.Sprintf("batch of %d exceeds limit of %d", len(req.Pairs), s.cfg.MaxBatch), http.StatusBadRequest)
		return
	}

	results := make([]batchResult, len(req.Pairs))
	g, _ := errgroup.WithContext(r.Context())
	g.SetLimit(4)
	for i, p := range req.Pairs {
		i, p := i, p
		g.Go(func() error {
			res := batchResult{BaseID: p.BaseID, VariantID: p.VariantID}
			rep, _, err := s.runCompare(p, req.Kind, req.Epsilon)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.ReportID = rep.ID
				res.Entries = len(rep.Entries)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	rep, ok := s.reports.Get(id)
	if !ok {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRenderReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportID")
	rep, ok := s.reports.Get(id)
	if !ok {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, rep.Markdown())
	case "html":
		html, err := rep.HTML()
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	default:
		jsonError(w, fmt.Sprintf("unknown format %q, want md or html", format), http.StatusBadRequest)
	}
}

// runCompare resolves both trees, diffs them and persists the report.
// The returned int is the HTTP status to use when err is non-nil.
func (s *Server) runCompare(p comparePair, kindStr string, epsilon *float64) (report.Report, int, error) {
	base, ok := s.trees.Get(p.BaseID)
	if !ok {
		return report.Report{}, http.StatusNotFound, fmt.Errorf("base tree %q not found", p.BaseID)
	}
	variant, ok := s.trees.Get(p.VariantID)
	if !ok {
		return report.Report{}, http.StatusNotFound, fmt.Errorf("variant tree %q not found", p.VariantID)
	}

	if kindStr == "" {
		kindStr = "residue"
	}
	kind, err := sasa.ParseKind(kindStr)
	if err != nil {
		return report.Report{}, http.StatusBadRequest, err
	}
	switch kind {
	case sasa.KindChain, sasa.KindResidue, sasa.KindAtom:
	default:
		return report.Report{}, http.StatusBadRequest, fmt.Errorf("comparison kind must be chain, residue or atom")
	}

	eps := s.cfg.DefaultEpsilon
	if epsilon != nil {
		if *epsilon < 0 {
			return report.Report{}, http.StatusBadRequest, fmt.Errorf("epsilon must not be negative")
		}
		eps = *epsilon
	}

	nodes := tree.Compare(base, variant, kind, tree.Delta, func(a sasa.Area) bool {
		return math.Abs(a.Total) > eps
	})
	rep := report.New(uuid.NewString(), p.BaseID, p.VariantID, kind, eps, nodes)
	s.reports.Put(rep.ID, rep)
	s.comparesRun.Add(1)

	if s.notifier != nil {
		go func(rep report.Report) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.notifier.PostReport(ctx, rep); err != nil {
				s.log.Error("report webhook failed", "report_id", rep.ID, "error", err)
			}
		}(rep)
	}

	return rep, 0, nil
}
