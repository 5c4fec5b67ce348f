package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bmcnally/sasadiff/internal/engine"
	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/bmcnally/sasadiff/internal/structure"
	"github.com/bmcnally/sasadiff/internal/tree"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleUploadTree stores a serialized tree document and returns its ID.
func (s *Server) handleUploadTree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	t, err := tree.Decode(data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	s.trees.Put(id, t)
	s.treesStored.Add(1)

	writeJSON(w, http.StatusCreated, map[string]any{
		"tree_id":  id,
		"chains":   t.CountKind(sasa.KindChain),
		"residues": t.CountKind(sasa.KindResidue),
		"atoms":    t.CountKind(sasa.KindAtom),
	})
}

type atomSpec struct {
	Name      string  `json:"name"`
	Residue   string  `json:"residue"`
	ResNumber string  `json:"res_number"`
	Chain     string  `json:"chain"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

type computeRequest struct {
	Label    string       `json:"label"`
	StopKind string       `json:"stop_kind,omitempty"`
	Models   [][]atomSpec `json:"models"`
}

// handleComputeTree runs the configured engine over one or more models,
// joins the native results into a single tree and stores the owned tree
// built from it.
func (s *Server) handleComputeTree(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Models) == 0 {
		jsonError(w, "at least one model is required", http.StatusBadRequest)
		return
	}
	stop, err := s.stopKind(req.StopKind)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	structures := make([]*structure.Structure, 0, len(req.Models))
	for mi, atoms := range req.Models {
		st := structure.New(fmt.Sprintf("%s_m%d", req.Label, mi+1))
		for _, a := range atoms {
			if len(a.Chain) != 1 {
				jsonError(w, fmt.Sprintf("model %d: chain must be one character, got %q", mi+1, a.Chain), http.StatusBadRequest)
				return
			}
			if err := st.AddAtom(a.Name, a.Residue, a.ResNumber, a.Chain[0], a.X, a.Y, a.Z); err != nil {
				jsonError(w, fmt.Sprintf("model %d: %v", mi+1, err), http.StatusBadRequest)
				return
			}
		}
		structures = append(structures, st)
	}

	primary, err := s.eng.ComputeTree(structures[0], engine.DefaultParams, req.Label)
	if err != nil {
		jsonError(w, "compute failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	for i, st := range structures[1:] {
		donor, err := s.eng.ComputeTree(st, engine.DefaultParams, req.Label)
		if err != nil {
			primary.Release()
			jsonError(w, fmt.Sprintf("compute model %d failed: %v", i+2, err), http.StatusInternalServerError)
			return
		}
		status, err := primary.Join(donor)
		if err != nil {
			donor.Release()
			primary.Release()
			jsonError(w, fmt.Sprintf("join model %d failed: %v", i+2, err), http.StatusInternalServerError)
			return
		}
		if status == engine.StatusWarning {
			s.log.Warn("native join reported a warning", "label", req.Label, "model", i+2)
		}
	}

	// Build consumes and releases the native tree on every path.
	owned, err := tree.Builder{Stop: stop, Log: s.log}.Build(primary)
	if err != nil {
		jsonError(w, "build failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	id := uuid.NewString()
	s.trees.Put(id, owned)
	s.treesStored.Add(1)

	writeJSON(w, http.StatusCreated, map[string]any{
		"tree_id":       id,
		"models_joined": len(structures),
		"atoms":         owned.CountKind(sasa.KindAtom),
		"residues":      owned.CountKind(sasa.KindResidue),
	})
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "treeID")
	t, ok := s.trees.Get(id)
	if !ok {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}
	data, err := tree.Encode(t)
	if err != nil {
		jsonError(w, "encode tree: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleDeleteTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "treeID")
	if _, ok := s.trees.Get(id); !ok {
		jsonError(w, "tree not found", http.StatusNotFound)
		return
	}
	s.trees.Delete(id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) stopKind(v string) (sasa.Kind, error) {
	if v == "" {
		v = s.cfg.DefaultStop
	}
	kind, err := sasa.ParseKind(v)
	if err != nil {
		return sasa.KindNone, err
	}
	switch kind {
	case sasa.KindStructure, sasa.KindChain, sasa.KindResidue, sasa.KindAtom:
		return kind, nil
	default:
		return sasa.KindNone, fmt.Errorf("stop kind must be structure, chain, residue or atom")
	}
}
