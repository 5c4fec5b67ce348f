package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bmcnally/sasadiff/internal/config"
	"github.com/bmcnally/sasadiff/internal/engine"
	"github.com/bmcnally/sasadiff/internal/report"
	"github.com/bmcnally/sasadiff/internal/store"
	"github.com/bmcnally/sasadiff/internal/tree"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Port:            "0",
		APIKey:          testKey,
		TreeTTL:         time.Hour,
		CleanupInterval: time.Hour,
		MaxUploadBytes:  1 << 20,
		DefaultEpsilon:  1e-4,
		DefaultStop:     "atom",
		MaxBatch:        4,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(
		&engine.Stub{},
		store.New[*tree.Tree](cfg.TreeTTL),
		store.New[report.Report](cfg.TreeTTL),
		nil,
		log,
		cfg,
	)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

const baseDoc = `{
	"kind": "structure", "name": "base", "total": 10,
	"children": {
		"A": {
			"kind": "chain", "total": 10,
			"children": {
				"A:1": {"kind": "residue", "name": "GLY", "total": 4},
				"A:2": {"kind": "residue", "name": "ALA", "total": 6}
			}
		}
	}
}`

const variantDoc = `{
	"kind": "structure", "name": "variant", "total": 13,
	"children": {
		"A": {
			"kind": "chain", "total": 13,
			"children": {
				"A:1": {"kind": "residue", "name": "GLY", "total": 4},
				"A:2": {"kind": "residue", "name": "ALA", "total": 9}
			}
		}
	}
}`

func uploadTree(t *testing.T, ts *httptest.Server, doc string) string {
	t.Helper()
	var resp struct {
		TreeID string `json:"tree_id"`
	}
	if code := doJSON(t, ts, http.MethodPost, "/api/trees", doc, &resp); code != http.StatusCreated {
		t.Fatalf("upload returned %d", code)
	}
	if resp.TreeID == "" {
		t.Fatal("upload returned no tree_id")
	}
	return resp.TreeID
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	// Health is public.
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d, want 200", resp.StatusCode)
	}

	// API endpoints are not.
	resp, err = http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated stats = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key = %d, want 401", resp.StatusCode)
	}
}

func TestUploadGetDeleteTree(t *testing.T) {
	ts := newTestServer(t)
	id := uploadTree(t, ts, baseDoc)

	var doc map[string]any
	if code := doJSON(t, ts, http.MethodGet, "/api/trees/"+id, "", &doc); code != http.StatusOK {
		t.Fatalf("get tree = %d", code)
	}
	if doc["kind"] != "structure" {
		t.Errorf("tree root kind = %v, want structure", doc["kind"])
	}

	if code := doJSON(t, ts, http.MethodDelete, "/api/trees/"+id, "", nil); code != http.StatusOK {
		t.Fatalf("delete tree = %d", code)
	}
	if code := doJSON(t, ts, http.MethodGet, "/api/trees/"+id, "", nil); code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", code)
	}

	if code := doJSON(t, ts, http.MethodPost, "/api/trees", `{"kind":"chain"}`, nil); code != http.StatusBadRequest {
		t.Errorf("bad document = %d, want 400", code)
	}
}

func TestComputeTree(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		"label": "dipep",
		"models": [
			[
				{"name": "N", "residue": "GLY", "res_number": "1", "chain": "A"},
				{"name": "CA", "residue": "GLY", "res_number": "1", "chain": "A"},
				{"name": "CA", "residue": "ALA", "res_number": "2", "chain": "A"}
			],
			[
				{"name": "CA", "residue": "GLY", "res_number": "1", "chain": "B"}
			]
		]
	}`
	var resp struct {
		TreeID string `json:"tree_id"`
		Models int    `json:"models_joined"`
		Atoms  int    `json:"atoms"`
	}
	if code := doJSON(t, ts, http.MethodPost, "/api/trees/compute", body, &resp); code != http.StatusCreated {
		t.Fatalf("compute = %d", code)
	}
	if resp.Models != 2 {
		t.Errorf("models_joined = %d, want 2", resp.Models)
	}
	// Every model's atoms land in the stored tree: 3 from model 1 plus 1
	// from model 2.
	if resp.Atoms != 4 {
		t.Errorf("atoms = %d, want 4", resp.Atoms)
	}

	// The joined chains are both addressable in the fetched document.
	var doc struct {
		Children map[string]json.RawMessage `json:"children"`
	}
	if code := doJSON(t, ts, http.MethodGet, "/api/trees/"+resp.TreeID, "", &doc); code != http.StatusOK {
		t.Fatalf("get computed tree = %d", code)
	}
	if _, ok := doc.Children["A"]; !ok {
		t.Error("computed tree missing chain A")
	}
	if _, ok := doc.Children["B"]; !ok {
		t.Error("computed tree missing chain B from the second model")
	}

	if code := doJSON(t, ts, http.MethodPost, "/api/trees/compute", `{"label":"x","models":[]}`, nil); code != http.StatusBadRequest {
		t.Errorf("empty models = %d, want 400", code)
	}
	bad := `{"label":"x","models":[[{"name":"CA","residue":"GLY","res_number":"1","chain":"AB"}]]}`
	if code := doJSON(t, ts, http.MethodPost, "/api/trees/compute", bad, nil); code != http.StatusBadRequest {
		t.Errorf("bad chain = %d, want 400", code)
	}
}

func TestCompareFlow(t *testing.T) {
	ts := newTestServer(t)
	baseID := uploadTree(t, ts, baseDoc)
	variantID := uploadTree(t, ts, variantDoc)

	var rep report.Report
	body := fmt.Sprintf(`{"base_id":%q,"variant_id":%q,"kind":"residue"}`, baseID, variantID)
	if code := doJSON(t, ts, http.MethodPost, "/api/compare", body, &rep); code != http.StatusCreated {
		t.Fatalf("compare = %d", code)
	}
	if len(rep.Entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(rep.Entries), rep.Entries)
	}
	if rep.Entries[0].UID != "A:2" || rep.Entries[0].Total != 3 {
		t.Errorf("entry = %+v, want A:2 with total 3", rep.Entries[0])
	}

	var fetched report.Report
	if code := doJSON(t, ts, http.MethodGet, "/api/compare/"+rep.ID, "", &fetched); code != http.StatusOK {
		t.Fatalf("get report = %d", code)
	}
	if fetched.ID != rep.ID {
		t.Errorf("fetched report ID = %q, want %q", fetched.ID, rep.ID)
	}

	// Rendered report.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/compare/"+rep.ID+"/report?format=html", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	html, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(html), "<table>") {
		t.Errorf("html render missing table:\n%s", html)
	}

	// Unknown trees 404.
	if code := doJSON(t, ts, http.MethodPost, "/api/compare", `{"base_id":"nope","variant_id":"nada"}`, nil); code != http.StatusNotFound {
		t.Errorf("unknown trees = %d, want 404", code)
	}
	// Structure-level comparison is not a thing.
	body = fmt.Sprintf(`{"base_id":%q,"variant_id":%q,"kind":"structure"}`, baseID, variantID)
	if code := doJSON(t, ts, http.MethodPost, "/api/compare", body, nil); code != http.StatusBadRequest {
		t.Errorf("structure kind = %d, want 400", code)
	}
}

func TestBatchCompare(t *testing.T) {
	ts := newTestServer(t)
	baseID := uploadTree(t, ts, baseDoc)
	variantID := uploadTree(t, ts, variantDoc)

	body := fmt.Sprintf(`{
		"kind": "residue",
		"pairs": [
			{"base_id": %q, "variant_id": %q},
			{"base_id": "missing", "variant_id": %q}
		]
	}`, baseID, variantID, variantID)

	var resp struct {
		Results []struct {
			ReportID string `json:"report_id"`
			Entries  int    `json:"entries"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	if code := doJSON(t, ts, http.MethodPost, "/api/compare/batch", body, &resp); code != http.StatusOK {
		t.Fatalf("batch = %d", code)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].Error != "" || resp.Results[0].ReportID == "" || resp.Results[0].Entries != 1 {
		t.Errorf("first result = %+v", resp.Results[0])
	}
	if resp.Results[1].Error == "" {
		t.Error("second result should carry an error")
	}

	// Over the batch limit.
	pairs := make([]string, 5)
	for i := range pairs {
		pairs[i] = fmt.Sprintf(`{"base_id":%q,"variant_id":%q}`, baseID, variantID)
	}
	over := `{"pairs":[` + strings.Join(pairs, ",") + `]}`
	if code := doJSON(t, ts, http.MethodPost, "/api/compare/batch", over, nil); code != http.StatusBadRequest {
		t.Errorf("oversized batch = %d, want 400", code)
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	baseID := uploadTree(t, ts, baseDoc)
	variantID := uploadTree(t, ts, variantDoc)
	body := fmt.Sprintf(`{"base_id":%q,"variant_id":%q}`, baseID, variantID)
	if code := doJSON(t, ts, http.MethodPost, "/api/compare", body, nil); code != http.StatusCreated {
		t.Fatal("compare failed")
	}

	var stats struct {
		TreesStored int `json:"trees_stored"`
		TreesLive   int `json:"trees_live"`
		Comparisons int `json:"comparisons_run"`
		ReportsLive int `json:"reports_live"`
	}
	if code := doJSON(t, ts, http.MethodGet, "/api/stats", "", &stats); code != http.StatusOK {
		t.Fatalf("stats = %d", code)
	}
	if stats.TreesStored != 2 || stats.TreesLive != 2 {
		t.Errorf("tree stats = %+v, want 2 stored and live", stats)
	}
	if stats.Comparisons != 1 || stats.ReportsLive != 1 {
		t.Errorf("compare stats = %+v, want 1 run and 1 report", stats)
	}
}
