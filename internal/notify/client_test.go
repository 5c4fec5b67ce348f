package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bmcnally/sasadiff/internal/report"
)

func TestPostReport(t *testing.T) {
	var gotAuth string
	var gotReport report.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReport); err != nil {
			t.Errorf("decode posted report: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	defer c.Close()

	rep := report.Report{ID: "r1", BaseID: "b", VariantID: "v", Kind: "residue", CreatedAt: time.Now()}
	if err := c.PostReport(context.Background(), rep); err != nil {
		t.Fatalf("PostReport failed: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if gotReport.ID != "r1" {
		t.Errorf("posted report ID = %q, want r1", gotReport.ID)
	}
}

func TestPostReportErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	defer c.Close()

	err := c.PostReport(context.Background(), report.Report{ID: "r1"})
	if err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestPostReportContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.PostReport(ctx, report.Report{ID: "r1"}); err == nil {
		t.Fatal("expected error when context expires")
	}
}
