package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"trendlens/internal/domain/analysis"
)

type fakeHistory struct {
	summaries []analysis.Summary
	payloads  map[string]json.RawMessage
	err       error
	gotLimit  int
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]analysis.Summary, error) {
	f.gotLimit = limit
	return f.summaries, f.err
}

func (f *fakeHistory) Find(ctx context.Context, id string) (json.RawMessage, error) {
	if p, ok := f.payloads[id]; ok {
		return p, nil
	}
	return nil, analysis.ErrNotFound
}

func historyRouter(h *HistoryHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/analyses", h.ListAnalyses)
	r.Get("/analyses/{id}", h.GetAnalysis)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHistory_DisabledIs503(t *testing.T) {
	router := historyRouter(NewHistoryHandler(nil))

	for _, target := range []string{"/analyses", "/analyses/3f1c0f5e-8a0e-4b7e-9a43-0d6f8e2b8f11"} {
		if rec := get(router, target); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", target, rec.Code)
		}
	}
}

func TestHistory_ListRecent(t *testing.T) {
	history := &fakeHistory{summaries: []analysis.Summary{
		{ID: "a", Mode: analysis.ModeSearch, Subject: "finance", CreatedAt: time.Unix(10, 0).UTC()},
	}}
	router := historyRouter(NewHistoryHandler(history))

	rec := get(router, "/analyses?limit=500")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if history.gotLimit != maxHistoryLimit {
		t.Errorf("limit should be capped at %d, got %d", maxHistoryLimit, history.gotLimit)
	}

	var body struct {
		Analyses []analysis.Summary `json:"analyses"`
		Count    int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Analyses[0].Subject != "finance" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestHistory_InvalidLimit(t *testing.T) {
	router := historyRouter(NewHistoryHandler(&fakeHistory{}))

	if rec := get(router, "/analyses?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHistory_StoreFailureIs500(t *testing.T) {
	router := historyRouter(NewHistoryHandler(&fakeHistory{err: errors.New("db down")}))

	if rec := get(router, "/analyses"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHistory_GetAnalysis(t *testing.T) {
	id := "3f1c0f5e-8a0e-4b7e-9a43-0d6f8e2b8f11"
	history := &fakeHistory{payloads: map[string]json.RawMessage{
		id: json.RawMessage(`{"id":"` + id + `","mode":"direct"}`),
	}}
	router := historyRouter(NewHistoryHandler(history))

	rec := get(router, "/analyses/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["mode"] != "direct" {
		t.Errorf("stored envelope should be returned as-is, got %s", rec.Body.String())
	}

	if rec := get(router, "/analyses/9b2f3a52-0000-4000-8000-000000000000"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
	if rec := get(router, "/analyses/not-a-uuid"); rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: status = %d, want 404", rec.Code)
	}
}
