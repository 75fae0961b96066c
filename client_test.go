package searchbridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func boolPtr(b bool) *bool { return &b }

func TestTranslate(t *testing.T) {
	a, err := New(WithOptions(Options{
		SortByOptions: map[string]SortOption{"price:asc": {EnableOverrides: boolPtr(false)}},
		FilterByOptions: map[string]FilterOption{
			"category": {ExactMatch: boolPtr(false)},
		},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := a.Translate([]Request{{
		IndexName: "products/sort/price:asc",
		Params: map[string]any{
			"query":          "phone",
			"facetFilters":   []any{[]any{"brand:Apple", "brand:Samsung"}, "category:-Refurbished"},
			"numericFilters": []any{"price>=100", "price<=500"},
		},
	}})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(tr.Searches) != 1 {
		t.Fatalf("got %d searches", len(tr.Searches))
	}

	s := tr.Searches[0]
	want := "brand:=[`Apple`,`Samsung`] && category:![`Refurbished`] && price:=[100..500]"
	if s["filter_by"] != want {
		t.Errorf("filter_by = %q, want %q", s["filter_by"], want)
	}
	if s["collection"] != "products" || s["sort_by"] != "price:asc" || s["enable_overrides"] != false {
		t.Errorf("sort not applied: %+v", s)
	}
	if s["q"] != "phone" || s["page"] != 1 {
		t.Errorf("params = %+v", s)
	}
	if tr.Union != nil || len(tr.Common) != 0 {
		t.Errorf("unexpected union/common: %v %v", tr.Union, tr.Common)
	}
}

func TestTranslate_Errors(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name string
		reqs []Request
		want error
	}{
		{"empty batch", nil, ErrInvalidRequest},
		{"malformed", []Request{{IndexName: "p", Params: map[string]any{"numericFilters": []any{"price"}}}}, ErrMalformedFilter},
		{"geo", []Request{{IndexName: "p", Params: map[string]any{"aroundLatLng": "1,2"}}}, ErrInvalidGeoFilter},
		{"bad type", []Request{{IndexName: "p", Params: map[string]any{"hitsPerPage": "many"}}}, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Translate(tt.reqs); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearch_NoBackend(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Search(context.Background(), []Request{{IndexName: "p"}}); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Search: got %v", err)
	}
	if err := a.Health(context.Background()); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Health: got %v", err)
	}
}

func TestSearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/multi_search":
			if r.Header.Get("X-TYPESENSE-API-KEY") != "xyz" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			_, _ = w.Write([]byte(`{"results":[{"found":3}]}`))
		case "/health":
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	a, err := New(
		WithBackend(srv.URL, "xyz"),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(reg),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results, err := a.Search(context.Background(), []Request{{IndexName: "products", Params: map[string]any{"query": "tv"}}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || string(results[0]) != `{"found":3}` {
		t.Errorf("results = %s", results)
	}
	searches, _ := gotBody["searches"].([]any)
	if len(searches) != 1 {
		t.Fatalf("backend body = %v", gotBody)
	}
	if first, _ := searches[0].(map[string]any); first["collection"] != "products" || first["q"] != "tv" {
		t.Errorf("search = %v", first)
	}

	if err := a.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}

	m, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("reuse metrics: %v", err)
	}
	if v := testutil.ToFloat64(m.operations.WithLabelValues("search", "ok")); v != 1 {
		t.Errorf("search ok = %f, want 1", v)
	}
}

func TestSearch_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found."}`))
	}))
	defer srv.Close()

	a, err := New(WithBackend(srv.URL, ""))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Search(context.Background(), []Request{{IndexName: "missing"}}); !errors.Is(err, ErrBackend) {
		t.Errorf("got %v, want ErrBackend", err)
	}
}

func TestNew_InvalidBackend(t *testing.T) {
	if _, err := New(WithBackend("localhost:8108", "")); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestRegisterOrReuse_Incompatible(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "searchbridge", Subsystem: "sdk", Name: "operations_total", Help: "Total SDK operations by type and status.",
	}))
	if _, err := newSDKMetrics(reg); err == nil {
		t.Fatal("expected error for conflicting collector")
	}
}

func TestObserver_Nil(_ *testing.T) {
	var o *observer
	o.observe("translate", 1, time.Now(), nil)
}
